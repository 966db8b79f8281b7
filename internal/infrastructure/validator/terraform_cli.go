package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/execx"
	"aiinfra/internal/infrastructure/metrics"
)

// terraformSteps run in order in the artifact directory.
var terraformSteps = [][]string{
	{"fmt"},
	{"init", "-upgrade"},
	{"validate"},
}

// TerraformCLI validates the artifact directory with the terraform binary.
type TerraformCLI struct {
	bin    string
	runner execx.Runner
	logger *zap.Logger
}

var _ repository.ConfigValidator = (*TerraformCLI)(nil)

func NewTerraformCLI(bin string, runner execx.Runner, logger *zap.Logger) *TerraformCLI {
	if bin == "" {
		bin = "terraform"
	}
	return &TerraformCLI{bin: bin, runner: runner, logger: logger}
}

func (t *TerraformCLI) Name() string { return "terraform" }

func (t *TerraformCLI) Validate(ctx context.Context, _ *entity.ConfigFile, dir string) error {
	start := time.Now()
	defer func() {
		metrics.ObserveValidationDuration(t.Name(), time.Since(start))
	}()

	for _, args := range terraformSteps {
		t.logger.Debug("running terraform", zap.String("dir", dir), zap.Strings("args", args))
		if err := t.runner.Run(ctx, dir, t.bin, args...); err != nil {
			metrics.IncValidationRun(t.Name(), "fail")
			return fmt.Errorf("%w: terraform %s: %w", entity.ErrValidationFailed, strings.Join(args, " "), err)
		}
	}
	metrics.IncValidationRun(t.Name(), "pass")
	return nil
}
