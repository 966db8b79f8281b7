package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"aiinfra/app/cli"
	"aiinfra/app/config"
	"aiinfra/app/usecase"
	"aiinfra/internal/domain/intent"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/execx"
	"aiinfra/internal/infrastructure/llm"
	"aiinfra/internal/infrastructure/logger"
	"aiinfra/internal/infrastructure/metrics"
	"aiinfra/internal/infrastructure/store/filesystem"
	"aiinfra/internal/infrastructure/template"
	"aiinfra/internal/infrastructure/validator"
	"aiinfra/internal/infrastructure/vcs"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// load config
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitFailure
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.ExitFailure
	}
	defer func() { _ = log.Sync() }()

	svc, err := buildService(cfg, log)
	if err != nil {
		log.Error("init failed", zap.Error(err))
		return cli.ExitFailure
	}

	err = cli.NewRootCommand(svc).ExecuteContext(ctx)
	code := cli.ExitCode(err)
	if err != nil {
		log.Error(cli.UserMessage(err), zap.Error(err), zap.Int("exit_code", code))
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("write metrics textfile", zap.String("path", cfg.Metrics.Textfile), zap.Error(err))
		}
	}
	return code
}

func buildService(cfg *config.Config, log *zap.Logger) (*usecase.ProvisionService, error) {
	runner := execx.NewExecRunner()

	// Repositories
	store, err := filesystem.NewFileRepository(cfg.Paths.EnvDir)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}

	// LLM client
	gen := llm.NewOllamaGenerator(cfg.LLM, log.Named("llm"))

	resolver := usecase.NewIntentResolver(gen, intent.NewRepairer(), cfg.Resolver.MaxRetries, log.Named("resolver"))
	normalizer := intent.NewNormalizer(intent.Defaults{
		RGName:        cfg.Defaults.RGName,
		Location:      cfg.Defaults.Location,
		VMName:        cfg.Defaults.VMName,
		VMSize:        cfg.Defaults.VMSize,
		StoragePrefix: cfg.Defaults.StoragePrefix,
	}, nil)

	// Validators
	var validators []repository.ConfigValidator
	if !cfg.Validator.SkipStatic {
		validators = append(validators, validator.NewTerraformAnalyzer(log.Named("static")))
	}
	validators = append(validators, validator.NewTerraformCLI(cfg.Validator.TerraformBin, runner, log.Named("terraform")))

	publisher := vcs.NewGitPublisher(vcs.GitPublisherOptions{
		RepoPath: cfg.Paths.Repo,
		GitBin:   cfg.Publisher.GitBin,
		Remote:   cfg.Publisher.Remote,
		Branch:   cfg.Publisher.Branch,
		Paths:    cfg.Publisher.Paths,
	}, runner, log.Named("git"))

	return usecase.NewProvisionService(usecase.ProvisionOptions{
		Resolver:     resolver,
		Normalizer:   normalizer,
		Renderer:     template.NewFileRenderer(),
		Store:        store,
		Validators:   validators,
		Publisher:    publisher,
		Templates:    cfg.Paths.Templates,
		ArtifactName: cfg.Paths.TFFile,
	}, log.Named("provision")), nil
}
