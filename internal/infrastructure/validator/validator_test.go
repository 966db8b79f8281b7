package validator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/infrastructure/metrics"
	tpl "aiinfra/internal/infrastructure/template"
)

type recordingRunner struct {
	calls  []string
	failOn string
}

func (r *recordingRunner) Run(_ context.Context, dir, name string, args ...string) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.calls = append(r.calls, line)
	if r.failOn != "" && line == r.failOn {
		return errors.New("exit status 1")
	}
	return nil
}

func tfFile(content string) *entity.ConfigFile {
	return &entity.ConfigFile{Name: "main.tf", Type: "terraform", Content: content}
}

func TestTerraformCLI_Validate(t *testing.T) {
	runner := &recordingRunner{}
	v := NewTerraformCLI("", runner, zaptest.NewLogger(t))

	before := testutil.ToFloat64(metrics.ValidationRuns.WithLabelValues("terraform", "pass"))
	require.NoError(t, v.Validate(context.Background(), tfFile(""), "/repo/env"))

	assert.Equal(t, []string{"terraform fmt", "terraform init -upgrade", "terraform validate"}, runner.calls)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ValidationRuns.WithLabelValues("terraform", "pass")))
}

func TestTerraformCLI_StopsOnFailure(t *testing.T) {
	runner := &recordingRunner{failOn: "tofu init -upgrade"}
	v := NewTerraformCLI("tofu", runner, zaptest.NewLogger(t))

	err := v.Validate(context.Background(), tfFile(""), "/repo/env")
	require.ErrorIs(t, err, entity.ErrValidationFailed)
	assert.Contains(t, err.Error(), "init -upgrade")
	assert.Equal(t, []string{"tofu fmt", "tofu init -upgrade"}, runner.calls)
}

func TestTerraformAnalyzer_SyntaxError(t *testing.T) {
	a := NewTerraformAnalyzer(zaptest.NewLogger(t))
	err := a.Validate(context.Background(), tfFile(`resource "x" "y" {`), "")
	assert.ErrorIs(t, err, entity.ErrValidationFailed)
}

func TestTerraformAnalyzer_WrongLabels(t *testing.T) {
	res := NewTerraformAnalyzer(zaptest.NewLogger(t)).Analyze(tfFile(`resource "only_type" {}`))
	assert.False(t, res.Passed)
	require.NotEmpty(t, res.Errors)
}

func TestTerraformAnalyzer_Warnings(t *testing.T) {
	content := `
terraform {
  required_providers {
    azurerm = {
      source = "hashicorp/azurerm"
    }
  }
}

resource "azurerm_storage_account" "sa" {
  name        = "$storage_account_name"
  access_key  = "hunter2"
  location    = "${location}"
}

resource "azurerm_subnet" "s" {
  name = "ok"
}
`
	file := tfFile(content)
	a := NewTerraformAnalyzer(zaptest.NewLogger(t))
	require.NoError(t, a.Validate(context.Background(), file, ""))

	var summaries []string
	for _, w := range file.Warnings {
		summaries = append(summaries, w.Message)
	}
	joined := strings.Join(summaries, "\n")
	assert.Contains(t, joined, "Provider azurerm missing version constraint")
	assert.Contains(t, joined, "Resource azurerm_storage_account.sa missing tags")
	assert.NotContains(t, joined, "azurerm_subnet.s missing tags")
	assert.Contains(t, joined, "hardcoded sensitive value in attribute access_key")
	assert.Contains(t, joined, "Unresolved template placeholder $storage_account_name")
	assert.Contains(t, joined, "Unresolved template placeholder ${location}")
}

func TestTerraformAnalyzer_RenderedTemplatesPass(t *testing.T) {
	vars := map[string]string{
		"rg_name":              "ai-rg",
		"location":             "Central India",
		"vm_name":              "ai-vm",
		"vm_size":              "Standard_B1s",
		"storage_account_name": "aistorage1234",
	}
	a := NewTerraformAnalyzer(zaptest.NewLogger(t))
	for _, name := range []string{"vm.tf.tpl", "storage.tf.tpl"} {
		data, err := os.ReadFile(filepath.Join("..", "..", "..", "templates", name))
		require.NoError(t, err)

		rendered, _ := tpl.SafeSubstitute(string(data), vars)
		res := a.Analyze(tfFile(rendered))
		assert.True(t, res.Passed, "%s: %v", name, res.Errors)
		for _, w := range res.Warnings {
			assert.NotContains(t, w.Message, "Unresolved", name)
			assert.NotContains(t, w.Message, "missing tags", name)
		}
	}
}
