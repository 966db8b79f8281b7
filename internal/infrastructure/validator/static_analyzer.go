package validator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"go.uber.org/zap"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/metrics"
)

type AnalysisResult struct {
	Passed   bool
	Errors   []*entity.ValidationConfigError
	Warnings []*entity.ValidationConfigError
}

var SensitiveKeywords = []string{"password", "secret", "key", "token", "access_key", "secret_key"}

// untaggable resources reject a tags argument.
var untaggable = map[string]bool{
	"azurerm_subnet": true,
}

// leftoverPlaceholder matches template placeholders the renderer could not
// fill.
var leftoverPlaceholder = regexp.MustCompile(`\$(?:[_a-zA-Z][_a-zA-Z0-9]*|\{[_a-zA-Z][_a-zA-Z0-9]*\})`)

// TerraformAnalyzer is an offline check of the rendered file. Syntax errors
// fail validation; lint findings are warnings.
type TerraformAnalyzer struct {
	logger *zap.Logger
}

var _ repository.ConfigValidator = (*TerraformAnalyzer)(nil)

func NewTerraformAnalyzer(logger *zap.Logger) *TerraformAnalyzer {
	return &TerraformAnalyzer{logger: logger}
}

func (a *TerraformAnalyzer) Name() string { return "static" }

func (a *TerraformAnalyzer) Validate(_ context.Context, file *entity.ConfigFile, _ string) error {
	start := time.Now()
	result := a.Analyze(file)
	metrics.ObserveValidationDuration(a.Name(), time.Since(start))

	file.Warnings = result.Warnings
	for _, w := range result.Warnings {
		a.logger.Warn("terraform lint",
			zap.String("file", w.File),
			zap.Int("line", w.Line),
			zap.String("message", w.Message),
		)
	}

	if !result.Passed {
		metrics.IncValidationRun(a.Name(), "fail")
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("%s:%d,%d: %s", e.File, e.Line, e.Column, e.Message))
		}
		return fmt.Errorf("%w: %s", entity.ErrValidationFailed, strings.Join(msgs, "; "))
	}
	metrics.IncValidationRun(a.Name(), "pass")
	return nil
}

func (a *TerraformAnalyzer) Analyze(file *entity.ConfigFile) *AnalysisResult {
	result := &AnalysisResult{Passed: true}
	src := []byte(file.Content)

	parser := hclparse.NewParser()
	hclFile, fileDiags := parser.ParseHCL(src, file.Name)
	if fileDiags.HasErrors() {
		result.add(file.Name, fileDiags)
		return result
	}

	result.add(file.Name, a.analyzeFile(hclFile.Body, src, file.Name))
	return result
}

func (r *AnalysisResult) add(fileName string, diags hcl.Diagnostics) {
	for _, diag := range diags {
		e := &entity.ValidationConfigError{
			File:    fileName,
			Message: strings.TrimSuffix(fmt.Sprintf("%s: %s", diag.Summary, diag.Detail), ": "),
		}
		if diag.Subject != nil {
			e.Line = diag.Subject.Start.Line
			e.Column = diag.Subject.Start.Column
		}
		if diag.Severity == hcl.DiagError {
			r.Errors = append(r.Errors, e)
			r.Passed = false
			continue
		}
		r.Warnings = append(r.Warnings, e)
	}
}

func (a *TerraformAnalyzer) analyzeFile(body hcl.Body, src []byte, fileName string) hcl.Diagnostics {
	var diags hcl.Diagnostics

	schema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "terraform"},
			{Type: "provider", LabelNames: []string{"name"}},
			{Type: "resource", LabelNames: []string{"type", "name"}},
			{Type: "data", LabelNames: []string{"type", "name"}},
			{Type: "variable", LabelNames: []string{"name"}},
			{Type: "output", LabelNames: []string{"name"}},
			{Type: "module", LabelNames: []string{"name"}},
			{Type: "locals"},
		},
	}

	content, _, contentDiags := body.PartialContent(schema)
	diags = append(diags, contentDiags...)

	diags = append(diags, a.analyzeTerraformBlocks(content, fileName)...)
	diags = append(diags, a.analyzeResourceBlocks(content, fileName)...)
	if syntaxBody, ok := body.(*hclsyntax.Body); ok {
		diags = append(diags, a.analyzePlaceholders(syntaxBody, src, fileName)...)
	}

	return diags
}

func (a *TerraformAnalyzer) analyzeTerraformBlocks(content *hcl.BodyContent, fileName string) hcl.Diagnostics {
	var diags hcl.Diagnostics

	for _, block := range content.Blocks.OfType("terraform") {
		tfSchema := &hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{
				{Type: "required_providers"},
			},
		}
		tfContent, _, tfDiags := block.Body.PartialContent(tfSchema)
		diags = append(diags, tfDiags...)

		for _, rpBlock := range tfContent.Blocks.OfType("required_providers") {
			attrs, attrsDiags := rpBlock.Body.JustAttributes()
			diags = append(diags, attrsDiags...)

			for providerName, attr := range attrs {
				val, valDiags := attr.Expr.Value(nil)
				if valDiags.HasErrors() || !val.Type().IsObjectType() {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  fmt.Sprintf("Provider %s has non-object requirement in %s", providerName, fileName),
						Subject:  attr.Range.Ptr(),
					})
					continue
				}
				if _, hasVersion := val.AsValueMap()["version"]; !hasVersion {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  fmt.Sprintf("Provider %s missing version constraint in %s", providerName, fileName),
						Subject:  attr.Range.Ptr(),
					})
				}
			}
		}
	}
	return diags
}

func (a *TerraformAnalyzer) analyzeResourceBlocks(content *hcl.BodyContent, fileName string) hcl.Diagnostics {
	var diags hcl.Diagnostics

	for _, block := range content.Blocks.OfType("resource") {
		resType, resName := block.Labels[0], block.Labels[1]

		syntaxBody, ok := block.Body.(*hclsyntax.Body)
		if !ok {
			continue
		}

		if _, hasTags := syntaxBody.Attributes["tags"]; !hasTags && !untaggable[resType] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  fmt.Sprintf("Resource %s.%s missing tags attribute in %s", resType, resName, fileName),
				Subject:  block.DefRange.Ptr(),
			})
		}

		walkAttributes(syntaxBody, func(attr *hclsyntax.Attribute) {
			lower := strings.ToLower(attr.Name)
			for _, kw := range SensitiveKeywords {
				if !strings.Contains(lower, kw) {
					continue
				}
				if _, valDiags := attr.Expr.Value(nil); !valDiags.HasErrors() {
					diags = append(diags, &hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  fmt.Sprintf("Potential hardcoded sensitive value in attribute %s of resource %s.%s in %s", attr.Name, resType, resName, fileName),
						Subject:  attr.SrcRange.Ptr(),
					})
				}
				break
			}
		})
	}
	return diags
}

func (a *TerraformAnalyzer) analyzePlaceholders(body *hclsyntax.Body, src []byte, fileName string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	walkAttributes(body, func(attr *hclsyntax.Attribute) {
		rng := attr.Expr.Range()
		if rng.End.Byte > len(src) || rng.Start.Byte >= rng.End.Byte {
			return
		}
		for _, m := range leftoverPlaceholder.FindAllString(string(src[rng.Start.Byte:rng.End.Byte]), -1) {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  fmt.Sprintf("Unresolved template placeholder %s in attribute %s in %s", m, attr.Name, fileName),
				Subject:  rng.Ptr(),
			})
		}
	})
	return diags
}

func walkAttributes(body *hclsyntax.Body, fn func(*hclsyntax.Attribute)) {
	for _, attr := range body.Attributes {
		fn(attr)
	}
	for _, block := range body.Blocks {
		walkAttributes(block.Body, fn)
	}
}
