// Package template renders action templates with $-style placeholders.
//
// Substitution is safe: placeholders without a value, and '$' sequences that
// are not placeholders (Terraform's ${resource.attr} interpolation), are
// left in the output untouched. "$$" renders as a single "$".
package template

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
)

var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

type FileRenderer struct{}

var _ repository.TemplateRenderer = FileRenderer{}

func NewFileRenderer() FileRenderer {
	return FileRenderer{}
}

func (FileRenderer) Render(templatePath string, vars map[string]string) (repository.Rendered, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return repository.Rendered{}, fmt.Errorf("%w: %s", entity.ErrTemplateNotFound, templatePath)
		}
		return repository.Rendered{}, fmt.Errorf("read template %s: %w", templatePath, err)
	}
	content, unresolved := SafeSubstitute(string(data), vars)
	return repository.Rendered{Content: content, Unresolved: unresolved}, nil
}

// SafeSubstitute replaces $name and ${name} with vars[name]. It returns the
// sorted names that had no value.
func SafeSubstitute(text string, vars map[string]string) (string, []string) {
	missing := make(map[string]struct{})
	out := placeholder.ReplaceAllStringFunc(text, func(m string) string {
		sub := placeholder.FindStringSubmatch(m)
		if sub[1] != "" {
			return "$"
		}
		name := sub[2]
		if name == "" {
			name = sub[3]
		}
		if v, ok := vars[name]; ok {
			return v
		}
		missing[name] = struct{}{}
		return m
	})

	unresolved := make([]string, 0, len(missing))
	for name := range missing {
		unresolved = append(unresolved, name)
	}
	sort.Strings(unresolved)
	return out, unresolved
}
