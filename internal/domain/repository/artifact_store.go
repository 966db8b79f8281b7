package repository

import (
	"context"

	"aiinfra/internal/domain/entity"
)

// ArtifactStore persists the rendered infrastructure file.
type ArtifactStore interface {
	// SaveArtifact writes file and returns the path it was written to.
	SaveArtifact(ctx context.Context, file *entity.ConfigFile) (string, error)
	GetBasePath() string
}

// TemplateRenderer turns an action template into file content.
type TemplateRenderer interface {
	Render(templatePath string, vars map[string]string) (Rendered, error)
}

// Rendered is the renderer output. Unresolved lists placeholders left in
// Content because no variable matched them.
type Rendered struct {
	Content    string
	Unresolved []string
}
