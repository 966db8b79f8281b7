package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
)

// FileRepository writes artifacts into a single directory.
type FileRepository struct {
	basePath string
}

var _ repository.ArtifactStore = (*FileRepository)(nil)

func (fr *FileRepository) GetBasePath() string {
	return fr.basePath
}

// NewFileRepository does not touch the disk; the directory is created on
// first save so a rejected run leaves no trace.
func NewFileRepository(basePath string) (*FileRepository, error) {
	info, err := os.Stat(basePath)
	if err == nil && !info.IsDir() {
		return nil, fmt.Errorf("path %s exists but is not a directory", basePath)
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check directory %s: %w", basePath, err)
	}
	return &FileRepository{basePath: basePath}, nil
}

func (r *FileRepository) SaveArtifact(ctx context.Context, file *entity.ConfigFile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if file.Name == "" || filepath.Base(file.Name) != file.Name {
		return "", fmt.Errorf("invalid artifact name %q", file.Name)
	}

	if err := os.MkdirAll(r.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", r.basePath, err)
	}

	filePath := filepath.Join(r.basePath, file.Name)
	if err := os.WriteFile(filePath, []byte(file.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file %s: %w", file.Name, err)
	}
	return filePath, nil
}
