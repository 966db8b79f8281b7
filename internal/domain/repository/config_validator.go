package repository

import (
	"context"

	"aiinfra/internal/domain/entity"
)

// ConfigValidator checks a written artifact. A non-nil error means the run
// must stop.
type ConfigValidator interface {
	Validate(ctx context.Context, file *entity.ConfigFile, dir string) error
	Name() string
}

// Publisher records the artifact in version control.
type Publisher interface {
	Publish(ctx context.Context, message string) (PublishResult, error)
}

type PublishResult struct {
	Committed bool
	Pushed    bool
}
