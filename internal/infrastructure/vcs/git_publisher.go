package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/execx"
	"aiinfra/internal/infrastructure/metrics"
)

type GitPublisher struct {
	repoPath string
	gitBin   string
	remote   string
	branch   string
	paths    []string
	runner   execx.Runner
	logger   *zap.Logger
}

var _ repository.Publisher = (*GitPublisher)(nil)

type GitPublisherOptions struct {
	RepoPath string
	GitBin   string
	Remote   string
	Branch   string
	// Paths is the allow-list staged before committing, relative to RepoPath.
	Paths []string
}

func NewGitPublisher(opts GitPublisherOptions, runner execx.Runner, logger *zap.Logger) *GitPublisher {
	if opts.GitBin == "" {
		opts.GitBin = "git"
	}
	return &GitPublisher{
		repoPath: opts.RepoPath,
		gitBin:   opts.GitBin,
		remote:   opts.Remote,
		branch:   opts.Branch,
		paths:    opts.Paths,
		runner:   runner,
		logger:   logger,
	}
}

// Publish stages the allow-listed paths, commits and pushes. Having nothing
// to commit is not an error; the push is skipped.
func (p *GitPublisher) Publish(ctx context.Context, message string) (repository.PublishResult, error) {
	var result repository.PublishResult

	for _, path := range p.paths {
		if _, err := os.Stat(filepath.Join(p.repoPath, path)); os.IsNotExist(err) {
			p.logger.Warn("skip missing path", zap.String("path", path))
			continue
		}
		if err := p.git(ctx, "add", path); err != nil {
			metrics.IncPublishResult("failed")
			return result, fmt.Errorf("%w: %w", entity.ErrPublishFailed, err)
		}
	}

	if staged, err := p.hasStagedChanges(); err != nil {
		p.logger.Debug("staged change check unavailable", zap.Error(err))
	} else if !staged {
		p.logger.Warn("Nothing to commit.")
		metrics.IncPublishResult("nothing_to_commit")
		return result, nil
	}

	if err := p.git(ctx, "commit", "-m", message); err != nil {
		p.logger.Warn("Nothing to commit.", zap.Error(err))
		metrics.IncPublishResult("nothing_to_commit")
		return result, nil
	}
	result.Committed = true

	if err := p.git(ctx, "push", p.remote, p.branch); err != nil {
		metrics.IncPublishResult("failed")
		return result, fmt.Errorf("%w: committed locally but not pushed: %w", entity.ErrPublishFailed, err)
	}
	result.Pushed = true
	metrics.IncPublishResult("pushed")
	return result, nil
}

func (p *GitPublisher) git(ctx context.Context, args ...string) error {
	return p.runner.Run(ctx, p.repoPath, p.gitBin, args...)
}

// hasStagedChanges reports whether the index differs from HEAD.
func (p *GitPublisher) hasStagedChanges() (bool, error) {
	repo, err := git.PlainOpenWithOptions(p.repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return false, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	for _, s := range status {
		if s.Staging != git.Unmodified && s.Staging != git.Untracked {
			return true, nil
		}
	}
	return false, nil
}
