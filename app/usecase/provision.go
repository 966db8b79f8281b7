package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/intent"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/metrics"
)

// ProvisionService runs one prompt through resolution, rendering,
// validation and publishing.
type ProvisionService struct {
	resolver     *IntentResolver
	normalizer   *intent.Normalizer
	renderer     repository.TemplateRenderer
	store        repository.ArtifactStore
	validators   []repository.ConfigValidator
	publisher    repository.Publisher
	templates    map[string]string
	artifactName string
	logger       *zap.Logger
}

type ProvisionOptions struct {
	Resolver   *IntentResolver
	Normalizer *intent.Normalizer
	Renderer   repository.TemplateRenderer
	Store      repository.ArtifactStore
	// Validators run in order; the first failure stops the run.
	Validators []repository.ConfigValidator
	Publisher  repository.Publisher
	// Templates maps an action kind to its template path.
	Templates    map[string]string
	ArtifactName string
}

func NewProvisionService(opts ProvisionOptions, logger *zap.Logger) *ProvisionService {
	name := opts.ArtifactName
	if name == "" {
		name = "main.tf"
	}
	return &ProvisionService{
		resolver:     opts.Resolver,
		normalizer:   opts.Normalizer,
		renderer:     opts.Renderer,
		store:        opts.Store,
		validators:   opts.Validators,
		publisher:    opts.Publisher,
		templates:    opts.Templates,
		artifactName: name,
		logger:       logger,
	}
}

// Understand turns a free-form prompt into a normalized action request.
func (s *ProvisionService) Understand(ctx context.Context, prompt string) (entity.ActionRequest, error) {
	if strings.TrimSpace(prompt) == "" {
		return entity.ActionRequest{}, entity.ErrEmptyPrompt
	}
	rec, err := s.resolver.Resolve(ctx, prompt)
	if err != nil {
		return entity.ActionRequest{}, fmt.Errorf("resolve intent: %w", err)
	}
	s.logger.Info("Got JSON", zap.Any("record", map[string]any(rec)))
	req, err := s.normalizer.Normalize(rec)
	if err != nil {
		return entity.ActionRequest{}, fmt.Errorf("normalize intent: %w", err)
	}
	return req, nil
}

// Provision executes the full pipeline. The returned run reflects the last
// status reached, including on failure.
func (s *ProvisionService) Provision(ctx context.Context, prompt string) (*entity.Run, error) {
	run := entity.NewRun(prompt)
	defer func() { metrics.ObserveRunDuration(run.Elapsed()) }()

	s.logger.Info("Understanding prompt...", zap.String("run_id", run.ID))
	req, err := s.Understand(ctx, prompt)
	if err != nil {
		return run, s.fail(run, err)
	}
	run.Action = req.Action
	s.setStatus(run, entity.RunStatusResolved)
	s.logger.Debug("normalized request", zap.Any("request", map[string]any(req.Record())))

	file, err := s.render(run, req)
	if err != nil {
		return run, s.fail(run, err)
	}
	path, err := s.store.SaveArtifact(ctx, file)
	if err != nil {
		return run, s.fail(run, fmt.Errorf("save artifact: %w", err))
	}
	s.setStatus(run, entity.RunStatusRendered)
	s.logger.Info("Terraform written", zap.String("path", path))

	s.logger.Info("Validating Terraform...")
	for _, v := range s.validators {
		if err := v.Validate(ctx, file, s.store.GetBasePath()); err != nil {
			return run, s.fail(run, fmt.Errorf("%s validation: %w", v.Name(), err))
		}
	}
	s.setStatus(run, entity.RunStatusValidated)
	s.logger.Info("Terraform validation successful")

	res, err := s.publisher.Publish(ctx, "AI: "+string(req.Action))
	if err != nil {
		return run, s.fail(run, err)
	}
	s.setStatus(run, entity.RunStatusPublished)
	if res.Pushed {
		s.logger.Info("Pushed to GitHub")
	}
	return run, nil
}

func (s *ProvisionService) render(run *entity.Run, req entity.ActionRequest) (*entity.ConfigFile, error) {
	tplPath, ok := s.templates[string(req.Action)]
	if !ok {
		return nil, fmt.Errorf("%w: no template for action %q", entity.ErrTemplateNotFound, req.Action)
	}
	rendered, err := s.renderer.Render(tplPath, req.Vars())
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	if len(rendered.Unresolved) > 0 {
		s.logger.Debug("placeholders left unresolved",
			zap.String("template", tplPath),
			zap.Strings("names", rendered.Unresolved),
		)
	}
	return &entity.ConfigFile{
		RunID:   run.ID,
		Name:    s.artifactName,
		Content: rendered.Content,
		Type:    "terraform",
	}, nil
}

func (s *ProvisionService) setStatus(run *entity.Run, status entity.RunStatus) {
	prev := run.UpdateStatus(status)
	metrics.IncRunStatusChange(string(prev), string(status))
}

func (s *ProvisionService) fail(run *entity.Run, err error) error {
	s.setStatus(run, entity.RunStatusFailed)
	s.logger.Debug("run failed",
		zap.String("run_id", run.ID),
		zap.Error(err),
	)
	return err
}
