package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"aiinfra/internal/domain/entity"
	"aiinfra/internal/domain/intent"
	"aiinfra/internal/domain/repository"
	"aiinfra/internal/infrastructure/metrics"
)

const defaultMaxRetries = 3

type resolveState int

const (
	stateNeedText resolveState = iota
	stateHaveCandidate
	stateParsed
	stateFailed
)

func (s resolveState) String() string {
	switch s {
	case stateNeedText:
		return "need_text"
	case stateHaveCandidate:
		return "have_candidate"
	case stateParsed:
		return "parsed"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// transition is the outcome of examining one model reply.
type transition struct {
	state   resolveState
	outcome string // no_json|parse_error|parsed
	record  entity.Record
	// prompt is the corrective request for the next model call.
	prompt string
	err    error
}

// IntentResolver obtains a parseable action record from the model,
// re-prompting on missing or malformed JSON.
type IntentResolver struct {
	gen        repository.TextGenerator
	repairer   *intent.Repairer
	maxRetries int
	logger     *zap.Logger
}

func NewIntentResolver(gen repository.TextGenerator, repairer *intent.Repairer, maxRetries int, logger *zap.Logger) *IntentResolver {
	if repairer == nil {
		repairer = intent.NewRepairer()
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &IntentResolver{
		gen:        gen,
		repairer:   repairer,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Resolve returns the first reply that parses as a JSON object. The action
// kind is not checked here. When every attempt fails the model has been
// called exactly maxRetries+1 times and ErrExtractionFailed is returned.
func (r *IntentResolver) Resolve(ctx context.Context, userPrompt string) (entity.Record, error) {
	system := entity.ActionSchemaPrompt.Text

	raw, err := r.gen.Generate(ctx, userPrompt, system)
	if err != nil {
		return nil, err
	}

	var last transition
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		last = r.next(userPrompt, raw)
		metrics.IncResolveAttempt(last.outcome)

		if last.state == stateParsed {
			r.logger.Debug("model reply parsed", zap.Int("attempt", attempt), zap.Stringer("state", last.state))
			return last.record, nil
		}

		r.logger.Info("model reply rejected, re-prompting",
			zap.Int("attempt", attempt),
			zap.Stringer("state", last.state),
			zap.String("outcome", last.outcome),
			zap.Error(last.err),
		)
		r.logger.Debug("corrective prompt", zap.Int("length", len(last.prompt)))

		raw, err = r.gen.Generate(ctx, last.prompt, system)
		if err != nil {
			return nil, err
		}
	}

	metrics.IncExtractionFailure()
	r.logger.Warn("intent resolution failed", zap.Stringer("state", stateFailed), zap.Int("attempts", r.maxRetries))
	return nil, fmt.Errorf("%w after %d attempts: %w", entity.ErrExtractionFailed, r.maxRetries, last.err)
}

// next classifies one raw reply. It is pure. A reply without JSON leaves
// the resolver in stateNeedText; a candidate that fails to parse stays in
// stateHaveCandidate and is sent back for fixing.
func (r *IntentResolver) next(userPrompt, raw string) transition {
	candidate, ok := intent.Extract(raw)
	if !ok {
		return transition{
			state:   stateNeedText,
			outcome: "no_json",
			prompt:  entity.JSONOnlyPrompt(userPrompt),
			err:     errors.New("no JSON object in reply"),
		}
	}

	repaired := r.repairer.Repair(candidate)
	rec, err := intent.ParseObject(repaired)
	if err != nil {
		return transition{
			state:   stateHaveCandidate,
			outcome: "parse_error",
			prompt:  entity.FixJSONPrompt(repaired),
			err:     err,
		}
	}
	return transition{state: stateParsed, outcome: "parsed", record: rec}
}
