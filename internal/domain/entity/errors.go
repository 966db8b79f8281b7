package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPrompt       = errors.New("empty prompt")
	ErrTransport         = errors.New("model transport error")
	ErrExtractionFailed  = errors.New("llm json parse failed")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrInvalidRecord     = errors.New("action record violates schema")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrValidationFailed  = errors.New("terraform validation failed")
	ErrPublishFailed     = errors.New("publish failed")
)

// UnsupportedActionError names the action kind the model asked for.
// It matches ErrUnsupportedAction.
type UnsupportedActionError struct {
	Action ActionKind
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("%s: %q (supported: %s)", ErrUnsupportedAction, e.Action, SupportedActionList())
}

func (e *UnsupportedActionError) Unwrap() error {
	return ErrUnsupportedAction
}

// SupportedActionList renders SupportedActions for messages.
func SupportedActionList() string {
	names := make([]string, len(SupportedActions))
	for i, a := range SupportedActions {
		names[i] = string(a)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
