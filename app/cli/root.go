package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aiinfra/internal/domain/entity"
)

// Provisioner runs the whole pipeline for one prompt.
type Provisioner interface {
	Provision(ctx context.Context, prompt string) (*entity.Run, error)
}

// NewRootCommand builds the interactive command. It takes no flags or
// arguments; the prompt is read from stdin.
func NewRootCommand(p Provisioner) *cobra.Command {
	return &cobra.Command{
		Use:           "aiinfra",
		Short:         "Turn a plain-language request into validated Terraform",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "Enter command: ")
			prompt, err := readPrompt(cmd.InOrStdin())
			if err != nil {
				return err
			}
			_, err = p.Provision(cmd.Context(), prompt)
			return err
		},
	}
}

func readPrompt(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read prompt: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", entity.ErrEmptyPrompt
	}
	return line, nil
}

// Exit codes.
const (
	ExitOK = iota
	ExitFailure
	ExitEmptyPrompt
	ExitTransport
	ExitExtraction
	ExitInvalidAction
	ExitValidation
	ExitPublish
)

// ExitCode maps a pipeline error to the process status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, entity.ErrEmptyPrompt):
		return ExitEmptyPrompt
	case errors.Is(err, entity.ErrTransport):
		return ExitTransport
	case errors.Is(err, entity.ErrExtractionFailed):
		return ExitExtraction
	case errors.Is(err, entity.ErrUnsupportedAction), errors.Is(err, entity.ErrInvalidRecord):
		return ExitInvalidAction
	case errors.Is(err, entity.ErrValidationFailed):
		return ExitValidation
	case errors.Is(err, entity.ErrPublishFailed):
		return ExitPublish
	}
	return ExitFailure
}

// UserMessage is the one-line summary printed for err.
func UserMessage(err error) string {
	var unsupported *entity.UnsupportedActionError
	switch {
	case errors.Is(err, entity.ErrEmptyPrompt):
		return "Empty prompt."
	case errors.As(err, &unsupported):
		return fmt.Sprintf("Unsupported action: %s. Supported: %s", unsupported.Action, entity.SupportedActionList())
	case errors.Is(err, entity.ErrUnsupportedAction):
		return "Unsupported action. Supported: " + entity.SupportedActionList()
	case errors.Is(err, entity.ErrExtractionFailed):
		return "LLM JSON parse failed."
	case errors.Is(err, entity.ErrValidationFailed):
		return "Terraform validation failed."
	}
	return err.Error()
}
