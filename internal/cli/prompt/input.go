// Package prompt wraps manifoldco/promptui for opboxlinkctl's interactive
// commands.
package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted returns true if err indicates the user aborted the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// InputRequired prompts for required text input.
func InputRequired(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" {
				return promptui.ErrAbort
			}
			return nil
		},
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// InputOptional prompts for optional text input. Returns "" on a bare Enter.
func InputOptional(label string) (string, error) {
	p := promptui.Prompt{Label: label + " (optional)"}
	result, err := p.Run()
	return result, wrapError(err)
}
