package cli

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// Prompter asks for input the user did not pass as flags
type Prompter interface {
	Input(title string) (string, error)
	Password(title string) (string, error)
}

// HuhPrompter prompts in the terminal
type HuhPrompter struct{}

// Input asks for a visible value
func (HuhPrompter) Input(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		Value(&value).
		Run()
	return value, err
}

// Password asks for a hidden value
func (HuhPrompter) Password(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()
	return value, err
}

// errNoPrompt is returned when input is required but prompting is disabled
var errNoPrompt = errors.New("input required; pass it as a flag")

type noPrompter struct{}

func (noPrompter) Input(string) (string, error)    { return "", errNoPrompt }
func (noPrompter) Password(string) (string, error) { return "", errNoPrompt }
