package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user simple questions on the terminal.
type Prompter struct {
	in  *LineReader
	out io.Writer
}

// NewPrompter creates a prompter over the given streams.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: NewLineReader(in), out: out}
}

// Confirm asks a yes/no question. Empty input takes the default.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Fprintf(p.out, "%s %s ", FormatPrompt(question), hint)

	line, err := p.in.ReadLine(ctx)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(line) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Input asks for a free-form value. Empty input takes the default.
func (p *Prompter) Input(ctx context.Context, label, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s %s ", FormatPrompt(label), SubtleStyle.Render("("+defaultValue+")"))
	} else {
		fmt.Fprintf(p.out, "%s ", FormatPrompt(label))
	}

	line, err := p.in.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}
