package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/AchilleasB/evaluation-client/internal/core/ports"
)

// Prompter reads operator answers from the terminal. It is the command
// layer's ports.Confirmer.
type Prompter struct {
	raw       io.Reader
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

var _ ports.Confirmer = (*Prompter)(nil)

// NewPrompter reads from in and writes prompts to out. With assumeYes every
// confirmation is granted without asking.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{raw: in, in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

func (p *Prompter) Confirm(ctx context.Context, prompt string) bool {
	if p.assumeYes {
		return true
	}
	answer, err := p.Line(prompt + " [y/N]: ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// Line prints label and returns the next trimmed input line.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Secret reads a password without echo when the input is a terminal.
func (p *Prompter) Secret(label string) (string, error) {
	file, ok := p.raw.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return p.Line(label)
	}
	fmt.Fprint(p.out, label)
	data, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(data), nil
}

// Notifier prints one-off notices such as the session expiry message.
type Notifier struct {
	W io.Writer
}

var _ ports.Notifier = Notifier{}

func (n Notifier) Notify(message string) {
	fmt.Fprintf(n.W, "! %s\n", message)
}
