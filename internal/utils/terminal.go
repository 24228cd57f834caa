package utils

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/awnumar/memguard"
	"golang.org/x/term"
)

// ErrPasswordMismatch is returned when a password and its confirmation differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// ReadPassphrase prompts the user for a passphrase on stdin without echoing input.
// Returns an error if stdin is not a terminal.
func ReadPassphrase(ctx context.Context, prompt string) ([]byte, error) {
	return readPassword(ctx, os.Stdin, prompt)
}

// ReadPassphraseFromTTY prompts the user for a passphrase from /dev/tty (or CON on Windows).
// This is useful when stdin is being used for other input (e.g., piping record contents).
// Returns an error if /dev/tty cannot be opened.
func ReadPassphraseFromTTY(ctx context.Context, prompt string) ([]byte, error) {
	tty, err := os.Open(ttyPath())
	if err != nil {
		return nil, fmt.Errorf("cannot open %s for passphrase input: %w", ttyPath(), err)
	}
	defer tty.Close()

	return readPassword(ctx, tty, prompt)
}

// readPassword reads a line from the terminal f with echo disabled. If ctx is
// done first, the terminal state is restored and ctx.Err() is returned.
func readPassword(ctx context.Context, f *os.File, prompt string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot read passphrase: %s is not a terminal", f.Name())
	}

	state, err := term.GetState(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read terminal state: %w", err)
	}

	type result struct {
		passphrase []byte
		err        error
	}
	done := make(chan result, 1)

	fmt.Fprint(os.Stderr, prompt)
	go func() {
		passphrase, err := term.ReadPassword(fd)
		done <- result{passphrase, err}
	}()

	select {
	case r := <-done:
		fmt.Fprintln(os.Stderr) // Add newline after hidden input
		if r.err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", r.err)
		}
		return r.passphrase, nil
	case <-ctx.Done():
		// The pending read is abandoned with echo still off.
		_ = term.Restore(fd, state)
		fmt.Fprintln(os.Stderr)
		return nil, ctx.Err()
	}
}

// PromptPassword reads a password from stdin when it is a terminal and falls
// back to the TTY when stdin is piped.
func PromptPassword(ctx context.Context, prompt string) ([]byte, error) {
	if IsTerminal() {
		return ReadPassphrase(ctx, prompt)
	}
	return ReadPassphraseFromTTY(ctx, prompt)
}

// PromptNewPassword reads a password twice and returns it only if both entries match.
func PromptNewPassword(ctx context.Context, prompt, confirmPrompt string) ([]byte, error) {
	first, err := PromptPassword(ctx, prompt)
	if err != nil {
		return nil, err
	}

	second, err := PromptPassword(ctx, confirmPrompt)
	if err != nil {
		memguard.WipeBytes(first)
		return nil, err
	}
	defer memguard.WipeBytes(second)

	if len(first) == 0 {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if subtle.ConstantTimeCompare(first, second) != 1 {
		memguard.WipeBytes(first)
		return nil, ErrPasswordMismatch
	}

	return first, nil
}

// IsTerminal returns true if stdin is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func ttyPath() string {
	if runtime.GOOS == "windows" {
		return "CON"
	}
	return "/dev/tty"
}
