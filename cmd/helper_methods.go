package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
	"github.com/PolarWolf314/kbs/internal/ui"
)

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" {
			fmt.Fprint(os.Stderr, finalMsg)
		}
	}

	return s, cleanup
}

// failureMessage renders an error for spinner.FinalMSG, with a hint for the
// errors a user can do something about.
func failureMessage(summary string, err error) string {
	msg := ui.Error.Sprint("✗") + " " + summary + "\n" + ui.Error.Sprint("Error: ") + err.Error()

	switch {
	case errors.Is(err, kerrors.ErrConfigNotFound):
		msg += "\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kbs key init") + " first"
	case errors.Is(err, kerrors.ErrAgentUnavailable):
		msg += "\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kbs key unwrap") + " to hand your key to the agent"
	case errors.Is(err, kerrors.ErrHandoffConflict):
		msg += "\n" + ui.Info.Sprint("→") + " Run " + ui.Code.Sprint("kbs key unwrap --clear") + " to remove a stale handoff"
	case errors.Is(err, kerrors.ErrWrapAuthFailure):
		msg += "\n" + ui.Info.Sprint("→") + " Check your password and try again"
	}
	return msg
}

// reportedError marks an error whose message has already been shown to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	return reportedError{err: err}
}

// IsReported reports whether err was already printed by the command that returned it.
func IsReported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}
