package utils

import (
	"fmt"
	"io"
	"os"
)

// ReadStdin reads the contents of an unstructured record from stdin. The
// caller owns the returned bytes and wipes them once the record is built.
//
// Returns an error if stdin is a terminal, since contents must be piped in.
func ReadStdin() ([]byte, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat stdin: %w", err)
	}

	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no record contents on stdin (hint: kbs record encrypt --kind unstructured < file)")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("record contents on stdin are empty")
	}

	return data, nil
}
