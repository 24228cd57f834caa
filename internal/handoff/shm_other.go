//go:build !linux

package handoff

import (
	"fmt"
	"os"
	"runtime"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
)

func unsupported() error {
	return fmt.Errorf("%w: shared memory handoff on %s", kerrors.ErrUnsupportedPlatform, runtime.GOOS)
}

func createSlot(string) (*os.File, error) { return nil, unsupported() }

func writeSlot(*os.File, []byte) error { return unsupported() }

func readSlot(string) ([]byte, error) { return nil, unsupported() }

func removeSlot(string) error { return unsupported() }

func slotExists(string) (bool, error) { return false, unsupported() }
