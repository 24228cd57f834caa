package handoff

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	kerrors "github.com/PolarWolf314/kbs/internal/errors"
)

// shmDir is where glibc's shm_open places named objects.
const shmDir = "/dev/shm"

func slotPath(name string) (string, error) {
	trimmed := strings.TrimPrefix(name, "/")
	if trimmed == "" || strings.ContainsRune(trimmed, '/') || trimmed == "." || trimmed == ".." {
		return "", fmt.Errorf("invalid shared memory name %q", name)
	}
	return filepath.Join(shmDir, trimmed), nil
}

func createSlot(name string) (*os.File, error) {
	path, err := slotPath(name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0600)
	if err != nil {
		if errors.Is(err, unix.EEXIST) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrHandoffConflict, name)
		}
		return nil, &os.PathError{Op: "shm_open", Path: path, Err: err}
	}

	return os.NewFile(uintptr(fd), path), nil
}

func writeSlot(f *os.File, data []byte) error {
	fd := int(f.Fd())

	if err := unix.Ftruncate(fd, int64(len(data))); err != nil {
		return &os.PathError{Op: "ftruncate", Path: f.Name(), Err: err}
	}

	for written := 0; written < len(data); {
		n, err := unix.Write(fd, data[written:])
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return &os.PathError{Op: "write", Path: f.Name(), Err: err}
		}
		written += n
	}

	if _, err := unix.Seek(fd, 0, io.SeekStart); err != nil {
		return &os.PathError{Op: "seek", Path: f.Name(), Err: err}
	}
	return nil
}

func readSlot(name string) ([]byte, error) {
	path, err := slotPath(name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "shm_open", Path: path, Err: err}
	}
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read shared memory slot %s: %w", name, err)
	}
	return data, nil
}

func removeSlot(name string) error {
	path, err := slotPath(name)
	if err != nil {
		return err
	}

	if err := unix.Unlink(path); err != nil && !errors.Is(err, unix.ENOENT) {
		return &os.PathError{Op: "shm_unlink", Path: path, Err: err}
	}
	return nil
}

func slotExists(name string) (bool, error) {
	path, err := slotPath(name)
	if err != nil {
		return false, err
	}

	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return false, nil
		}
		return false, &os.PathError{Op: "lstat", Path: path, Err: err}
	}
	return true, nil
}
