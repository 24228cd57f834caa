package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces a leading "~" with the user's home directory.
// Paths of the form "~user" are returned unchanged.
func ExpandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	if path == "~" {
		return homeDir, nil
	}
	return filepath.Join(homeDir, path[2:]), nil
}

// FileExists reports whether path exists. Errors other than "not found" are returned.
func FileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("error checking %s: %w", path, err)
}

// CopyFile copies src to dst with the given permissions, replacing dst if it exists.
func CopyFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}

	if err := os.WriteFile(dst, data, perm); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
