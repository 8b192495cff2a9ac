package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Mode selects how a file is placed into the archive.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeMove Mode = "move"
)

// ParseMode validates a mode flag value.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeCopy, ModeMove:
		return Mode(value), nil
	}
	return "", fmt.Errorf("unsupported placement mode %q (use %q or %q)", value, ModeCopy, ModeMove)
}

// Place puts src at dst. Move renames when possible and falls back to
// copy-then-remove across filesystems. The target directory must
// already exist and the target name must be free; an existing file is
// never overwritten.
func Place(src string, dst Destination, mode Mode) error {
	info, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("source path does not exist: %q", src)
		}
		return fmt.Errorf("stat source %q: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("source %q is not a regular file", src)
	}
	if dirInfo, err := os.Stat(dst.Dir); err != nil || !dirInfo.IsDir() {
		return fmt.Errorf("target directory does not exist: %q", dst.Dir)
	}

	target := dst.Path()
	if _, err := os.Lstat(target); err == nil {
		return fmt.Errorf("target already exists: %q", target)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat target %q: %w", target, err)
	}

	if mode == ModeMove {
		if err := os.Rename(src, target); err == nil {
			return nil
		}
		// Likely a cross-device rename; copy then remove the original.
		if err := copyFile(src, target, info.Mode().Perm()); err != nil {
			return err
		}
		if err := os.Remove(src); err != nil {
			return fmt.Errorf("remove source after copy %q: %w", src, err)
		}
		return nil
	}
	return copyFile(src, target, info.Mode().Perm())
}

func copyFile(src, target string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create target %q: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(target)
		return fmt.Errorf("copy to %q: %w", target, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(target)
		return fmt.Errorf("close target %q: %w", target, err)
	}
	return nil
}
