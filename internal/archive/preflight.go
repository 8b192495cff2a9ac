package archive

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CheckFreeSpace verifies the filesystem holding dir has at least
// required bytes available. Run before a copy pass so a full disk
// fails the run up front instead of halfway through.
func CheckFreeSpace(dir string, required int64) error {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return fmt.Errorf("statfs %q: %w", dir, err)
	}
	free := int64(st.Bavail) * int64(st.Bsize)
	if free < required {
		return fmt.Errorf("insufficient space in %q: %d bytes free, %d required", dir, free, required)
	}
	return nil
}
