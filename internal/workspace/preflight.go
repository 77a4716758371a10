package workspace

import (
	"fmt"

	"golang.org/x/sys/unix"

	"glossa/internal/faults"
)

// minFreeBytes is the floor of free space required on the workspace volume
// before a run starts. Intermediate page images routinely dwarf the source
// document, so refuse to start on a nearly full disk.
const minFreeBytes = 256 << 20

func (m *Manager) preflight() error {
	root := m.layout.Root
	if err := unix.Access(root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("workspace root %s is not read/write accessible", root), err)
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(root, &stat); err != nil {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("statfs %s", root), err)
	}
	free := uint64(stat.Bavail) * uint64(stat.Bsize)
	if free < minFreeBytes {
		return faults.Wrap(faults.ErrWorkspace, "workspace", "preflight",
			fmt.Sprintf("only %d bytes free on workspace volume, need at least %d", free, uint64(minFreeBytes)), nil)
	}
	return nil
}
