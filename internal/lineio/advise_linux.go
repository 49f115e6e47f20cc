//go:build linux

package lineio

import (
	"os"

	"golang.org/x/sys/unix"
)

// AdviseSequential is a best-effort kernel hint that f will be read once,
// front to back.
func AdviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_WILLNEED)
}
