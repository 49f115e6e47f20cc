//go:build !linux

package lineio

import "os"

// AdviseSequential is a no-op where posix_fadvise is unavailable.
func AdviseSequential(f *os.File) {}
