//go:build linux

package fdb

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns the change time and modification time of info. The
// change time falls back to mtime when info does not come from the OS.
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || stat == nil {
		return modified, modified
	}
	return time.Unix(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec)), modified
}
