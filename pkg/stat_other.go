//go:build !linux

package fdb

import (
	"os"
	"time"
)

// fileTimes returns mtime for both timestamps on platforms without a portable change time
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	return modified, modified
}
