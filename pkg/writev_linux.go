//go:build linux

package fdb

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// maxIovecs is IOV_MAX on Linux, the most iovecs one writev call accepts
const maxIovecs = 1024

// writeRows writes every row with writev, chunked to respect the kernel iovec limit
func writeRows(file *os.File, rows [][]byte) error {
	iovecs := make([]syscall.Iovec, 0, len(rows))
	total := 0
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		iovec := syscall.Iovec{Base: &row[0]}
		iovec.SetLen(len(row))
		iovecs = append(iovecs, iovec)
		total += len(row)
	}

	// reserve the blocks up front; filesystems without fallocate just skip it
	if total > 0 {
		if err := unix.Fallocate(int(file.Fd()), 0, 0, int64(total)); err != nil &&
			!errors.Is(err, unix.EOPNOTSUPP) && !errors.Is(err, unix.ENOSYS) {
			return fmt.Errorf("failed to allocate %d bytes: %w", total, err)
		}
	}

	written := 0
	for offset := 0; offset < len(iovecs); offset += maxIovecs {
		end := offset + maxIovecs
		if end > len(iovecs) {
			end = len(iovecs)
		}

		chunk := iovecs[offset:end]
		expected := 0
		for _, iovec := range chunk {
			expected += int(iovec.Len)
		}

		nw, err := vectorio.WritevRaw(file.Fd(), chunk)
		if err != nil {
			return fmt.Errorf("failed to write rows with vectorio: %w", err)
		}
		if nw != expected {
			return fmt.Errorf("rows write incomplete: wrote %d bytes, expected %d", nw, expected)
		}
		written += nw
	}

	if written != total {
		return fmt.Errorf("rows write incomplete: wrote %d bytes, expected %d", written, total)
	}
	return nil
}
