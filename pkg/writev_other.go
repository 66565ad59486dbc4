//go:build !linux

package fdb

import (
	"bufio"
	"os"
)

// writeRows writes every row through a buffered writer
func writeRows(file *os.File, rows [][]byte) error {
	w := bufio.NewWriter(file)
	for _, row := range rows {
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Flush()
}
