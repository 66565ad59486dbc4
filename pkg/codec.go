package fdb

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"
)

// MarshalRow converts a record into its six CSV fields. Every sentinel
// substitution of the persisted format happens here and in UnmarshalRow.
func MarshalRow(r Record) []string {
	if r.Degraded {
		return []string{r.Path, NotAvailable, NotAvailable, NotAvailable, NotAvailable, NotAvailable}
	}
	return []string{
		r.Path,
		r.Extension,
		r.Created.Format(TimeLayout),
		r.Modified.Format(TimeLayout),
		strconv.FormatInt(r.Size, 10),
		r.Hash,
	}
}

// UnmarshalRow parses six CSV fields into a record
func UnmarshalRow(fields []string) (Record, error) {
	if len(fields) != ColumnCount {
		return Record{}, fmt.Errorf("expected %d fields, got %d", ColumnCount, len(fields))
	}

	sentinels := 0
	for _, field := range fields[1:] {
		if field == NotAvailable {
			sentinels++
		}
	}
	switch sentinels {
	case 0:
	case ColumnCount - 1:
		return DegradedRecord(fields[0]), nil
	default:
		return Record{}, fmt.Errorf("row for %s has %d of %d fields unavailable", fields[0], sentinels, ColumnCount-1)
	}

	created, err := parseTimestamp(fields[2])
	if err != nil {
		return Record{}, fmt.Errorf("invalid created time for %s: %w", fields[0], err)
	}
	modified, err := parseTimestamp(fields[3])
	if err != nil {
		return Record{}, fmt.Errorf("invalid modified time for %s: %w", fields[0], err)
	}
	size, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid size for %s: %w", fields[0], err)
	}

	return Record{
		Path:      fields[0],
		Extension: fields[1],
		Created:   created,
		Modified:  modified,
		Size:      size,
		Hash:      fields[5],
	}, nil
}

// parseTimestamp accepts TimeLayout and the legacy local-time layout
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(LegacyLayout, s, time.Local)
}

// validateHeader checks the header row names the six columns in order
func validateHeader(header []string) error {
	if len(header) != ColumnCount {
		return fmt.Errorf("header has %d columns, expected %d", len(header), ColumnCount)
	}
	for i, name := range header {
		if name == Columns[i] || (i == 0 && name == PathColumnAlt) {
			continue
		}
		return fmt.Errorf("header column %d is %q, expected %q", i+1, name, Columns[i])
	}
	return nil
}

// DecodeInventory reads a CSV inventory from r
func DecodeInventory(r io.Reader) (Inventory, error) {
	reader := csv.NewReader(r)
	reader.Comma = Delimiter
	reader.FieldsPerRecord = ColumnCount

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var inv Inventory
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		record, err := UnmarshalRow(fields)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		inv = append(inv, record)
	}
	return inv, nil
}

// ReadInventory loads an inventory file
func ReadInventory(path string) (Inventory, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, usageError("read database", path, "path does not exist")
		}
		return nil, &Error{Kind: KindFatalIO, Op: "read database", Path: path, Err: err}
	}
	defer file.Close()

	inv, err := DecodeInventory(file)
	if err != nil {
		return nil, &Error{Kind: KindFatalIO, Op: "read database", Path: path, Err: err}
	}
	return inv, nil
}

// encodeRows renders the header and every record as CSV lines. Each
// returned slice is one complete line, all backed by a single buffer.
func encodeRows(inv Inventory) ([][]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	writer.Comma = Delimiter

	// UseCRLF would strip carriage returns inside quoted fields, so rows are
	// written with \n and the terminator is rewritten here
	ends := make([]int, 0, len(inv)+1)
	write := func(fields []string) error {
		if err := writer.Write(fields); err != nil {
			return err
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteString(LineTerminator)
		ends = append(ends, buf.Len())
		return nil
	}

	if err := write(Columns); err != nil {
		return nil, fmt.Errorf("failed to encode header: %w", err)
	}
	for _, r := range inv {
		if err := write(MarshalRow(r)); err != nil {
			return nil, fmt.Errorf("failed to encode row for %s: %w", r.Path, err)
		}
	}

	data := buf.Bytes()
	rows := make([][]byte, len(ends))
	start := 0
	for i, end := range ends {
		rows[i] = data[start:end]
		start = end
	}
	return rows, nil
}

// EncodeInventory writes inv as CSV to w
func EncodeInventory(w io.Writer, inv Inventory) error {
	rows, err := encodeRows(inv)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteInventory creates path exclusively and writes inv to it. An existing
// path is a usage error; a failed write removes the partial file.
func WriteInventory(path string, inv Inventory) error {
	rows, err := encodeRows(inv)
	if err != nil {
		return &Error{Kind: KindFatalIO, Op: "write database", Path: path, Err: err}
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return usageError("write database", path, "file already exists")
		}
		return &Error{Kind: KindFatalIO, Op: "write database", Path: path, Err: err}
	}

	if err := writeRows(file, rows); err != nil {
		file.Close()
		os.Remove(path)
		return &Error{Kind: KindFatalIO, Op: "write database", Path: path, Err: err}
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return &Error{Kind: KindFatalIO, Op: "write database", Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return &Error{Kind: KindFatalIO, Op: "write database", Path: path, Err: err}
	}
	return nil
}
