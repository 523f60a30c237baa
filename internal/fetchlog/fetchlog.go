// Package fetchlog records the outcome of every month fetched in a run.
package fetchlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/itaulink/itaulink/internal/statement"
	"github.com/itaulink/itaulink/internal/window"
)

// FileName is the report written by Append.
const FileName = "fetch-report.tsv"

// Status is the outcome of one window.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Entry is one row in the fetch report.
type Entry struct {
	Timestamp    time.Time
	RunID        string
	AccountID    string
	Window       window.Window
	Status       Status
	Transactions int
	Error        string
}

// Header is the column layout of the fetch report.
var Header = []string{"timestamp", "run_id", "account", "window", "status", "transactions", "error"}

const (
	numFields    = 7
	colTimestamp = 0
	colRunID     = 1
	colAccount   = 2
	colWindow    = 3
	colStatus    = 4
	colTxns      = 5
	colError     = 6
)

// FromResults flattens aggregated results into report entries, one per
// window, in result order.
func FromResults(runID string, ts time.Time, results []statement.Result) []Entry {
	var entries []Entry
	for _, r := range results {
		for _, w := range r.Windows {
			e := Entry{
				Timestamp:    ts,
				RunID:        runID,
				AccountID:    r.Account.ID,
				Window:       w.Window,
				Status:       StatusOK,
				Transactions: len(w.Transactions),
			}
			if w.Failed() {
				e.Status = StatusFailed
				e.Error = w.Err.Error()
			}
			entries = append(entries, e)
		}
	}
	return entries
}

// MarshalEntry converts an Entry to a row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colAccount] = e.AccountID
	row[colWindow] = e.Window.String()
	row[colStatus] = string(e.Status)
	row[colTxns] = strconv.Itoa(e.Transactions)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	w, err := window.Parse(record[colWindow])
	if err != nil {
		return Entry{}, err
	}
	n, err := strconv.Atoi(record[colTxns])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTxns], err)
	}

	return Entry{
		Timestamp:    ts,
		RunID:        record[colRunID],
		AccountID:    record[colAccount],
		Window:       w,
		Status:       Status(record[colStatus]),
		Transactions: n,
		Error:        record[colError],
	}, nil
}

// Append writes entries to <dir>/fetch-report.tsv, creating the file and
// header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	path := filepath.Join(dir, FileName)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening fetch report: %w", err)
	}
	defer f.Close()

	cw := newWriter(f)
	if needsHeader {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/fetch-report.tsv, or nil if the file
// does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening fetch report: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	return cw
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading fetch report: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
