package fetchlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/statement"
	"github.com/itaulink/itaulink/internal/window"
)

var testTime = time.Date(2023, 6, 10, 9, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:    testTime,
		RunID:        "run-1",
		AccountID:    "2004005",
		Window:       window.Window{Year: 2023, Month: time.May},
		Status:       StatusOK,
		Transactions: 3,
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, testEntry(), entries[0])
}

func TestAppend_ExistingFileKeepsSingleHeader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.RunID = "run-2"
	e2.Status = StatusFailed
	e2.Transactions = 0
	e2.Error = "fetching 2023-05: unexpected status 500 Internal Server Error"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].RunID)
	assert.Equal(t, e2, entries[1])
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_BadRow(t *testing.T) {
	dir := t.TempDir()
	body := "timestamp\trun_id\taccount\twindow\tstatus\ttransactions\terror\n" +
		"2023-06-10T09:30:00Z\trun-1\t2004005\tMay\tok\t3\t\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))

	_, err := Read(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestFromResults(t *testing.T) {
	may := window.Window{Year: 2023, Month: time.May}
	jun := window.Window{Year: 2023, Month: time.June}
	results := []statement.Result{
		{
			Account: model.Account{ID: "2004005"},
			Windows: []statement.WindowResult{
				{Window: jun, Err: errors.New("connection reset")},
				{Window: may, Transactions: make([]model.Transaction, 2)},
			},
		},
		{Account: model.Account{ID: "1002003"}},
	}

	entries := FromResults("run-9", testTime, results)
	require.Len(t, entries, 2)

	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "connection reset", entries[0].Error)
	assert.Equal(t, jun, entries[0].Window)
	assert.Zero(t, entries[0].Transactions)

	assert.Equal(t, StatusOK, entries[1].Status)
	assert.Equal(t, 2, entries[1].Transactions)
	assert.Equal(t, "run-9", entries[1].RunID)
	assert.Equal(t, "2004005", entries[1].AccountID)
}
