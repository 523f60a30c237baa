package accounts

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaulink/itaulink/internal/model"
)

func loadService(t *testing.T) *Service {
	t.Helper()
	accts, err := Parse(readListing(t))
	require.NoError(t, err)
	return NewService(accts)
}

func TestGet(t *testing.T) {
	svc := loadService(t)

	acct, ok := svc.Get("1002003")
	assert.True(t, ok)
	assert.Equal(t, model.AccountTypeTransactional, acct.Type)

	_, ok = svc.Get("missing")
	assert.False(t, ok)
}

func TestByType(t *testing.T) {
	svc := loadService(t)

	savings := svc.ByType(model.AccountTypeSavings)
	assert.Len(t, savings, 2)
	for _, a := range savings {
		assert.Equal(t, model.AccountTypeSavings, a.Type)
	}
	assert.Empty(t, svc.ByType(model.AccountTypeCollections))
}

func TestByCurrency(t *testing.T) {
	svc := loadService(t)
	assert.Len(t, svc.ByCurrency("UYU"), 2)
	assert.Len(t, svc.ByCurrency("USD"), 2)
	assert.Empty(t, svc.ByCurrency("EUR"))
}

func TestSave(t *testing.T) {
	svc := loadService(t)
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, svc.Save(dir))

	f, err := os.Open(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	defer f.Close()

	cr := csv.NewReader(f)
	cr.Comma = '\t'
	records, err := cr.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, SummaryHeader, records[0])
	assert.Equal(t, []string{"2004005", "savings", "UYU", "$", "1000.00", "MARIA FERNANDEZ", ""}, records[1])
}

func TestMarshalAccount_TransactionCount(t *testing.T) {
	acct := model.Account{ID: "1", Transactions: []model.Transaction{{}, {}}}
	row := MarshalAccount(acct)
	assert.Equal(t, "2", row[colTxns])

	acct.Transactions = []model.Transaction{}
	assert.Equal(t, "0", MarshalAccount(acct)[colTxns])
}
