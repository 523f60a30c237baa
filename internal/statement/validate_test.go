package statement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaulink/itaulink/internal/model"
)

func hasInvariant(errs []ValidationError, inv int) bool {
	for _, e := range errs {
		if e.Invariant == inv {
			return true
		}
	}
	return false
}

func TestValidate_Valid(t *testing.T) {
	acct := model.Account{ID: "1", Transactions: []model.Transaction{
		tx("a", date(2023, 5, 1)),
		tx("b", date(2023, 5, 1)),
		tx("c", date(2023, 5, 2)),
	}}
	assert.Empty(t, Validate(acct))
}

func TestValidate_NotFetched(t *testing.T) {
	errs := Validate(model.Account{ID: "1"})
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Invariant)
	assert.Contains(t, errs[0].Error(), "[1]")
}

func TestValidate_Unordered(t *testing.T) {
	acct := model.Account{ID: "1", Transactions: []model.Transaction{
		tx("b", date(2023, 5, 2)),
		tx("a", date(2023, 5, 1)),
	}}
	errs := Validate(acct)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Invariant)
	assert.Equal(t, 1, errs[0].Index)
	assert.Contains(t, errs[0].Error(), "[1#1]")
}

func TestValidate_UnknownKind(t *testing.T) {
	bad := tx("a", date(2023, 5, 1))
	bad.Kind = "refund"
	assert.True(t, hasInvariant(Validate(model.Account{ID: "1", Transactions: []model.Transaction{bad}}), 3))
}

func TestValidate_TimeComponent(t *testing.T) {
	bad := tx("a", time.Date(2023, 5, 1, 13, 0, 0, 0, time.UTC))
	assert.True(t, hasInvariant(Validate(model.Account{ID: "1", Transactions: []model.Transaction{bad}}), 4))
}

func TestValidate_ExcessDecimals(t *testing.T) {
	bad := tx("a", date(2023, 5, 1))
	bad.Amount = decimal.RequireFromString("1.005")
	assert.True(t, hasInvariant(Validate(model.Account{ID: "1", Transactions: []model.Transaction{bad}}), 5))
}

func TestValidate_ExcessBalanceDecimals(t *testing.T) {
	bad := tx("a", date(2023, 5, 1))
	bad.Balance = decimal.RequireFromString("1500.256")

	errs := Validate(model.Account{ID: "1", Transactions: []model.Transaction{bad}})
	require.Len(t, errs, 1)
	assert.Equal(t, 5, errs[0].Invariant)
	assert.Contains(t, errs[0].Description, "balance 1500.256")

	bad.Balance = decimal.RequireFromString("-1500.25")
	assert.Empty(t, Validate(model.Account{ID: "1", Transactions: []model.Transaction{bad}}))
}
