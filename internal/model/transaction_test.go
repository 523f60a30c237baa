package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionDebitCredit(t *testing.T) {
	amt := decimal.RequireFromString("120.50")

	debit := Transaction{Kind: KindDebit, Amount: amt}
	assert.True(t, debit.Debit().Equal(amt))
	assert.True(t, debit.Credit().IsZero())

	credit := Transaction{Kind: KindCredit, Amount: amt}
	assert.True(t, credit.Credit().Equal(amt))
	assert.True(t, credit.Debit().IsZero())
}

func TestMetadataAccessors(t *testing.T) {
	m := Metadata{
		TagATM:              true,
		TagBankTransferFrom: "1234567890",
	}
	assert.True(t, m.Flag(TagATM))
	assert.False(t, m.Flag(TagTaxReturn))
	assert.False(t, m.Flag(TagBankTransferFrom), "string tag is not a flag")
	assert.Equal(t, "1234567890", m.Text(TagBankTransferFrom))
	assert.Equal(t, "", m.Text(TagBankTransferTo))

	var empty Metadata
	assert.False(t, empty.Flag(TagATM))
}

func TestAccountFetched(t *testing.T) {
	var a Account
	assert.False(t, a.Fetched())

	a.Transactions = []Transaction{}
	assert.True(t, a.Fetched())
}
