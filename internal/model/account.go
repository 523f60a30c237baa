package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts by the portal category they are listed under.
type AccountType string

const (
	AccountTypeSavings       AccountType = "savings"
	AccountTypeTransactional AccountType = "transactional"
	AccountTypeCollections   AccountType = "collections"
	AccountTypeJuniorSavings AccountType = "junior-savings"
)

// Currency pairs an ISO 4217 code with the symbol the portal displays.
type Currency struct {
	ISO     string
	Display string
}

// Account is one bank account as reported at login time.
type Account struct {
	ID            string
	Name          string // account holder
	Type          AccountType
	Currency      Currency
	RawCurrency   string // portal code, e.g. "URGP"; encoded in statement requests
	Hash          string
	Balance       decimal.Decimal
	AccountTypeID string
	Original      json.RawMessage

	// Transactions is nil until the account's statements have been aggregated.
	Transactions []Transaction
}

// Fetched reports whether the account's transactions have been bound.
func (a Account) Fetched() bool {
	return a.Transactions != nil
}
