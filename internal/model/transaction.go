package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a movement.
type TransactionKind string

const (
	KindDebit  TransactionKind = "debit"
	KindCredit TransactionKind = "credit"
)

// Tag names a classification tag stored in Transaction.Metadata.
type Tag string

const (
	TagDebitCardPurchase Tag = "debit_card_purchase"
	TagATM               Tag = "atm"
	TagBankCosts         Tag = "bank_costs"
	TagBankTransfer      Tag = "bank_transfer"
	TagBankTransferFrom  Tag = "bank_transfer_from"
	TagBankTransferTo    Tag = "bank_transfer_to"
	TagTaxReturn         Tag = "tax_return"
)

// Metadata holds heuristic tags. Values are either bool or string.
type Metadata map[Tag]any

// Flag reports whether a boolean tag is set to true.
func (m Metadata) Flag(tag Tag) bool {
	v, ok := m[tag].(bool)
	return ok && v
}

// Text returns a string tag, or "" if absent.
func (m Metadata) Text(tag Tag) string {
	s, _ := m[tag].(string)
	return s
}

// Transaction is one normalized statement movement.
type Transaction struct {
	Description           string
	AdditionalDescription string
	Kind                  TransactionKind
	Amount                decimal.Decimal
	Balance               decimal.Decimal
	Date                  time.Time // UTC midnight
	Metadata              Metadata
}

// Debit returns the amount when the movement is a debit, zero otherwise.
func (t Transaction) Debit() decimal.Decimal {
	if t.Kind == KindDebit {
		return t.Amount
	}
	return decimal.Zero
}

// Credit returns the amount when the movement is a credit, zero otherwise.
func (t Transaction) Credit() decimal.Decimal {
	if t.Kind == KindCredit {
		return t.Amount
	}
	return decimal.Zero
}
