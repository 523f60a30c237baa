package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/itaulink/itaulink/internal/model"
)

// ErrInvalidRecord marks a raw movement that cannot become a Transaction.
var ErrInvalidRecord = errors.New("invalid transaction record")

// RawDate is the portal's split date representation.
type RawDate struct {
	Year  int `json:"year"`
	Month int `json:"monthOfYear"`
	Day   int `json:"dayOfMonth"`
}

// RawTransaction is one entry of a statement's "movimientos" list.
type RawTransaction struct {
	Type                  string          `json:"tipo"`
	Description           string          `json:"descripcion"`
	AdditionalDescription string          `json:"descripcionAdicional"`
	Amount                decimal.Decimal `json:"importe"`
	Balance               decimal.Decimal `json:"saldo"`
	Date                  RawDate         `json:"fecha"`
}

// Classifier turns raw movements into Transactions and tags them.
type Classifier struct {
	rules *Rules
}

// NewClassifier creates a Classifier that applies rules in registration order.
func NewClassifier(rules *Rules) *Classifier {
	return &Classifier{rules: rules}
}

// DefaultClassifier returns a Classifier with the built-in rules.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules())
}

// Classify normalizes raw. Any type code other than D or C yields ErrInvalidRecord.
func (c *Classifier) Classify(raw RawTransaction) (model.Transaction, error) {
	var kind model.TransactionKind
	switch raw.Type {
	case "D":
		kind = model.KindDebit
	case "C":
		kind = model.KindCredit
	default:
		return model.Transaction{}, fmt.Errorf("%w: type %q", ErrInvalidRecord, raw.Type)
	}

	date, err := raw.Date.Time()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	tx := model.Transaction{
		Description:           normalizeSpace(raw.Description),
		AdditionalDescription: normalizeSpace(raw.AdditionalDescription),
		Kind:                  kind,
		Amount:                raw.Amount,
		Balance:               raw.Balance,
		Date:                  date,
		Metadata:              model.Metadata{},
	}
	c.rules.Apply(&tx)
	return tx, nil
}

// Time converts the split date into UTC midnight.
func (d RawDate) Time() (time.Time, error) {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 || d.Year < 1 {
		return time.Time{}, fmt.Errorf("date out of range: %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	if t.Day() != d.Day {
		return time.Time{}, fmt.Errorf("no such date: %04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
	return t, nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
