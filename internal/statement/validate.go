package statement

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/itaulink/itaulink/internal/model"
)

// ValidationError describes a single invariant violation on an aggregated account.
type ValidationError struct {
	Invariant   int
	AccountID   string
	Index       int // position in Transactions, -1 for account-level violations
	Description string
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.AccountID, e.Description)
	}
	return fmt.Sprintf("invariant %d [%s#%d]: %s", e.Invariant, e.AccountID, e.Index, e.Description)
}

// Validate checks the invariants an aggregated account must satisfy.
func Validate(acct model.Account) []ValidationError {
	var errs []ValidationError

	// Invariant 1: transactions have been bound.
	if !acct.Fetched() {
		return []ValidationError{{
			Invariant:   1,
			AccountID:   acct.ID,
			Index:       -1,
			Description: "transactions not fetched",
		}}
	}

	hundred := decimal.NewFromInt(100)
	for i, tx := range acct.Transactions {
		// Invariant 2: ordered ascending by date.
		if i > 0 && tx.Date.Before(acct.Transactions[i-1].Date) {
			errs = append(errs, ValidationError{
				Invariant:   2,
				AccountID:   acct.ID,
				Index:       i,
				Description: fmt.Sprintf("date %s before previous %s", tx.Date.Format("2006-01-02"), acct.Transactions[i-1].Date.Format("2006-01-02")),
			})
		}

		// Invariant 3: kind is debit or credit.
		if tx.Kind != model.KindDebit && tx.Kind != model.KindCredit {
			errs = append(errs, ValidationError{
				Invariant:   3,
				AccountID:   acct.ID,
				Index:       i,
				Description: fmt.Sprintf("unknown kind %q", tx.Kind),
			})
		}

		// Invariant 4: calendar date only.
		if h, m, s := tx.Date.Clock(); h != 0 || m != 0 || s != 0 || tx.Date.Nanosecond() != 0 {
			errs = append(errs, ValidationError{
				Invariant:   4,
				AccountID:   acct.ID,
				Index:       i,
				Description: fmt.Sprintf("date %s has a time component", tx.Date.Format("2006-01-02T15:04:05")),
			})
		}

		// Invariant 5: amount and balance carry no more than 2 decimal places.
		for _, f := range []struct {
			name  string
			value decimal.Decimal
		}{{"amount", tx.Amount}, {"balance", tx.Balance}} {
			if scaled := f.value.Mul(hundred); !scaled.Equal(scaled.Floor()) {
				errs = append(errs, ValidationError{
					Invariant:   5,
					AccountID:   acct.ID,
					Index:       i,
					Description: fmt.Sprintf("%s %s has more than 2 decimal places", f.name, f.value),
				})
			}
		}
	}

	return errs
}
