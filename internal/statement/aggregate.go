package statement

import (
	"sort"

	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/window"
)

// WindowResult is the outcome of fetching one month for one account.
// Err is set when the month failed; Transactions is then empty.
type WindowResult struct {
	Window       window.Window
	Transactions []model.Transaction
	Err          error
}

// Failed reports whether the month's fetch failed.
func (r WindowResult) Failed() bool {
	return r.Err != nil
}

// Result is an aggregated account together with its per-month outcomes.
type Result struct {
	Account model.Account
	Windows []WindowResult
}

// Failures returns the windows that failed.
func (r Result) Failures() []WindowResult {
	var failed []WindowResult
	for _, w := range r.Windows {
		if w.Failed() {
			failed = append(failed, w)
		}
	}
	return failed
}

// Aggregate concatenates every window's transactions, sorts them ascending
// by date, and binds them onto a copy of acct. Window order is irrelevant.
// The bound slice is never nil, so an account with no movements still
// reports as fetched.
func Aggregate(acct model.Account, results []WindowResult) model.Account {
	n := 0
	for _, r := range results {
		n += len(r.Transactions)
	}

	txns := make([]model.Transaction, 0, n)
	for _, r := range results {
		txns = append(txns, r.Transactions...)
	}
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Date.Before(txns[j].Date)
	})

	acct.Transactions = txns
	return acct
}
