package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/itaulink/itaulink/internal/accounts"
	"github.com/itaulink/itaulink/internal/model"
	"github.com/itaulink/itaulink/internal/statement"
)

var (
	headerColor = color.New(color.FgGreen, color.Bold)
	warnColor   = color.New(color.FgYellow)
)

const summaryRow = "%-12s %-16s %-4s %16s %8s %8s\n"

// printSummary writes one line per fetched account, a balance total per
// currency, and a warning for every account with months that could not be
// downloaded.
func printSummary(w io.Writer, results []statement.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No accounts found.")
		return
	}

	fetched := make([]model.Account, len(results))
	failures := make(map[string]int, len(results))
	headerColor.Fprintf(w, summaryRow, "ACCOUNT", "TYPE", "CUR", "BALANCE", "TXNS", "FAILED")
	for i, r := range results {
		a := r.Account
		fetched[i] = a
		failures[a.ID] = len(r.Failures())
		fmt.Fprintf(w, summaryRow,
			a.ID, a.Type, a.Currency.ISO,
			a.Currency.Display+" "+a.Balance.StringFixed(2),
			fmt.Sprint(len(a.Transactions)), fmt.Sprint(failures[a.ID]))
	}

	svc := accounts.NewService(fetched)
	for _, cur := range currencies(fetched) {
		total, txns, failed := decimal.Zero, 0, 0
		for _, a := range svc.ByCurrency(cur.ISO) {
			total = total.Add(a.Balance)
			txns += len(a.Transactions)
			failed += failures[a.ID]
		}
		headerColor.Fprintf(w, summaryRow,
			"TOTAL", "", cur.ISO, cur.Display+" "+total.StringFixed(2),
			fmt.Sprint(txns), fmt.Sprint(failed))
	}

	for _, r := range results {
		failed := r.Failures()
		if len(failed) == 0 {
			continue
		}
		warnColor.Fprintf(w, "%s: %d month(s) could not be fetched:", r.Account.ID, len(failed))
		for _, f := range failed {
			warnColor.Fprintf(w, " %s", f.Window)
		}
		fmt.Fprintln(w)
	}
}

// currencies returns the distinct currencies of accts in first-seen order.
func currencies(accts []model.Account) []model.Currency {
	var out []model.Currency
	seen := make(map[string]bool)
	for _, a := range accts {
		if !seen[a.Currency.ISO] {
			seen[a.Currency.ISO] = true
			out = append(out, a.Currency)
		}
	}
	return out
}
