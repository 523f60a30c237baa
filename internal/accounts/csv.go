package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/itaulink/itaulink/internal/model"
)

const (
	numFields   = 7
	colID       = 0
	colType     = 1
	colCurrency = 2
	colDisplay  = 3
	colBalance  = 4
	colHolder   = 5
	colTxns     = 6
)

// SummaryHeader is the header row of accounts.csv.
var SummaryHeader = []string{"account", "type", "currency", "symbol", "balance", "holder", "transactions"}

// WriteAccounts writes a tab-delimited account summary.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	defer cw.Flush()

	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a summary row. The transactions
// column is blank until the account has been fetched.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colType] = string(acct.Type)
	row[colCurrency] = acct.Currency.ISO
	row[colDisplay] = acct.Currency.Display
	row[colBalance] = acct.Balance.StringFixed(2)
	row[colHolder] = acct.Name
	if acct.Fetched() {
		row[colTxns] = strconv.Itoa(len(acct.Transactions))
	}
	return row
}
