// Package export writes fetched statements as tab-delimited files, one per
// account.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itaulink/itaulink/internal/model"
)

// Header is the column layout of an exported statement.
var Header = []string{
	"account", "currency", "date", "description", "additional_description", "type",
	"debit", "credit", "balance",
	"debit card purchase", "atm", "bank transfer", "tax return",
}

const (
	numFields  = 13
	dateFormat = "2006-01-02"
	colAcctID  = 0
	colCurr    = 1
	colDate    = 2
	colDesc    = 3
	colAddDesc = 4
	colKind    = 5
	colDebit   = 6
	colCredit  = 7
	colBalance = 8
	colCard    = 9
	colATM     = 10
	colXfer    = 11
	colTax     = 12
)

// FileName returns the export file name for acct, e.g. "2004005-UYU.csv".
func FileName(acct model.Account) string {
	return fmt.Sprintf("%s-%s.csv", acct.ID, acct.Currency.ISO)
}

// WriteAccount writes acct's transactions (including header).
func WriteAccount(w io.Writer, acct model.Account) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range acct.Transactions {
		if err := cw.Write(MarshalTransaction(acct, tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts one transaction of acct to a row. Only the
// column matching the transaction's kind carries the amount; zero amounts
// are left blank.
func MarshalTransaction(acct model.Account, tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colAcctID] = acct.ID
	row[colCurr] = acct.Currency.ISO
	row[colDate] = tx.Date.Format(dateFormat)
	row[colDesc] = tx.Description
	row[colAddDesc] = tx.AdditionalDescription
	row[colKind] = string(tx.Kind)

	if debit := tx.Debit(); !debit.IsZero() {
		row[colDebit] = debit.StringFixed(2)
	}
	if credit := tx.Credit(); !credit.IsZero() {
		row[colCredit] = credit.StringFixed(2)
	}
	row[colBalance] = tx.Balance.StringFixed(2)

	row[colCard] = boolField(tx.Metadata.Flag(model.TagDebitCardPurchase))
	row[colATM] = boolField(tx.Metadata.Flag(model.TagATM))
	row[colXfer] = boolField(tx.Metadata.Flag(model.TagBankTransfer))
	row[colTax] = boolField(tx.Metadata.Flag(model.TagTaxReturn))
	return row
}

func boolField(b bool) string {
	if b {
		return "True"
	}
	return ""
}

// Save writes acct to dir/FileName(acct) and returns the path written.
func Save(dir string, acct model.Account) (string, error) {
	path := filepath.Join(dir, FileName(acct))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteAccount(f, acct); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

// SaveAll writes every fetched account in accts into dir, creating dir if
// needed. Accounts that were never fetched are skipped.
func SaveAll(dir string, accts []model.Account) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	var paths []string
	for _, acct := range accts {
		if !acct.Fetched() {
			continue
		}
		path, err := Save(dir, acct)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
