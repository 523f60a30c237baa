package accounts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/itaulink/itaulink/internal/model"
)

// ErrUnknownCurrency is returned when an account uses a code outside Currencies.
var ErrUnknownCurrency = errors.New("unknown currency")

type listing struct {
	Cuentas map[string][]json.RawMessage `json:"cuentas"`
}

type rawAccount struct {
	ID            portalString    `json:"idCuenta"`
	Holder        string          `json:"nombreTitular"`
	Hash          string          `json:"hash"`
	Balance       decimal.Decimal `json:"saldo"`
	AccountTypeID portalString    `json:"tipoCuenta"`
	Currency      string          `json:"moneda"`
}

// portalString accepts a JSON string or number; the portal is not consistent.
type portalString string

func (s *portalString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = portalString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = portalString(n.String())
	return nil
}

// Parse converts the account listing embedded in the portal home page into
// Accounts, grouped by Categories order and in payload order within a group.
// Unknown category keys are skipped.
func Parse(raw json.RawMessage) ([]model.Account, error) {
	var l listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decoding account listing: %w", err)
	}
	if l.Cuentas == nil {
		return nil, errors.New("decoding account listing: missing \"cuentas\"")
	}

	var accounts []model.Account
	for _, cat := range Categories {
		for i, item := range l.Cuentas[cat.Key] {
			acct, err := parseAccount(cat.Type, item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", cat.Key, i, err)
			}
			accounts = append(accounts, acct)
		}
	}
	return accounts, nil
}

func parseAccount(accountType model.AccountType, item json.RawMessage) (model.Account, error) {
	var ra rawAccount
	if err := json.Unmarshal(item, &ra); err != nil {
		return model.Account{}, fmt.Errorf("decoding account: %w", err)
	}

	currency, ok := LookupCurrency(ra.Currency)
	if !ok {
		return model.Account{}, fmt.Errorf("account %s: %w %q", ra.ID, ErrUnknownCurrency, ra.Currency)
	}

	return model.Account{
		ID:            string(ra.ID),
		Name:          strings.TrimSpace(ra.Holder),
		Type:          accountType,
		Currency:      currency,
		RawCurrency:   ra.Currency,
		Hash:          ra.Hash,
		Balance:       ra.Balance,
		AccountTypeID: string(ra.AccountTypeID),
		Original:      append(json.RawMessage(nil), item...),
	}, nil
}
