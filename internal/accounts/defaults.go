package accounts

import "github.com/itaulink/itaulink/internal/model"

// Category maps a portal account-listing key to an AccountType.
type Category struct {
	Key  string
	Type model.AccountType
}

// Categories lists the known portal keys in the order accounts are emitted.
var Categories = []Category{
	{Key: "caja_de_ahorro", Type: model.AccountTypeSavings},
	{Key: "cuenta_corriente", Type: model.AccountTypeTransactional},
	{Key: "cuenta_recaudadora", Type: model.AccountTypeCollections},
	{Key: "cuenta_de_ahorro_junior", Type: model.AccountTypeJuniorSavings},
}

// CurrencyCode maps a portal currency code to its Currency.
type CurrencyCode struct {
	Code     string
	Currency model.Currency
}

// Currencies is the fixed currency table. Codes outside it are rejected.
var Currencies = []CurrencyCode{
	{Code: "URGP", Currency: model.Currency{ISO: "UYU", Display: "$"}},
	{Code: "US.D", Currency: model.Currency{ISO: "USD", Display: "U$S"}},
}

// LookupCurrency resolves a portal currency code.
func LookupCurrency(code string) (model.Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c.Currency, true
		}
	}
	return model.Currency{}, false
}
