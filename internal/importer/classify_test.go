package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itaulink/itaulink/internal/model"
)

func raw(tipo, desc string) RawTransaction {
	return RawTransaction{
		Type:        tipo,
		Description: desc,
		Amount:      decimal.RequireFromString("10"),
		Balance:     decimal.RequireFromString("100"),
		Date:        RawDate{Year: 2023, Month: 5, Day: 3},
	}
}

func TestClassify_DebitCardPurchase(t *testing.T) {
	r := RawTransaction{
		Type:        "D",
		Description: "COMPRA   ALMACEN",
		Amount:      decimal.RequireFromString("120.50"),
		Balance:     decimal.RequireFromString("1000"),
		Date:        RawDate{Year: 2023, Month: 5, Day: 3},
	}

	tx, err := DefaultClassifier().Classify(r)
	require.NoError(t, err)

	assert.Equal(t, model.KindDebit, tx.Kind)
	assert.Equal(t, "COMPRA ALMACEN", tx.Description)
	assert.Equal(t, model.Metadata{model.TagDebitCardPurchase: true}, tx.Metadata)
	assert.Equal(t, "120.50", tx.Amount.StringFixed(2))
	assert.Equal(t, "1000.00", tx.Balance.StringFixed(2))
	assert.Equal(t, time.Date(2023, time.May, 3, 0, 0, 0, 0, time.UTC), tx.Date)
}

func TestClassify_TransferFrom(t *testing.T) {
	r := raw("C", "TRASPASO DE 123-456789-0")
	r.Amount = decimal.RequireFromString("500")
	r.Balance = decimal.RequireFromString("1500")
	r.Date = RawDate{Year: 2023, Month: 5, Day: 4}

	tx, err := DefaultClassifier().Classify(r)
	require.NoError(t, err)

	assert.Equal(t, model.KindCredit, tx.Kind)
	assert.Equal(t, model.Metadata{
		model.TagBankTransfer:     true,
		model.TagBankTransferFrom: "1234567890",
	}, tx.Metadata)
}

func TestClassify_TransferTo(t *testing.T) {
	tx, err := DefaultClassifier().Classify(raw("D", "TRASPASO A 3.001.001 / CTA 77"))
	require.NoError(t, err)

	assert.Equal(t, true, tx.Metadata[model.TagBankTransfer])
	assert.Equal(t, "300100177", tx.Metadata.Text(model.TagBankTransferTo))
	assert.NotContains(t, tx.Metadata, model.TagBankTransferFrom)
}

func TestClassify_TransferDigitsKeepOrder(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"TRASPASO DE 9a8b7c", "987"},
		{"TRASPASO DE", ""},
		{"TRASPASO DE   0-0-1", "001"},
	}
	for _, tt := range tests {
		tx, err := DefaultClassifier().Classify(raw("C", tt.desc))
		require.NoError(t, err)
		assert.Equal(t, tt.want, tx.Metadata.Text(model.TagBankTransferFrom), "description %q", tt.desc)
	}
}

func TestClassify_ATMRewritesDescription(t *testing.T) {
	tests := []string{
		"RETIRO CAJERO 18 DE JULIO",
		"RETIRO   BANRED COMISION 12",
		"RETIRO X",
	}
	for _, desc := range tests {
		tx, err := DefaultClassifier().Classify(raw("D", desc))
		require.NoError(t, err)
		assert.Equal(t, ATMDescription, tx.Description, "description %q", desc)
		assert.True(t, tx.Metadata.Flag(model.TagATM))
	}
}

func TestClassify_OtherTags(t *testing.T) {
	tests := []struct {
		desc string
		tag  model.Tag
	}{
		{"DEBITO BANKING CARD MENSUAL", model.TagBankCosts},
		{"REDIVA 1921 DEVOLUCION", model.TagTaxReturn},
	}
	for _, tt := range tests {
		tx, err := DefaultClassifier().Classify(raw("D", tt.desc))
		require.NoError(t, err)
		assert.Equal(t, model.Metadata{tt.tag: true}, tx.Metadata, "description %q", tt.desc)
	}
}

func TestClassify_NoMatchingRule(t *testing.T) {
	tx, err := DefaultClassifier().Classify(raw("C", "SUELDO"))
	require.NoError(t, err)
	assert.NotNil(t, tx.Metadata)
	assert.Empty(t, tx.Metadata)

	// Prefix must match at the start, after whitespace normalization.
	tx, err = DefaultClassifier().Classify(raw("D", "  COMPRA\tKIOSCO"))
	require.NoError(t, err)
	assert.Equal(t, "COMPRA KIOSCO", tx.Description)
	assert.True(t, tx.Metadata.Flag(model.TagDebitCardPurchase))

	tx, err = DefaultClassifier().Classify(raw("D", "COMPRAS VARIAS"))
	require.NoError(t, err)
	assert.Empty(t, tx.Metadata)
}

func TestClassify_InvalidType(t *testing.T) {
	for _, code := range []string{"", "X", "d", "c", "DC"} {
		_, err := DefaultClassifier().Classify(raw(code, "COMPRA ALMACEN"))
		require.Error(t, err, "type %q", code)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	}
}

func TestClassify_InvalidDate(t *testing.T) {
	r := raw("D", "COMPRA ALMACEN")
	r.Date = RawDate{Year: 2023, Month: 2, Day: 30}
	_, err := DefaultClassifier().Classify(r)
	assert.ErrorIs(t, err, ErrInvalidRecord)

	r.Date = RawDate{}
	_, err = DefaultClassifier().Classify(r)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestClassify_AdditionalDescriptionNormalized(t *testing.T) {
	r := raw("D", "COMPRA X")
	r.AdditionalDescription = "  SUC \n  CENTRO  "
	tx, err := DefaultClassifier().Classify(r)
	require.NoError(t, err)
	assert.Equal(t, "SUC CENTRO", tx.AdditionalDescription)
}

func TestRules_DuplicatePanics(t *testing.T) {
	r := NewRules()
	r.Register(Rule{Name: "atm", Prefix: "RETIRO "})
	assert.Panics(t, func() { r.Register(Rule{Name: "ATM", Prefix: "X"}) })
}

func TestDefaultRules_Order(t *testing.T) {
	assert.Equal(t, []string{
		"debit-card-purchase", "atm", "bank-costs", "bank-transfer-from", "bank-transfer-to", "tax-return",
	}, DefaultRules().Names())
}

func TestCustomRules(t *testing.T) {
	rules := NewRules()
	rules.Register(Rule{Name: "salary", Prefix: "SUELDO", Apply: func(tx *model.Transaction, _ string) {
		tx.Metadata["salary"] = true
	}})

	tx, err := NewClassifier(rules).Classify(raw("C", "SUELDO OCTUBRE"))
	require.NoError(t, err)
	assert.True(t, tx.Metadata.Flag("salary"))
}
