package importer

import (
	"strings"

	"github.com/itaulink/itaulink/internal/model"
)

// ATMDescription replaces the free-text detail of every ATM withdrawal.
const ATMDescription = "RETIRO BANRED"

// Rule tags transactions whose description starts with Prefix.
type Rule struct {
	Name   string
	Prefix string
	Apply  func(tx *model.Transaction, description string)
}

// Rules is an ordered set of uniquely named rules.
type Rules struct {
	rules []Rule
	names map[string]bool
}

// NewRules creates an empty rule set.
func NewRules() *Rules {
	return &Rules{names: make(map[string]bool)}
}

// Register appends a rule. Panics on a duplicate name.
func (r *Rules) Register(rule Rule) {
	key := strings.ToLower(rule.Name)
	if r.names[key] {
		panic("duplicate rule: " + key)
	}
	r.names[key] = true
	r.rules = append(r.rules, rule)
}

// Names returns rule names in evaluation order.
func (r *Rules) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Apply runs every matching rule. Each rule sees the description as it was
// before any rule rewrote it.
func (r *Rules) Apply(tx *model.Transaction) {
	description := tx.Description
	for _, rule := range r.rules {
		if strings.HasPrefix(description, rule.Prefix) {
			rule.Apply(tx, description)
		}
	}
}

func flag(tag model.Tag) func(*model.Transaction, string) {
	return func(tx *model.Transaction, _ string) {
		tx.Metadata[tag] = true
	}
}

func transfer(counterparty model.Tag) func(*model.Transaction, string) {
	return func(tx *model.Transaction, description string) {
		tx.Metadata[model.TagBankTransfer] = true
		tx.Metadata[counterparty] = onlyDigits(description)
	}
}

// DefaultRules returns the portal's description heuristics.
func DefaultRules() *Rules {
	r := NewRules()
	r.Register(Rule{Name: "debit-card-purchase", Prefix: "COMPRA ", Apply: flag(model.TagDebitCardPurchase)})
	r.Register(Rule{Name: "atm", Prefix: "RETIRO ", Apply: func(tx *model.Transaction, _ string) {
		tx.Metadata[model.TagATM] = true
		tx.Description = ATMDescription
	}})
	r.Register(Rule{Name: "bank-costs", Prefix: "DEBITO BANKING CARD", Apply: flag(model.TagBankCosts)})
	r.Register(Rule{Name: "bank-transfer-from", Prefix: "TRASPASO DE", Apply: transfer(model.TagBankTransferFrom)})
	r.Register(Rule{Name: "bank-transfer-to", Prefix: "TRASPASO A", Apply: transfer(model.TagBankTransferTo)})
	r.Register(Rule{Name: "tax-return", Prefix: "REDIVA 1921", Apply: flag(model.TagTaxReturn)})
	return r
}
