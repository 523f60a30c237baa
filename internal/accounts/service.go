package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/itaulink/itaulink/internal/model"
)

// SummaryFile is the account summary written alongside statement exports.
const SummaryFile = "accounts.csv"

// Service provides in-memory lookup over the accounts found at login.
type Service struct {
	accounts []model.Account
	byID     map[string]int
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byID := make(map[string]int, len(accounts))
	for i, a := range accounts {
		byID[a.ID] = i
	}
	return &Service{accounts: accounts, byID: byID}
}

// All returns all accounts in catalog order.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// ByCurrency returns all accounts held in the given ISO currency.
func (s *Service) ByCurrency(iso string) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Currency.ISO == iso {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the account summary to <dir>/accounts.csv.
func (s *Service) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	path := filepath.Join(dir, SummaryFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating account summary: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing account summary: %w", err)
	}
	return nil
}
