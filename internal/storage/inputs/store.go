// Package inputs persists the user-entered portfolio inputs (sub-account
// holdings, cash balances and the monthly contribution) between runs.
package inputs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/busandev/firecro/internal/domain"
)

const DefaultPath = "./data/inputs.json"

// Store is a JSON file store for portfolio inputs.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates an inputs store at the given path, making the parent
// directory when needed.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create inputs dir")
	}

	return &Store{path: path}, nil
}

// Load reads the inputs from disk. A missing file yields the default
// empty account structure so a fresh install works without setup.
func (s *Store) Load() (domain.Inputs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return domain.Inputs{}, errors.Wrap(err, "read inputs")
	}

	if len(payload) == 0 {
		return Defaults(), nil
	}

	var in domain.Inputs
	if err := json.Unmarshal(payload, &in); err != nil {
		return domain.Inputs{}, errors.Wrap(err, "decode inputs")
	}

	return in, nil
}

// Save writes the inputs to disk atomically via a temp file.
func (s *Store) Save(in domain.Inputs) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode inputs")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write inputs temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist inputs")
	}

	return nil
}

// Defaults returns the empty three-account structure.
func Defaults() domain.Inputs {
	return domain.Inputs{
		Accounts: []domain.SubAccount{
			{Name: domain.AccountVault, CashLocal: decimal.Zero, CashForeign: decimal.Zero},
			{Name: domain.AccountSniper, CashLocal: decimal.Zero, CashForeign: decimal.Zero},
			{Name: domain.AccountBunker, CashLocal: decimal.Zero, CashForeign: decimal.Zero},
		},
		MonthlyContribution: decimal.Zero,
	}
}
