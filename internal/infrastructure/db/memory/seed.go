package memory

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/libraryhub/circulation/internal/core/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the fixture format accepted by Store.Load.
type Seed struct {
	Books        []domain.Book        `yaml:"books"`
	Users        []domain.User        `yaml:"users"`
	Transactions []domain.Transaction `yaml:"transactions"`
}

// LoadSeed reads the fixture at path, or the embedded demo data when path is empty.
func LoadSeed(path string) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed: %w", err)
		}
		data = b
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML fixture and checks that it is self-consistent.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &s, nil
}

func (s *Seed) validate() error {
	books := make(map[string]bool, len(s.Books))
	for i := range s.Books {
		b := &s.Books[i]
		if b.ID == "" {
			return fmt.Errorf("book %d: missing id", i)
		}
		if books[b.ID] {
			return fmt.Errorf("book %s: duplicate id", b.ID)
		}
		if err := b.Validate(); err != nil {
			return err
		}
		books[b.ID] = true
	}

	users := make(map[string]bool, len(s.Users))
	for _, u := range s.Users {
		if u.ID == "" {
			return fmt.Errorf("user %q: missing id", u.Name)
		}
		if !domain.ValidRole(u.Role) {
			return fmt.Errorf("user %s: unknown role %q", u.ID, u.Role)
		}
		users[u.ID] = true
	}

	txs := make(map[string]bool, len(s.Transactions))
	for i := range s.Transactions {
		t := &s.Transactions[i]
		if t.ID == "" {
			return fmt.Errorf("transaction %d: missing id", i)
		}
		if txs[t.ID] {
			return fmt.Errorf("transaction %s: duplicate id", t.ID)
		}
		txs[t.ID] = true
		if err := t.Validate(); err != nil {
			return err
		}
		if !books[t.BookID] {
			return fmt.Errorf("transaction %s: unknown book %s", t.ID, t.BookID)
		}
		if !users[t.UserID] {
			return fmt.Errorf("transaction %s: unknown user %s", t.ID, t.UserID)
		}
	}
	return nil
}
