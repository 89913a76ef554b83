// Package fixtures loads seed records from YAML documents.
//
// A fixture file lists people, sponsors and transactions:
//
//	people:
//	  - id: p-1
//	    name: Ada
//	    sponsored: true
//	    createdAt: 2024-01-15
//	transactions:
//	  - amount: 50
//	    status: COMPLETED
//	    date: 2024-01-15T10:30:00Z
//
// Timestamps accept either a calendar day or an RFC 3339 instant. Records
// without an id get a generated one.
package fixtures

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"reportd/pkg/contracts/domain"
)

// Set is the top-level layout of a fixture file
type Set struct {
	People       []Person      `yaml:"people"`
	Sponsors     []Sponsor     `yaml:"sponsors"`
	Transactions []Transaction `yaml:"transactions"`
}

// Person is a person as written in a fixture file
type Person struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Age       *int   `yaml:"age"`
	Location  string `yaml:"location"`
	Sponsored *bool  `yaml:"sponsored"`
	Story     string `yaml:"story"`
	Needs     string `yaml:"needs"`
	CreatedAt string `yaml:"createdAt"`
}

// Sponsor is a sponsor as written in a fixture file
type Sponsor struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Address   string `yaml:"address"`
	Status    string `yaml:"status"`
	CreatedAt string `yaml:"createdAt"`
}

// Transaction is a transaction as written in a fixture file
type Transaction struct {
	ID                string   `yaml:"id"`
	Amount            *float64 `yaml:"amount"`
	CounterpartyName  string   `yaml:"counterpartyName"`
	CounterpartyEmail string   `yaml:"counterpartyEmail"`
	Status            string   `yaml:"status"`
	Method            string   `yaml:"method"`
	Date              string   `yaml:"date"`
	CreatedAt         string   `yaml:"createdAt"`
}

// Load reads and parses a fixture file
func Load(path string) ([]domain.RowRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return records, nil
}

// Parse decodes a fixture document into row records. People come first,
// then sponsors, then transactions, each in file order.
func Parse(data []byte) ([]domain.RowRecord, error) {
	var set Set
	if err := yaml.UnmarshalStrict(data, &set); err != nil {
		return nil, err
	}
	return set.Records()
}

// Records converts the set into row records
func (s Set) Records() ([]domain.RowRecord, error) {
	records := make([]domain.RowRecord, 0, len(s.People)+len(s.Sponsors)+len(s.Transactions))

	for i, p := range s.People {
		created, err := parseTimestamp(p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("people[%d].createdAt: %w", i, err)
		}
		records = append(records, domain.RowRecord{
			Kind:      domain.EntityKindPerson,
			ID:        idOrNew(p.ID),
			Name:      p.Name,
			Age:       p.Age,
			Location:  p.Location,
			Sponsored: p.Sponsored,
			Story:     p.Story,
			Needs:     p.Needs,
			CreatedAt: created,
		})
	}

	for i, sp := range s.Sponsors {
		created, err := parseTimestamp(sp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("sponsors[%d].createdAt: %w", i, err)
		}
		records = append(records, domain.RowRecord{
			Kind:      domain.EntityKindSponsor,
			ID:        idOrNew(sp.ID),
			Name:      sp.Name,
			Email:     sp.Email,
			Phone:     sp.Phone,
			Address:   sp.Address,
			Status:    sp.Status,
			CreatedAt: created,
		})
	}

	for i, tx := range s.Transactions {
		date, err := parseTimestamp(tx.Date)
		if err != nil {
			return nil, fmt.Errorf("transactions[%d].date: %w", i, err)
		}
		created, err := parseTimestamp(tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("transactions[%d].createdAt: %w", i, err)
		}
		if created.IsZero() {
			created = date
		}
		records = append(records, domain.RowRecord{
			Kind:              domain.EntityKindTransaction,
			ID:                idOrNew(tx.ID),
			Amount:            tx.Amount,
			CounterpartyName:  tx.CounterpartyName,
			CounterpartyEmail: tx.CounterpartyEmail,
			Status:            tx.Status,
			Method:            tx.Method,
			Date:              date,
			CreatedAt:         created,
		})
	}

	return records, nil
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

// parseTimestamp accepts "2006-01-02" or RFC 3339. Blank input is the zero time.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
	}
	return t, nil
}
