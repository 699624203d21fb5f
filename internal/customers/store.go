// Copyright (C) 2020  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package customers

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/preiswacht/internal/log"
	"github.com/lukasdietrich/preiswacht/internal/mails"
	"github.com/lukasdietrich/preiswacht/internal/models"
	"github.com/lukasdietrich/preiswacht/internal/storage"
)

const documentVersion = "2.0.0"

func init() {
	viper.SetDefault("storage.customers.filename", "data/customers.json")
}

// document is the on-disk layout of the customer database.
type document struct {
	Version           string            `json:"version"`
	Customers         []models.Customer `json:"customers"`
	VerificationRules *models.RuleFlags `json:"verification_rules,omitempty"`
}

// Store is the single writer of the customer database document.
type Store interface {
	// Load reads the full customer collection from the backing document.
	// It can be called repeatedly to pick up external changes.
	Load(ctx context.Context) error
	// FindByDomain returns the first active record whose email domain matches
	// the domain of email case-insensitively. It fails with ErrInvalidInput
	// for emails without an "@" sign and with ErrNotFound when no active
	// record owns the domain.
	FindByDomain(email string) (*models.Customer, error)
	// FindByID returns the record with the exact id or ErrNotFound.
	FindByID(id string) (*models.Customer, error)
	// IsAuthorized tests case-insensitive membership of email in the record's
	// authorized address list.
	IsAuthorized(email string, customer *models.Customer) bool
	// ListActive returns all records with active=true in stored order.
	ListActive() []models.Customer
	// RuleFlags returns the verification feature flags of the document.
	RuleFlags() models.RuleFlags
	// Add assigns a new id, sets timestamps and a default unverified status
	// block, persists and returns the id.
	Add(ctx context.Context, customer *models.Customer) (string, error)
	// Update replaces the stored fields for id and persists.
	Update(ctx context.Context, id string, customer *models.Customer) error
	// SoftDelete flips active=false, sets the deletion timestamp and persists.
	// The record is never physically removed.
	SoftDelete(ctx context.Context, id string) error
}

type store struct {
	fs       afero.Fs
	filename string

	mu  sync.Mutex
	doc *document
}

// NewStore creates a customer store using configuration from viper.
//
// `storage.customers.filename` is the filename of the database document.
func NewStore(fs afero.Fs) Store {
	return &store{
		fs:       fs,
		filename: viper.GetString("storage.customers.filename"),
	}
}

func (s *store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

func (s *store) load(ctx context.Context) error {
	content, err := afero.ReadFile(s.fs, s.filename)
	if err != nil {
		return &StorageError{Op: "load", Filename: s.filename, Err: err}
	}

	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		return &StorageError{Op: "load", Filename: s.filename, Err: err}
	}

	s.doc = &doc

	log.DebugContext(ctx).
		Str("filename", s.filename).
		Int("customers", len(doc.Customers)).
		Msg("customer database loaded")

	return nil
}

func (s *store) save(ctx context.Context) error {
	s.doc.Version = documentVersion

	content, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", Filename: s.filename, Err: err}
	}

	if err := storage.WriteFileAtomic(s.fs, s.filename, content); err != nil {
		return &StorageError{Op: "save", Filename: s.filename, Err: err}
	}

	log.DebugContext(ctx).
		Str("filename", s.filename).
		Int("customers", len(s.doc.Customers)).
		Msg("customer database saved")

	return nil
}

// ensureLoaded loads the document on first use, so read-only callers do not
// have to call Load explicitly.
func (s *store) ensureLoaded(ctx context.Context) error {
	if s.doc == nil {
		return s.load(ctx)
	}

	return nil
}

func (s *store) FindByDomain(email string) (*models.Customer, error) {
	addr, err := mails.ParseAddress(email)
	if err != nil {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(context.Background()); err != nil {
		return nil, err
	}

	domain := addr.NormalizedDomain()

	for i := range s.doc.Customers {
		customer := &s.doc.Customers[i]

		if customer.Active && mails.NormalizeDomain(customer.EmailDomain) == domain {
			return copyCustomer(customer), nil
		}
	}

	return nil, ErrNotFound
}

func (s *store) FindByID(id string) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(context.Background()); err != nil {
		return nil, err
	}

	customer := s.findByID(id)
	if customer == nil {
		return nil, ErrNotFound
	}

	return copyCustomer(customer), nil
}

func (s *store) findByID(id string) *models.Customer {
	for i := range s.doc.Customers {
		if s.doc.Customers[i].ID == id {
			return &s.doc.Customers[i]
		}
	}

	return nil
}

func (s *store) IsAuthorized(email string, customer *models.Customer) bool {
	for _, authorized := range customer.EmailAddresses {
		if strings.EqualFold(authorized, email) {
			return true
		}
	}

	return false
}

func (s *store) ListActive() []models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(context.Background()); err != nil {
		return nil
	}

	var active []models.Customer

	for i := range s.doc.Customers {
		if s.doc.Customers[i].Active {
			active = append(active, *copyCustomer(&s.doc.Customers[i]))
		}
	}

	return active
}

func (s *store) RuleFlags() models.RuleFlags {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(context.Background()); err != nil || s.doc.VerificationRules == nil {
		return models.DefaultRuleFlags()
	}

	return *s.doc.VerificationRules
}

func (s *store) Add(ctx context.Context, customer *models.Customer) (string, error) {
	if err := validate(customer); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return "", err
	}

	now := time.Now()

	customer.ID = newCustomerID()
	customer.Active = true
	customer.CreatedAt = now
	customer.UpdatedAt = now
	customer.DeletedAt = nil
	customer.VerificationStatus = models.VerificationStatus{}

	if customer.EmailDomain == "" {
		addr, _ := mails.ParseAddress(customer.EmailAddresses[0])
		customer.EmailDomain = addr.NormalizedDomain()
	}

	s.doc.Customers = append(s.doc.Customers, *customer)

	if err := s.save(ctx); err != nil {
		return "", err
	}

	log.InfoContext(ctx).
		Str("customer", customer.ID).
		Str("company", customer.CompanyName).
		Msg("customer added")

	return customer.ID, nil
}

func (s *store) Update(ctx context.Context, id string, customer *models.Customer) error {
	if err := validate(customer); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	stored := s.findByID(id)
	if stored == nil {
		return ErrNotFound
	}

	// id and creation time are immutable
	customer.ID = stored.ID
	customer.CreatedAt = stored.CreatedAt
	customer.UpdatedAt = time.Now()

	*stored = *customer

	if err := s.save(ctx); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Str("customer", id).
		Msg("customer updated")

	return nil
}

func (s *store) SoftDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	stored := s.findByID(id)
	if stored == nil {
		return ErrNotFound
	}

	now := time.Now()

	stored.Active = false
	stored.DeletedAt = &now
	stored.UpdatedAt = now

	if err := s.save(ctx); err != nil {
		return err
	}

	log.InfoContext(ctx).
		Str("customer", id).
		Msg("customer soft-deleted")

	return nil
}

func validate(customer *models.Customer) error {
	if customer.CompanyName == "" || len(customer.EmailAddresses) == 0 {
		return ErrInvalidInput
	}

	for _, email := range customer.EmailAddresses {
		if _, err := mails.ParseAddress(email); err != nil {
			return ErrInvalidInput
		}
	}

	return nil
}

// newCustomerID generates an 8 character uppercase id.
func newCustomerID() string {
	return strings.ToUpper(uuid.New().String()[:8])
}

func copyCustomer(customer *models.Customer) *models.Customer {
	clone := *customer
	clone.RecipientNames = append([]string(nil), customer.RecipientNames...)
	clone.EmailAddresses = append([]string(nil), customer.EmailAddresses...)

	return &clone
}
