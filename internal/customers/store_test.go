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
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/preiswacht/internal/models"
)

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

type StoreTestSuite struct {
	suite.Suite

	fs    afero.Fs
	store Store
}

func (s *StoreTestSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.store = &store{
		fs:       s.fs,
		filename: "data/customers.json",
	}
}

func (s *StoreTestSuite) writeDocument(content string) {
	s.Require().NoError(
		afero.WriteFile(s.fs, "data/customers.json", []byte(content), 0600))
}

func (s *StoreTestSuite) writeFixture() {
	s.writeDocument(`{
		"version": "2.0.0",
		"customers": [
			{
				"id": "ACME0001",
				"company_name": "Acme Performance Oils",
				"recipient_names": ["Alice"],
				"email_addresses": ["a@acme.com", "b@acme.com"],
				"email_domain": "acme.com",
				"file_generation": {
					"file_path": "pricing",
					"filename_pattern": "{yymm}01_Pricing_{company}.pdf",
					"current_filename": "250901_Pricing_Acme Performance Oils.pdf"
				},
				"verification_status": {},
				"active": true
			},
			{
				"id": "GONE0001",
				"company_name": "Former Customer",
				"email_addresses": ["x@former.com"],
				"email_domain": "former.com",
				"file_generation": {},
				"verification_status": {},
				"active": false
			}
		]
	}`)
}

func (s *StoreTestSuite) TestLoadMissingFile() {
	err := s.store.Load(context.TODO())

	s.Assert().Error(err)
	s.Assert().True(IsErrStorage(err))
}

func (s *StoreTestSuite) TestLoadMalformedDocument() {
	s.writeDocument(`{"customers": [`)

	err := s.store.Load(context.TODO())

	s.Assert().Error(err)
	s.Assert().True(IsErrStorage(err))
}

func (s *StoreTestSuite) TestFindByDomain() {
	s.writeFixture()

	customer, err := s.store.FindByDomain("anyone@ACME.com")
	s.Require().NoError(err)
	s.Assert().Equal("ACME0001", customer.ID)
}

func (s *StoreTestSuite) TestFindByDomainInvalidEmail() {
	s.writeFixture()

	_, err := s.store.FindByDomain("not-an-email")
	s.Assert().True(IsErrInvalidInput(err))
}

func (s *StoreTestSuite) TestFindByDomainUnknown() {
	s.writeFixture()

	_, err := s.store.FindByDomain("a@other.com")
	s.Assert().True(IsErrNotFound(err))
}

func (s *StoreTestSuite) TestFindByDomainExcludesSoftDeleted() {
	s.writeFixture()

	_, err := s.store.FindByDomain("x@former.com")
	s.Assert().True(IsErrNotFound(err))
}

func (s *StoreTestSuite) TestFindByID() {
	s.writeFixture()

	customer, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)
	s.Assert().Equal("Acme Performance Oils", customer.CompanyName)

	_, err = s.store.FindByID("NOPE0000")
	s.Assert().True(IsErrNotFound(err))
}

func (s *StoreTestSuite) TestIsAuthorized() {
	s.writeFixture()

	customer, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)

	s.Assert().True(s.store.IsAuthorized("A@Acme.Com", customer))
	s.Assert().False(s.store.IsAuthorized("hacker@acme.com", customer))
}

func (s *StoreTestSuite) TestListActive() {
	s.writeFixture()

	active := s.store.ListActive()
	s.Require().Len(active, 1)
	s.Assert().Equal("ACME0001", active[0].ID)
}

func (s *StoreTestSuite) TestListActiveReturnsCopies() {
	s.writeFixture()

	active := s.store.ListActive()
	s.Require().Len(active, 1)
	s.Require().NotEmpty(active[0].EmailAddresses)

	// mutating the returned record must not leak into the store
	active[0].EmailAddresses[0] = "tampered@evil.example"
	active[0].RecipientNames = append(active[0].RecipientNames, "Mallory")

	customer, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)

	s.Assert().Equal("a@acme.com", customer.EmailAddresses[0])
	s.Assert().Equal([]string{"Alice"}, customer.RecipientNames)
}

func (s *StoreTestSuite) TestAdd() {
	s.writeFixture()

	id, err := s.store.Add(context.TODO(), &models.Customer{
		CompanyName:    "New Company",
		EmailAddresses: []string{"mail@new.example"},
	})

	s.Require().NoError(err)
	s.Assert().Len(id, 8)

	customer, err := s.store.FindByID(id)
	s.Require().NoError(err)
	s.Assert().True(customer.Active)
	s.Assert().Equal("new.example", customer.EmailDomain)
	s.Assert().False(customer.VerificationStatus.DomainVerified)
	s.Assert().False(customer.CreatedAt.IsZero())

	// the mutation must have been persisted
	s.assertPersistedCount(3)
}

func (s *StoreTestSuite) TestAddInvalid() {
	s.writeFixture()

	_, err := s.store.Add(context.TODO(), &models.Customer{
		CompanyName:    "No Mail Inc",
		EmailAddresses: []string{"missing-at-sign"},
	})

	s.Assert().True(IsErrInvalidInput(err))
}

func (s *StoreTestSuite) TestUpdate() {
	s.writeFixture()

	customer, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)

	customer.Notes = "now with notes"
	s.Require().NoError(s.store.Update(context.TODO(), "ACME0001", customer))

	updated, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)
	s.Assert().Equal("now with notes", updated.Notes)
	s.Assert().False(updated.UpdatedAt.IsZero())
}

func (s *StoreTestSuite) TestUpdateNotFound() {
	s.writeFixture()

	err := s.store.Update(context.TODO(), "NOPE0000", &models.Customer{
		CompanyName:    "Ghost",
		EmailAddresses: []string{"g@ghost.example"},
	})

	s.Assert().True(IsErrNotFound(err))
}

func (s *StoreTestSuite) TestSoftDelete() {
	s.writeFixture()

	s.Require().NoError(s.store.SoftDelete(context.TODO(), "ACME0001"))

	// still present, but inactive and excluded from matching
	customer, err := s.store.FindByID("ACME0001")
	s.Require().NoError(err)
	s.Assert().False(customer.Active)
	s.Assert().NotNil(customer.DeletedAt)

	_, err = s.store.FindByDomain("a@acme.com")
	s.Assert().True(IsErrNotFound(err))

	s.assertPersistedCount(2)
}

func (s *StoreTestSuite) TestSoftDeleteNotFound() {
	s.writeFixture()

	err := s.store.SoftDelete(context.TODO(), "NOPE0000")
	s.Assert().True(IsErrNotFound(err))
}

func (s *StoreTestSuite) TestRuleFlagsDefault() {
	s.writeFixture()

	flags := s.store.RuleFlags()
	s.Assert().True(flags.RequireRecipientCheck)
	s.Assert().True(flags.RequireFilenameCheck)
}

func (s *StoreTestSuite) TestRuleFlagsFromDocument() {
	s.writeDocument(`{
		"version": "2.0.0",
		"customers": [],
		"verification_rules": {
			"require_recipient_check": false,
			"require_filename_check": true
		}
	}`)

	flags := s.store.RuleFlags()
	s.Assert().False(flags.RequireRecipientCheck)
	s.Assert().True(flags.RequireFilenameCheck)
}

func (s *StoreTestSuite) assertPersistedCount(expected int) {
	fresh := &store{fs: s.fs, filename: "data/customers.json"}
	s.Require().NoError(fresh.Load(context.TODO()))
	s.Assert().Len(fresh.doc.Customers, expected)
}
