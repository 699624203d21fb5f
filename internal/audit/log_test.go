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

package audit

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

func TestLogTestSuite(t *testing.T) {
	suite.Run(t, new(LogTestSuite))
}

type LogTestSuite struct {
	suite.Suite

	fs  afero.Fs
	log *Log
}

func (s *LogTestSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.log = &Log{
		fs:       s.fs,
		filename: "logs/audit.json",
		user:     "tester",
		session:  "session-1",
	}
}

func (s *LogTestSuite) readDocument() document {
	content, err := afero.ReadFile(s.fs, "logs/audit.json")
	s.Require().NoError(err)

	var doc document
	s.Require().NoError(json.Unmarshal(content, &doc))

	return doc
}

func (s *LogTestSuite) TestAppendStampsIdentity() {
	s.log.Append(Event{
		Type:     EventConfigChange,
		Severity: SeverityInfo,
		Action:   "retention_changed",
	})

	events := s.log.Query(Filter{})
	s.Require().Len(events, 1)

	s.Assert().Equal("tester", events[0].User)
	s.Assert().Equal("session-1", events[0].SessionID)
	s.Assert().Len(events[0].ID, 12)
	s.Assert().False(events[0].Timestamp.IsZero())
}

func (s *LogTestSuite) TestInfoIsBufferedUntilFlush() {
	s.log.Append(NewSendSuccess("ACME0001", "a@acme.com", "Alice", "a.pdf"))

	exists, err := afero.Exists(s.fs, "logs/audit.json")
	s.Require().NoError(err)
	s.Assert().False(exists)

	s.Require().NoError(s.log.Flush())

	doc := s.readDocument()
	s.Assert().Equal(1, doc.TotalEvents)
	s.Assert().Equal(EventSendSuccess, doc.AuditEvents[0].Type)
}

func (s *LogTestSuite) TestErrorIsPersistedImmediately() {
	s.log.Append(NewSendFailure(
		"ACME0001", "a@acme.com", "Alice", "a.pdf",
		errors.New("disk full")))

	doc := s.readDocument()
	s.Require().Equal(1, doc.TotalEvents)

	s.Assert().Equal(EventSendFailure, doc.AuditEvents[0].Type)
	s.Assert().Equal(SeverityError, doc.AuditEvents[0].Severity)
	s.Assert().Equal("disk full", doc.AuditEvents[0].ErrorMessage)
}

func (s *LogTestSuite) TestLoadExistingTrail() {
	s.log.Append(NewSendFailure(
		"ACME0001", "a@acme.com", "Alice", "a.pdf",
		errors.New("disk full")))

	reloaded := &Log{fs: s.fs, filename: "logs/audit.json"}
	s.Require().NoError(reloaded.loadExisting())

	s.Assert().Len(reloaded.Query(Filter{}), 1)
}

func (s *LogTestSuite) TestQueryFilters() {
	now := time.Now()

	s.log.Append(Event{
		Timestamp:  now.Add(-2 * time.Hour),
		Type:       EventSendAttempt,
		Severity:   SeverityInfo,
		Action:     "email_send_attempt",
		CustomerID: "ACME0001",
	})

	s.log.Append(Event{
		Timestamp:    now,
		Type:         EventSecurityViolation,
		Severity:     SeverityCritical,
		Action:       "security_violation_domain_mismatch",
		CustomerID:   "EVIL0001",
		EmailAddress: "Mallory@Evil.example",
	})

	s.Assert().Len(s.log.Query(Filter{Type: EventSendAttempt}), 1)
	s.Assert().Len(s.log.Query(Filter{CustomerID: "ACME0001"}), 1)
	s.Assert().Len(s.log.Query(Filter{Email: "mallory@evil.example"}), 1)
	s.Assert().Len(s.log.Query(Filter{
		Severities: []Severity{SeverityCritical},
	}), 1)

	// the time window excludes the older of the two events
	s.Assert().Len(s.log.Query(Filter{Start: now.Add(-time.Hour)}), 1)
	s.Assert().Len(s.log.SecurityEvents(time.Hour), 1)
	s.Assert().Empty(s.log.CustomerActivity("ACME0001", time.Hour))
}

func (s *LogTestSuite) TestPrune() {
	now := time.Now()

	s.log.Append(Event{
		Timestamp: now.AddDate(0, 0, -400),
		Type:      EventSendSuccess,
		Severity:  SeverityInfo,
		Action:    "email_draft_created",
	})

	s.log.Append(Event{
		Timestamp: now,
		Type:      EventSendSuccess,
		Severity:  SeverityInfo,
		Action:    "email_draft_created",
	})

	dropped, err := s.log.Prune(365 * 24 * time.Hour)
	s.Require().NoError(err)

	s.Assert().Equal(1, dropped)
	s.Assert().Len(s.log.Query(Filter{}), 1)

	// pruning persists the shortened trail
	doc := s.readDocument()
	s.Assert().Equal(1, doc.TotalEvents)
}

func (s *LogTestSuite) TestPruneNothingToDrop() {
	s.log.Append(NewSendSuccess("ACME0001", "a@acme.com", "Alice", "a.pdf"))

	dropped, err := s.log.Prune(365 * 24 * time.Hour)
	s.Require().NoError(err)
	s.Assert().Zero(dropped)
}

func (s *LogTestSuite) TestPersistFailureKeepsEventInMemory() {
	s.log.fs = afero.NewReadOnlyFs(s.fs)

	// the append must not panic or lose the event even though the
	// immediate persist fails
	s.log.Append(NewSendFailure(
		"ACME0001", "a@acme.com", "Alice", "a.pdf",
		errors.New("boom")))

	s.Assert().Len(s.log.Query(Filter{}), 1)

	// once the filesystem recovers, Flush retries the write
	s.log.fs = s.fs
	s.Require().NoError(s.log.Flush())

	doc := s.readDocument()
	s.Assert().Equal(1, doc.TotalEvents)
}

func (s *LogTestSuite) TestMalformedTrailIsAnError() {
	s.Require().NoError(
		afero.WriteFile(s.fs, "logs/audit.json", []byte("{"), 0600))

	l := &Log{fs: s.fs, filename: "logs/audit.json"}
	s.Assert().Error(l.loadExisting())
}
