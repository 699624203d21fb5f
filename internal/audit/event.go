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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// EventType enumerates the categories of audit events.
type EventType string

const (
	EventSendAttempt         EventType = "email_send_attempt"
	EventSendSuccess         EventType = "email_send_success"
	EventSendFailure         EventType = "email_send_failure"
	EventVerificationFailure EventType = "verification_failure"
	EventCustomerCreated     EventType = "customer_created"
	EventCustomerUpdated     EventType = "customer_updated"
	EventCustomerDeleted     EventType = "customer_deleted"
	EventSystemError         EventType = "system_error"
	EventSecurityViolation   EventType = "security_violation"
	EventLoginAttempt        EventType = "login_attempt"
	EventConfigChange        EventType = "config_change"
)

// Severity grades audit events.
type Severity int

const (
	SeverityInfo Severity = iota + 1
	SeverityWarning
	SeverityError
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityWarning:  "warning",
	SeverityError:    "error",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	return severityNames[s]
}

// MarshalText implements encoding.TextMarshaler for json serialization.
func (s Severity) MarshalText() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("audit: unknown severity %d", s)
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for json deserialization.
func (s *Severity) UnmarshalText(text []byte) error {
	for severity, name := range severityNames {
		if name == string(text) {
			*s = severity
			return nil
		}
	}

	return fmt.Errorf("audit: unknown severity %q", text)
}

// Event is one immutable entry of the audit trail.
type Event struct {
	ID        string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"event_type"`
	Severity  Severity  `json:"severity"`
	User      string    `json:"user"`
	SessionID string    `json:"session_id,omitempty"`
	Action    string    `json:"action"`

	Details map[string]string `json:"details,omitempty"`

	CustomerID     string `json:"customer_id,omitempty"`
	EmailAddress   string `json:"email_address,omitempty"`
	RecipientName  string `json:"recipient_name,omitempty"`
	AttachmentFile string `json:"attachment_file,omitempty"`

	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// fingerprint derives the deterministic event id from timestamp, user and
// action, so re-appending the same occurrence is idempotent.
func (e *Event) fingerprint() string {
	sum := sha256.Sum256([]byte(
		e.Timestamp.UTC().Format(time.RFC3339Nano) + e.User + e.Action,
	))

	return hex.EncodeToString(sum[:])[:12]
}
