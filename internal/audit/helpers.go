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
	"fmt"
	"time"
)

// Convenience constructors for the recurring event shapes. The log stamps
// user, session and id on append.

// NewSendAttempt records that a draft for a send candidate is about to be
// verified and generated.
func NewSendAttempt(customerID, email, recipient, attachment, verificationStatus string) Event {
	return Event{
		Timestamp: time.Now(),
		Type:      EventSendAttempt,
		Severity:  SeverityInfo,
		Action:    "email_send_attempt",
		Details: map[string]string{
			"verification_status": verificationStatus,
		},
		CustomerID:     customerID,
		EmailAddress:   email,
		RecipientName:  recipient,
		AttachmentFile: attachment,
		Success:        true,
	}
}

// NewSendSuccess records a successfully generated draft.
func NewSendSuccess(customerID, email, recipient, attachment string) Event {
	return Event{
		Timestamp:      time.Now(),
		Type:           EventSendSuccess,
		Severity:       SeverityInfo,
		Action:         "email_draft_created",
		CustomerID:     customerID,
		EmailAddress:   email,
		RecipientName:  recipient,
		AttachmentFile: attachment,
		Success:        true,
	}
}

// NewSendFailure records a draft that could not be generated.
func NewSendFailure(customerID, email, recipient, attachment string, cause error) Event {
	return Event{
		Timestamp:      time.Now(),
		Type:           EventSendFailure,
		Severity:       SeverityError,
		Action:         "email_send_failed",
		CustomerID:     customerID,
		EmailAddress:   email,
		RecipientName:  recipient,
		AttachmentFile: attachment,
		Success:        false,
		ErrorMessage:   cause.Error(),
	}
}

// NewVerificationFailure records a blocked send.
func NewVerificationFailure(customerID, email, recipient, attachment string, failedChecks []string) Event {
	details := map[string]string{
		"failed_checks": fmt.Sprintf("%d", len(failedChecks)),
	}

	for i, check := range failedChecks {
		details[fmt.Sprintf("check_%d", i)] = check
	}

	return Event{
		Timestamp:      time.Now(),
		Type:           EventVerificationFailure,
		Severity:       SeverityCritical,
		Action:         "verification_failed",
		Details:        details,
		CustomerID:     customerID,
		EmailAddress:   email,
		RecipientName:  recipient,
		AttachmentFile: attachment,
		Success:        false,
		ErrorMessage:   "verification checks failed",
	}
}

// NewSecurityViolation records a suspected cross-customer violation.
func NewSecurityViolation(email, violation string, details map[string]string) Event {
	return Event{
		Timestamp:    time.Now(),
		Type:         EventSecurityViolation,
		Severity:     SeverityCritical,
		Action:       "security_violation_" + violation,
		Details:      details,
		EmailAddress: email,
		Success:      false,
		ErrorMessage: "security violation: " + violation,
	}
}

// NewCustomerEvent records a create, update or delete of a customer record.
func NewCustomerEvent(eventType EventType, customerID, companyName string) Event {
	return Event{
		Timestamp:  time.Now(),
		Type:       eventType,
		Severity:   SeverityInfo,
		Action:     string(eventType),
		Details:    map[string]string{"company_name": companyName},
		CustomerID: customerID,
		Success:    true,
	}
}

// NewSystemError records an infrastructure failure, visibly distinct from
// policy failures.
func NewSystemError(kind string, cause error) Event {
	return Event{
		Timestamp:    time.Now(),
		Type:         EventSystemError,
		Severity:     SeverityError,
		Action:       "system_error_" + kind,
		Success:      false,
		ErrorMessage: cause.Error(),
	}
}
