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

package verify

import (
	"time"
)

// Severity grades a single check result.
type Severity int

const (
	// SeverityInfo is the severity of passing checks.
	SeverityInfo Severity = iota + 1
	// SeverityWarning is a hint that requires manual approval, never an
	// automatic block by itself.
	SeverityWarning
	// SeverityError blocks this specific send.
	SeverityError
	// SeverityCritical blocks the send and indicates a potential
	// cross-customer data leak.
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
	return []byte(s.String()), nil
}

// Check names the fixed set of verification rules.
type Check string

const (
	CheckCustomerLookup  Check = "customer_lookup"
	CheckDomain          Check = "domain_verification"
	CheckAuthorization   Check = "email_authorization"
	CheckRecipient       Check = "recipient_validation"
	CheckFileExistence   Check = "file_existence"
	CheckFilenamePattern Check = "filename_pattern"
	CheckSystemError     Check = "system_error"
)

// Result is the graded outcome of a single rule evaluation.
type Result struct {
	Check    Check             `json:"check"`
	Severity Severity          `json:"severity"`
	Passed   bool              `json:"passed"`
	Message  string            `json:"message"`
	Details  map[string]string `json:"details,omitempty"`
}

// Status classifies a complete report.
type Status string

const (
	// StatusPass allows the send.
	StatusPass Status = "PASS"
	// StatusWarning blocks the send until approved manually.
	StatusWarning Status = "WARNING"
	// StatusFail blocks the send.
	StatusFail Status = "FAIL"
)

// Candidate is a prospective (email, recipient, attachment) triple proposed
// for sending.
type Candidate struct {
	Email          string `json:"email"`
	RecipientName  string `json:"recipient_name"`
	AttachmentFile string `json:"attachment_file"`
}

// Sentinel customer ids for reports without a resolved record.
const (
	CustomerUnknown = "unknown"
	CustomerError   = "error"
)

// Report is the aggregate of all results for one send candidate.
type Report struct {
	CustomerID  string    `json:"customer_id"`
	CompanyName string    `json:"company_name"`
	Candidate   Candidate `json:"candidate"`
	Results     []Result  `json:"verification_results"`
	Status      Status    `json:"overall_status"`
	CanSend     bool      `json:"can_send"`
	Timestamp   time.Time `json:"timestamp"`
}

// classify folds results into the overall status:
// any failing critical or error result forces FAIL, a failing warning with no
// higher severity failure forces WARNING, otherwise PASS. CanSend is true iff
// the status is PASS.
func classify(results []Result) (Status, bool) {
	status := StatusPass

	for _, result := range results {
		if result.Passed {
			continue
		}

		switch result.Severity {
		case SeverityCritical, SeverityError:
			return StatusFail, false
		case SeverityWarning:
			status = StatusWarning
		}
	}

	return status, status == StatusPass
}

// FailedResults returns all failing results in evaluation order.
func (r *Report) FailedResults() []Result {
	var failed []Result

	for _, result := range r.Results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}

	return failed
}

// HasSeverity reports whether any failing result carries at least the given
// severity.
func (r *Report) HasSeverity(severity Severity) bool {
	for _, result := range r.Results {
		if !result.Passed && result.Severity >= severity {
			return true
		}
	}

	return false
}
