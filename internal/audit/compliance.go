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
	"time"
)

// Summary aggregates the headline counters of a compliance report.
type Summary struct {
	TotalEvents          int `json:"total_events"`
	EmailAttempts        int `json:"email_attempts"`
	SuccessfulSends      int `json:"successful_sends"`
	FailedSends          int `json:"failed_sends"`
	VerificationFailures int `json:"verification_failures"`
	SecurityViolations   int `json:"security_violations"`
	CustomerOperations   int `json:"customer_operations"`
}

// ComplianceReport is a derived view over a slice of the audit trail. It is
// computed on demand and never stored.
type ComplianceReport struct {
	Start time.Time `json:"period_start"`
	End   time.Time `json:"period_end"`

	Summary        Summary           `json:"summary"`
	EventBreakdown map[EventType]int `json:"event_breakdown"`

	FailedVerifications []Event            `json:"failed_verifications,omitempty"`
	SecurityViolations  []Event            `json:"security_violations,omitempty"`
	CustomerActivity    map[string][]Event `json:"customer_activity,omitempty"`
}

// Compliance builds a report over the closed-open interval [start, end).
func (l *Log) Compliance(start, end time.Time) *ComplianceReport {
	events := l.Query(Filter{Start: start, End: end})

	report := ComplianceReport{
		Start:          start,
		End:            end,
		EventBreakdown: make(map[EventType]int),
	}

	for _, event := range events {
		report.EventBreakdown[event.Type]++

		switch event.Type {
		case EventSendAttempt:
			report.Summary.EmailAttempts++
		case EventSendSuccess:
			report.Summary.SuccessfulSends++
		case EventSendFailure:
			report.Summary.FailedSends++
		case EventVerificationFailure:
			report.Summary.VerificationFailures++
			report.FailedVerifications = append(report.FailedVerifications, event)
		case EventSecurityViolation:
			report.Summary.SecurityViolations++
			report.SecurityViolations = append(report.SecurityViolations, event)
		case EventCustomerCreated, EventCustomerUpdated, EventCustomerDeleted:
			report.Summary.CustomerOperations++
		}

		if event.CustomerID != "" {
			if report.CustomerActivity == nil {
				report.CustomerActivity = make(map[string][]Event)
			}

			report.CustomerActivity[event.CustomerID] = append(
				report.CustomerActivity[event.CustomerID], event)
		}
	}

	report.Summary.TotalEvents = len(events)
	return &report
}
