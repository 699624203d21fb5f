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
	"strings"
	"time"
)

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	// Start is the inclusive lower time bound.
	Start time.Time
	// End is the exclusive upper time bound.
	End time.Time
	// Type matches the event type exactly.
	Type EventType
	// CustomerID matches the customer exactly.
	CustomerID string
	// Email matches the email address case-insensitively.
	Email string
	// Severities matches any of the listed severities.
	Severities []Severity
}

func (f *Filter) matches(event *Event) bool {
	if !f.Start.IsZero() && event.Timestamp.Before(f.Start) {
		return false
	}

	if !f.End.IsZero() && !event.Timestamp.Before(f.End) {
		return false
	}

	if f.Type != "" && event.Type != f.Type {
		return false
	}

	if f.CustomerID != "" && event.CustomerID != f.CustomerID {
		return false
	}

	if f.Email != "" && !strings.EqualFold(event.EmailAddress, f.Email) {
		return false
	}

	if len(f.Severities) > 0 {
		var found bool
		for _, severity := range f.Severities {
			if event.Severity == severity {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

// Query returns copies of all events matching the filter in insertion order.
func (l *Log) Query(filter Filter) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []Event

	for _, event := range l.events {
		if filter.matches(&event) {
			matched = append(matched, event)
		}
	}

	return matched
}

// SecurityEvents returns all events of at least error severity within the
// given window, ending now.
func (l *Log) SecurityEvents(window time.Duration) []Event {
	return l.Query(Filter{
		Start:      time.Now().Add(-window),
		Severities: []Severity{SeverityError, SeverityCritical},
	})
}

// CustomerActivity returns all events concerning a single customer within
// the given window, ending now.
func (l *Log) CustomerActivity(customerID string, window time.Duration) []Event {
	return l.Query(Filter{
		Start:      time.Now().Add(-window),
		CustomerID: customerID,
	})
}
