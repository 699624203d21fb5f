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

package drafts

import (
	"fmt"
	"strings"
	"time"

	"github.com/lukasdietrich/preiswacht/internal/models"
)

// Placeholders maps {marker} names to their substituted values.
type Placeholders map[string]string

var monthNames = []string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// DatePlaceholders derives the date markers from the given point in time.
// "yymm" matches the filename convention of the monthly pricing documents.
func DatePlaceholders(now time.Time) Placeholders {
	return Placeholders{
		"month": monthNames[now.Month()-1],
		"year":  fmt.Sprintf("%d", now.Year()),
		"yymm":  now.Format("0601"),
		"date":  now.Format("02.01.2006"),
	}
}

// CustomerPlaceholders derives the per-customer markers.
func CustomerPlaceholders(customer *models.Customer, recipient string) Placeholders {
	return Placeholders{
		"company_name":   customer.CompanyName,
		"recipient_name": recipient,
	}
}

func (p Placeholders) merge(other Placeholders) Placeholders {
	merged := make(Placeholders, len(p)+len(other))

	for key, value := range p {
		merged[key] = value
	}

	for key, value := range other {
		merged[key] = value
	}

	return merged
}

// substitute replaces every {marker} for which a value is known. Unknown
// markers are left in place so they are visible in the draft for review.
func substitute(text string, placeholders Placeholders) string {
	for key, value := range placeholders {
		text = strings.ReplaceAll(text, "{"+key+"}", value)
	}

	return text
}

// BuildSubject renders the subject line of a template.
func BuildSubject(template Template, placeholders Placeholders) string {
	return substitute(template.Subject, placeholders)
}

// BuildBody renders the body of a template.
func BuildBody(template Template, placeholders Placeholders) string {
	return substitute(template.Body, placeholders)
}
