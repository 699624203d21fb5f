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
	"context"

	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/log"
)

// Preview is a lightweight summary for UI display before full verification.
// It only runs the domain and attachment checks.
type Preview struct {
	Customer    string `json:"customer"`
	Recipient   string `json:"recipient"`
	Email       string `json:"email"`
	Attachment  string `json:"attachment"`
	DomainCheck string `json:"domain_check"`
	FileCheck   string `json:"file_check"`
	CanSend     bool   `json:"can_send"`
}

// GetPreview produces a quick summary without touching the audit trail. The
// result is advisory; a full report is still required before any send.
func (v *Verifier) GetPreview(ctx context.Context, candidate Candidate) *Preview {
	preview := &Preview{
		Recipient:  candidate.RecipientName,
		Email:      candidate.Email,
		Attachment: candidate.AttachmentFile,
	}

	customer, err := v.store.FindByDomain(candidate.Email)
	if err != nil {
		// an unreadable database is an infrastructure problem, not an
		// unknown customer, and must show as such
		if customers.IsErrStorage(err) {
			log.ErrorContext(ctx).
				Str("email", candidate.Email).
				Err(err).
				Msg("could not preview candidate")

			preview.Customer = "Unavailable"
			preview.DomainCheck = "customer database unavailable"
			preview.FileCheck = "cannot verify"

			return preview
		}

		preview.Customer = "Unknown"
		preview.DomainCheck = "no customer record found"
		preview.FileCheck = "cannot verify"

		return preview
	}

	domainResult := v.rules.checkDomainMatch(candidate.Email, customer)
	fileResult := v.rules.checkAttachment(customer)

	preview.Customer = customer.CompanyName
	preview.DomainCheck = previewStatus(domainResult, "verified", "failed")
	preview.FileCheck = previewStatus(fileResult, "found", "missing")
	preview.CanSend = domainResult.Passed && fileResult.Passed

	return preview
}

func previewStatus(result Result, pass, fail string) string {
	if result.Passed {
		return pass
	}

	return fail
}
