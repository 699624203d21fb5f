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

package models

import (
	"time"
)

// Customer is one customer organization in the customer database document.
type Customer struct {
	ID             string   `json:"id"`
	CompanyName    string   `json:"company_name"`
	RecipientNames []string `json:"recipient_names,omitempty"`
	EmailAddresses []string `json:"email_addresses"`
	EmailDomain    string   `json:"email_domain"`

	FileGeneration     FileGeneration     `json:"file_generation"`
	VerificationStatus VerificationStatus `json:"verification_status"`

	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// FileGeneration holds the naming convention for a customer's monthly
// pricing attachment.
type FileGeneration struct {
	// FilePath is the source directory the attachments are generated into.
	FilePath string `json:"file_path"`
	// FilenamePattern is the naming convention, e.g. "{yymm}01_Pricing_{company}.pdf".
	FilenamePattern string `json:"filename_pattern"`
	// CurrentFilename is the most recently resolved concrete filename.
	CurrentFilename string `json:"current_filename"`
}

// VerificationStatus is the persisted outcome of the last customer self-check.
type VerificationStatus struct {
	DomainVerified   bool       `json:"domain_verified"`
	FilePathVerified bool       `json:"file_path_verified"`
	FilenameVerified bool       `json:"filename_verified"`
	LastCheck        *time.Time `json:"last_check,omitempty"`
}

// RuleFlags controls which of the non-mandatory verification checks run. The
// domain and authorization checks can not be disabled.
type RuleFlags struct {
	RequireRecipientCheck bool `json:"require_recipient_check"`
	RequireFilenameCheck  bool `json:"require_filename_check"`
}

// DefaultRuleFlags enables every check.
func DefaultRuleFlags() RuleFlags {
	return RuleFlags{
		RequireRecipientCheck: true,
		RequireFilenameCheck:  true,
	}
}
