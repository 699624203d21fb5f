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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/lukasdietrich/preiswacht/internal/mails"
	"github.com/lukasdietrich/preiswacht/internal/models"
	"github.com/lukasdietrich/preiswacht/internal/storage"
)

// ruleSet implements the fixed, ordered collection of checks. Every rule is a
// pure function of (customer record, candidate) except for the attachment
// rule, which stats the filesystem.
type ruleSet struct {
	fs afero.Fs
}

// checkDomainMatch verifies the candidate email's domain against the record's
// authoritative domain. A mismatch is the primary threat model of the whole
// system and therefore critical.
func (r ruleSet) checkDomainMatch(email string, customer *models.Customer) Result {
	addr, err := mails.ParseAddress(email)
	if err != nil {
		return Result{
			Check:    CheckDomain,
			Severity: SeverityCritical,
			Passed:   false,
			Message:  fmt.Sprintf("domain verification failed: %v", err),
			Details:  map[string]string{"email": email},
		}
	}

	if mails.SameDomain(addr.Domain(), customer.EmailDomain) {
		return Result{
			Check:    CheckDomain,
			Severity: SeverityInfo,
			Passed:   true,
			Message:  fmt.Sprintf("domain verified: %s", addr.NormalizedDomain()),
			Details: map[string]string{
				"email":           email,
				"expected_domain": customer.EmailDomain,
			},
		}
	}

	return Result{
		Check:    CheckDomain,
		Severity: SeverityCritical,
		Passed:   false,
		Message: fmt.Sprintf("domain mismatch: %s is not authorized for %s",
			email, customer.CompanyName),
		Details: map[string]string{
			"email":           email,
			"email_domain":    addr.Domain(),
			"expected_domain": customer.EmailDomain,
			"company":         customer.CompanyName,
		},
	}
}

// checkAuthorization verifies the candidate email is literally present in the
// record's authorized address list. A correct domain alone is not sufficient.
func (r ruleSet) checkAuthorization(email string, customer *models.Customer) Result {
	for _, authorized := range customer.EmailAddresses {
		if strings.EqualFold(authorized, email) {
			return Result{
				Check:    CheckAuthorization,
				Severity: SeverityInfo,
				Passed:   true,
				Message:  fmt.Sprintf("email authorized: %s", email),
				Details:  map[string]string{"email": email},
			}
		}
	}

	return Result{
		Check:    CheckAuthorization,
		Severity: SeverityError,
		Passed:   false,
		Message: fmt.Sprintf("email %s is not in the authorized list of %s",
			email, customer.CompanyName),
		Details: map[string]string{
			"email":   email,
			"company": customer.CompanyName,
		},
	}
}

// checkRecipientName fuzzy-matches the candidate recipient against the
// record's known names. This is a hint, not a security boundary, and never
// escalates above warning. An empty name list passes trivially.
func (r ruleSet) checkRecipientName(recipient string, customer *models.Customer) Result {
	if len(customer.RecipientNames) == 0 || matchesAnyName(recipient, customer.RecipientNames) {
		return Result{
			Check:    CheckRecipient,
			Severity: SeverityInfo,
			Passed:   true,
			Message:  fmt.Sprintf("recipient validated: %s", recipient),
			Details:  map[string]string{"recipient": recipient},
		}
	}

	return Result{
		Check:    CheckRecipient,
		Severity: SeverityWarning,
		Passed:   false,
		Message:  fmt.Sprintf("recipient name %q is not in the known names", recipient),
		Details: map[string]string{
			"recipient":   recipient,
			"known_names": strings.Join(customer.RecipientNames, ", "),
		},
	}
}

func matchesAnyName(recipient string, names []string) bool {
	folded := strings.ToLower(recipient)

	for _, name := range names {
		known := strings.ToLower(name)

		if strings.Contains(folded, known) || strings.Contains(known, folded) {
			return true
		}
	}

	return false
}

// checkAttachment verifies the concrete pricing file exists and is non-empty.
// Absence blocks only this send, not the whole customer, hence error and not
// critical.
func (r ruleSet) checkAttachment(customer *models.Customer) Result {
	var (
		folder   = customer.FileGeneration.FilePath
		filename = customer.FileGeneration.CurrentFilename
	)

	if folder == "" || filename == "" {
		return Result{
			Check:    CheckFileExistence,
			Severity: SeverityError,
			Passed:   false,
			Message:  "file path or filename not configured",
			Details: map[string]string{
				"file_path": folder,
				"filename":  filename,
			},
		}
	}

	fullPath := filepath.Join(folder, filename)

	ok, size := storage.Exists(r.fs, fullPath)
	if !ok {
		return Result{
			Check:    CheckFileExistence,
			Severity: SeverityError,
			Passed:   false,
			Message:  fmt.Sprintf("pricing file not found: %s", fullPath),
			Details:  map[string]string{"full_path": fullPath},
		}
	}

	if size == 0 {
		return Result{
			Check:    CheckFileExistence,
			Severity: SeverityError,
			Passed:   false,
			Message:  fmt.Sprintf("pricing file is empty: %s", fullPath),
			Details:  map[string]string{"full_path": fullPath},
		}
	}

	return Result{
		Check:    CheckFileExistence,
		Severity: SeverityInfo,
		Passed:   true,
		Message:  fmt.Sprintf("pricing file verified: %s", filename),
		Details: map[string]string{
			"full_path": fullPath,
			"file_size": fmt.Sprintf("%d", size),
		},
	}
}

// checkFilenamePattern verifies the resolved filename mentions the company.
// Filenames are produced by a naming convention the verifier does not own, so
// a mismatch is only a warning.
func (r ruleSet) checkFilenamePattern(customer *models.Customer) Result {
	var (
		filename = customer.FileGeneration.CurrentFilename
		company  = customer.CompanyName
	)

	if containsNormalized(filename, company) {
		return Result{
			Check:    CheckFilenamePattern,
			Severity: SeverityInfo,
			Passed:   true,
			Message:  fmt.Sprintf("filename pattern verified: %s", filename),
			Details: map[string]string{
				"filename": filename,
				"company":  company,
			},
		}
	}

	return Result{
		Check:    CheckFilenamePattern,
		Severity: SeverityWarning,
		Passed:   false,
		Message:  fmt.Sprintf("filename %q may not belong to %s", filename, company),
		Details: map[string]string{
			"filename": filename,
			"company":  company,
			"pattern":  customer.FileGeneration.FilenamePattern,
		},
	}
}

// containsNormalized tests a case-insensitive substring match, retried with
// all spaces stripped from both sides.
func containsNormalized(haystack, needle string) bool {
	haystack = strings.ToLower(haystack)
	needle = strings.ToLower(needle)

	if strings.Contains(haystack, needle) {
		return true
	}

	strip := func(s string) string {
		return strings.ReplaceAll(s, " ", "")
	}

	return strings.Contains(strip(haystack), strip(needle))
}

// lookupFailure is the synthetic critical result used when no record owns the
// candidate's domain. Verification always produces a report, never an error,
// for expected policy failures.
func lookupFailure(email string) Result {
	return Result{
		Check:    CheckCustomerLookup,
		Severity: SeverityCritical,
		Passed:   false,
		Message:  fmt.Sprintf("no customer record found for the domain of %s", email),
		Details:  map[string]string{"email": email},
	}
}

// systemFailure is the synthetic critical result for internal evaluation
// errors. The system fails closed, never open.
func systemFailure(err interface{}) Result {
	return Result{
		Check:    CheckSystemError,
		Severity: SeverityCritical,
		Passed:   false,
		Message:  fmt.Sprintf("verification system error: %v", err),
		Details:  map[string]string{"error": fmt.Sprintf("%v", err)},
	}
}
