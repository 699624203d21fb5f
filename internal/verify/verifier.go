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
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/log"
	"github.com/lukasdietrich/preiswacht/internal/mails"
	"github.com/lukasdietrich/preiswacht/internal/models"
)

// Verifier evaluates send candidates and customer records against the rule
// set. It holds no state of its own and is safe for concurrent use.
type Verifier struct {
	store customers.Store
	rules ruleSet
}

// NewVerifier creates a verifier on top of the customer store. The filesystem
// is used for attachment existence checks.
func NewVerifier(store customers.Store, fs afero.Fs) *Verifier {
	return &Verifier{
		store: store,
		rules: ruleSet{fs: fs},
	}
}

// VerifySendCandidate runs the complete rule set for one candidate and folds
// the results into a report. Expected policy failures become results instead
// of errors; only environmental failures of the customer database are
// returned as an error, so the caller can block all sends instead of
// mistaking them for an unknown customer. Internal evaluation errors produce
// a fail-closed report.
func (v *Verifier) VerifySendCandidate(ctx context.Context, candidate Candidate) (report *Report, err error) {
	defer func() {
		if cause := recover(); cause != nil {
			log.ErrorContext(ctx).
				Str("email", candidate.Email).
				Msgf("verification system error: %v", cause)

			report = failClosed(candidate, cause)
			err = nil
		}
	}()

	customer, lookupErr := v.store.FindByDomain(candidate.Email)

	if customers.IsErrStorage(lookupErr) {
		return nil, lookupErr
	}

	if lookupErr != nil {
		report := &Report{
			CustomerID:  CustomerUnknown,
			CompanyName: "Unknown",
			Candidate:   candidate,
			Results:     []Result{lookupFailure(candidate.Email)},
			Status:      StatusFail,
			CanSend:     false,
			Timestamp:   time.Now(),
		}

		v.logReport(ctx, report)
		return report, nil
	}

	results := v.evaluate(candidate, customer)
	status, canSend := classify(results)

	report = &Report{
		CustomerID:  customer.ID,
		CompanyName: customer.CompanyName,
		Candidate:   candidate,
		Results:     results,
		Status:      status,
		CanSend:     canSend,
		Timestamp:   time.Now(),
	}

	v.logReport(ctx, report)
	return report, nil
}

// evaluate runs all levels unconditionally in a fixed order, even if an
// earlier check already failed critically. The report must always contain the
// complete check set for audit completeness.
func (v *Verifier) evaluate(candidate Candidate, customer *models.Customer) []Result {
	flags := v.store.RuleFlags()

	// level 1: identity
	results := []Result{
		v.rules.checkDomainMatch(candidate.Email, customer),
		v.rules.checkAuthorization(candidate.Email, customer),
	}

	if flags.RequireRecipientCheck {
		results = append(results, v.rules.checkRecipientName(candidate.RecipientName, customer))
	}

	// level 2: content
	results = append(results, v.rules.checkAttachment(customer))

	if flags.RequireFilenameCheck {
		results = append(results, v.rules.checkFilenamePattern(customer))
	}

	return results
}

func (v *Verifier) logReport(ctx context.Context, report *Report) {
	ctx = log.WithCustomer(ctx, report.CustomerID)

	for _, result := range report.Results {
		if result.Passed {
			continue
		}

		event := log.WarnContext(ctx)
		if result.Severity >= SeverityError {
			event = log.ErrorContext(ctx)
		}

		event.
			Str("check", string(result.Check)).
			Str("severity", result.Severity.String()).
			Msg(result.Message)
	}

	log.InfoContext(ctx).
		Str("email", report.Candidate.Email).
		Str("status", string(report.Status)).
		Bool("canSend", report.CanSend).
		Msg("verification completed")
}

// failClosed is the report for internal evaluation errors.
func failClosed(candidate Candidate, cause interface{}) *Report {
	return &Report{
		CustomerID:  CustomerError,
		CompanyName: "System Error",
		Candidate:   candidate,
		Results:     []Result{systemFailure(cause)},
		Status:      StatusFail,
		CanSend:     false,
		Timestamp:   time.Now(),
	}
}

// SelfStatus classifies a customer self-check.
type SelfStatus string

const (
	SelfPassed  SelfStatus = "passed"
	SelfWarning SelfStatus = "warning"
	SelfFailed  SelfStatus = "failed"
)

// Issue is one finding of a customer self-check.
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SelfReport is the outcome of verifying a customer record against its own
// declared data.
type SelfReport struct {
	CustomerID string     `json:"customer_id"`
	Status     SelfStatus `json:"status"`
	Issues     []Issue    `json:"issues,omitempty"`
}

// VerifyCustomer checks a record against its own declared data: domain
// consistency of every authorized address, presence of addresses, file path
// and filename convention. The resulting status booleans are persisted back
// onto the record. A missing id yields a failed report, not an error.
func (v *Verifier) VerifyCustomer(ctx context.Context, id string) (*SelfReport, error) {
	customer, err := v.store.FindByID(id)

	if customers.IsErrNotFound(err) {
		return &SelfReport{
			CustomerID: id,
			Status:     SelfFailed,
			Issues: []Issue{{
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("customer %s not found", id),
			}},
		}, nil
	}

	if err != nil {
		return nil, err
	}

	report := v.selfCheck(customer)

	if err := v.persistStatus(ctx, customer, report); err != nil {
		return report, err
	}

	return report, nil
}

func (v *Verifier) selfCheck(customer *models.Customer) *SelfReport {
	var issues []Issue

	if customer.EmailDomain == "" {
		issues = append(issues, Issue{
			Severity: SeverityCritical,
			Message:  "no email domain configured",
		})
	}

	if len(customer.EmailAddresses) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityCritical,
			Message:  "no email addresses configured",
		})
	}

	// every authorized address must live in the authoritative domain
	for _, email := range customer.EmailAddresses {
		if result := v.rules.checkDomainMatch(email, customer); !result.Passed {
			issues = append(issues, Issue{
				Severity: result.Severity,
				Message:  result.Message,
			})
		}
	}

	if customer.FileGeneration.FilePath == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  "no file path configured",
		})
	}

	if customer.FileGeneration.CurrentFilename == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Message:  "no current filename resolved",
		})
	} else if result := v.rules.checkFilenamePattern(customer); !result.Passed {
		issues = append(issues, Issue{
			Severity: result.Severity,
			Message:  result.Message,
		})
	}

	return &SelfReport{
		CustomerID: customer.ID,
		Status:     classifySelf(issues),
		Issues:     issues,
	}
}

func classifySelf(issues []Issue) SelfStatus {
	status := SelfPassed

	for _, issue := range issues {
		if issue.Severity >= SeverityError {
			return SelfFailed
		}

		status = SelfWarning
	}

	return status
}

func (v *Verifier) persistStatus(ctx context.Context, customer *models.Customer, report *SelfReport) error {
	now := time.Now()

	domainOK := customer.EmailDomain != "" && len(customer.EmailAddresses) > 0

	for _, email := range customer.EmailAddresses {
		addr, err := mails.ParseAddress(email)
		if err != nil || !mails.SameDomain(addr.Domain(), customer.EmailDomain) {
			domainOK = false
			break
		}
	}

	customer.VerificationStatus = models.VerificationStatus{
		DomainVerified:   domainOK,
		FilePathVerified: customer.FileGeneration.FilePath != "",
		FilenameVerified: customer.FileGeneration.CurrentFilename != "" &&
			containsNormalized(customer.FileGeneration.CurrentFilename, customer.CompanyName),
		LastCheck: &now,
	}

	return v.store.Update(ctx, customer.ID, customer)
}
