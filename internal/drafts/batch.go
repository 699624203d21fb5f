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
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/preiswacht/internal/audit"
	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/log"
	"github.com/lukasdietrich/preiswacht/internal/models"
	"github.com/lukasdietrich/preiswacht/internal/storage"
	"github.com/lukasdietrich/preiswacht/internal/verify"
)

func init() {
	viper.SetDefault("drafts.outbox.foldername", "outbox")
	viper.SetDefault("drafts.sender.name", "")
}

// Generator turns verified send candidates into draft files in the outbox
// folder. Every attempt, success and blocked send is recorded in the audit
// trail.
type Generator struct {
	store     customers.Store
	verifier  *verify.Verifier
	templates *TemplateStore
	trail     *audit.Log
	fs        afero.Fs

	outbox string
	sender string
}

// NewGenerator creates a draft generator using configuration from viper.
//
// `drafts.outbox.foldername` is the folder draft files are written to.
// `drafts.sender.name` is substituted for the {sender_name} marker.
func NewGenerator(
	store customers.Store,
	verifier *verify.Verifier,
	templates *TemplateStore,
	trail *audit.Log,
	fs afero.Fs,
) *Generator {
	return &Generator{
		store:     store,
		verifier:  verifier,
		templates: templates,
		trail:     trail,
		fs:        fs,

		outbox: viper.GetString("drafts.outbox.foldername"),
		sender: viper.GetString("drafts.sender.name"),
	}
}

// Progress is reported once per processed customer.
type Progress struct {
	Index       int
	Total       int
	CustomerID  string
	CompanyName string
	Status      verify.Status
	CanSend     bool
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Blocked   int `json:"blocked"`
	Errors    int `json:"errors"`
}

// Run generates drafts for all active customers. Verification decides per
// customer whether a draft may be written; a blocked customer never aborts
// the batch. A storage failure does abort the whole run, because without a
// readable customer document no verification result can be trusted.
func (g *Generator) Run(
	ctx context.Context,
	templateKey string,
	custom Placeholders,
	progress func(Progress),
) (*BatchResult, error) {
	defer g.trail.Flush()

	template := g.templates.Lookup(templateKey)
	placeholders := DatePlaceholders(time.Now()).
		merge(Placeholders{"sender_name": g.sender}).
		merge(custom)

	active := g.store.ListActive()
	result := BatchResult{Total: len(active)}

	for i, customer := range active {
		select {
		case <-ctx.Done():
			return &result, ctx.Err()
		default:
		}

		report, err := g.generate(ctx, &customer, template, placeholders)
		if err != nil {
			if customers.IsErrStorage(err) {
				return &result, err
			}

			result.Errors++
		} else if report.CanSend {
			result.Generated++
		} else {
			result.Blocked++
		}

		if progress != nil {
			p := Progress{
				Index:       i + 1,
				Total:       result.Total,
				CustomerID:  customer.ID,
				CompanyName: customer.CompanyName,
			}

			if report != nil {
				p.Status = report.Status
				p.CanSend = report.CanSend
			}

			progress(p)
		}
	}

	log.InfoContext(ctx).
		Int("total", result.Total).
		Int("generated", result.Generated).
		Int("blocked", result.Blocked).
		Int("errors", result.Errors).
		Msg("batch run finished")

	return &result, nil
}

// GenerateOne generates a draft for a single customer by id.
func (g *Generator) GenerateOne(
	ctx context.Context,
	id string,
	templateKey string,
	custom Placeholders,
) (*verify.Report, error) {
	defer g.trail.Flush()

	customer, err := g.store.FindByID(id)
	if err != nil {
		return nil, err
	}

	template := g.templates.Lookup(templateKey)
	placeholders := DatePlaceholders(time.Now()).
		merge(Placeholders{"sender_name": g.sender}).
		merge(custom)

	return g.generate(ctx, customer, template, placeholders)
}

func (g *Generator) generate(
	ctx context.Context,
	customer *models.Customer,
	template Template,
	placeholders Placeholders,
) (*verify.Report, error) {
	candidate := candidateFor(customer)

	g.trail.Append(audit.NewSendAttempt(
		customer.ID,
		candidate.Email,
		candidate.RecipientName,
		candidate.AttachmentFile,
		"pending"))

	report, err := g.verifier.VerifySendCandidate(ctx, candidate)
	if err != nil {
		g.trail.Append(audit.NewSendFailure(
			customer.ID,
			candidate.Email,
			candidate.RecipientName,
			candidate.AttachmentFile,
			err))

		return nil, err
	}

	if !report.CanSend {
		g.trail.Append(audit.NewVerificationFailure(
			customer.ID,
			candidate.Email,
			candidate.RecipientName,
			candidate.AttachmentFile,
			failedChecks(report)))

		return report, nil
	}

	if err := g.writeDraft(customer, candidate, template, placeholders); err != nil {
		g.trail.Append(audit.NewSendFailure(
			customer.ID,
			candidate.Email,
			candidate.RecipientName,
			candidate.AttachmentFile,
			err))

		return nil, err
	}

	g.trail.Append(audit.NewSendSuccess(
		customer.ID,
		candidate.Email,
		candidate.RecipientName,
		candidate.AttachmentFile))

	return report, nil
}

// candidateFor proposes the first configured address and recipient together
// with the current pricing document. Verification judges the proposal.
func candidateFor(customer *models.Customer) verify.Candidate {
	candidate := verify.Candidate{
		AttachmentFile: customer.FileGeneration.CurrentFilename,
	}

	if len(customer.EmailAddresses) > 0 {
		candidate.Email = customer.EmailAddresses[0]
	}

	if len(customer.RecipientNames) > 0 {
		candidate.RecipientName = customer.RecipientNames[0]
	}

	return candidate
}

func failedChecks(report *verify.Report) []string {
	var checks []string

	for _, result := range report.FailedResults() {
		checks = append(checks, string(result.Check))
	}

	return checks
}

// writeDraft renders the draft into the outbox as a plain text file ready
// for review in the mail client.
func (g *Generator) writeDraft(
	customer *models.Customer,
	candidate verify.Candidate,
	template Template,
	placeholders Placeholders,
) error {
	placeholders = placeholders.merge(
		CustomerPlaceholders(customer, candidate.RecipientName))

	var draft strings.Builder

	fmt.Fprintf(&draft, "To: %s\n", candidate.Email)
	fmt.Fprintf(&draft, "Subject: %s\n", BuildSubject(template, placeholders))
	fmt.Fprintf(&draft, "Attachment: %s\n", filepath.Join(
		customer.FileGeneration.FilePath,
		customer.FileGeneration.CurrentFilename))
	fmt.Fprintf(&draft, "\n%s\n", BuildBody(template, placeholders))

	filename := filepath.Join(g.outbox, draftFilename(customer))
	return storage.WriteFileAtomic(g.fs, filename, []byte(draft.String()))
}

func draftFilename(customer *models.Customer) string {
	return fmt.Sprintf("%s_%s.eml.txt",
		time.Now().Format("0601"), customer.ID)
}
