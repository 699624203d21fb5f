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

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/lukasdietrich/preiswacht/internal/audit"
	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/mails"
	"github.com/lukasdietrich/preiswacht/internal/models"
	"github.com/lukasdietrich/preiswacht/internal/verify"
)

type shellCommand struct {
	Store    customers.Store
	Verifier *verify.Verifier
	Trail    *audit.Log
}

func (s *shellCommand) run(args []string) error {
	shell := ishell.New()
	s.setupShell(shell)
	shell.Run()

	return s.Trail.Flush()
}

func (s *shellCommand) setupShell(shell *ishell.Shell) {
	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "customers",
			Help: "manage customers",
		},
		[]*ishell.Cmd{
			{
				Name: "list",
				Help: "list all active customers",
				Func: s.wrapShellFunc(s.customersList),
			},
			{
				Name: "show",
				Help: "show a customer record",
				Func: s.wrapShellFunc(s.customersShow),
			},
			{
				Name: "add",
				Help: "add a new customer",
				Func: s.wrapShellFunc(s.customersAdd),
			},
			{
				Name: "remove",
				Help: "deactivate a customer",
				Func: s.wrapShellFunc(s.customersRemove),
			},
			{
				Name: "verify",
				Help: "verify a customer record",
				Func: s.wrapShellFunc(s.customersVerify),
			},
		},
	))

	shell.AddCmd(composeShellCmd(
		ishell.Cmd{
			Name: "audit",
			Help: "inspect the audit trail",
		},
		[]*ishell.Cmd{
			{
				Name: "tail",
				Help: "show the most recent audit events",
				Func: s.wrapShellFunc(s.auditTail),
			},
			{
				Name: "security",
				Help: "show security relevant events of the last days",
				Func: s.wrapShellFunc(s.auditSecurity),
			},
			{
				Name: "prune",
				Help: "drop audit events beyond the retention in days",
				Func: s.wrapShellFunc(s.auditPrune),
			},
		},
	))

	shell.AddCmd(&ishell.Cmd{
		Name: "preview",
		Help: "preview the verification of a send candidate",
		Func: s.wrapShellFunc(s.preview),
	})
}

func (s *shellCommand) customersList(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: customers list")
	}

	active := s.Store.ListActive()

	ctx.printf("\n(%d) Customers:\n", len(active))
	for _, customer := range active {
		ctx.printf("\t%-10s %-40s %s\n",
			customer.ID, customer.CompanyName, customer.EmailDomain)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) customersShow(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: customers show [ID]")
	}

	customer, err := s.Store.FindByID(ctx.arg(0))
	if err != nil {
		return err
	}

	ctx.printf("\n%s (%s)\n", customer.CompanyName, customer.ID)
	ctx.printf("\tDomain:     %s\n", customer.EmailDomain)
	ctx.printf("\tAddresses:  %s\n", strings.Join(customer.EmailAddresses, ", "))
	ctx.printf("\tRecipients: %s\n", strings.Join(customer.RecipientNames, ", "))
	ctx.printf("\tFile path:  %s\n", customer.FileGeneration.FilePath)
	ctx.printf("\tPattern:    %s\n", customer.FileGeneration.FilenamePattern)
	ctx.printf("\tCurrent:    %s\n", customer.FileGeneration.CurrentFilename)

	status := customer.VerificationStatus
	ctx.printf("\tVerified:   domain=%v path=%v filename=%v\n",
		status.DomainVerified, status.FilePathVerified, status.FilenameVerified)

	if status.LastCheck != nil {
		ctx.printf("\tLast check: %s\n", status.LastCheck.Format(time.RFC3339))
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) customersAdd(ctx shellContext) error {
	if !ctx.checkArgs(0) {
		return errors.New("Usage: customers add")
	}

	company, err := ctx.ask("Company name")
	if err != nil {
		return err
	}

	addresses, err := ctx.ask("Email addresses (comma separated)")
	if err != nil {
		return err
	}

	recipients, err := ctx.ask("Recipient names (comma separated)")
	if err != nil {
		return err
	}

	path, err := ctx.ask("Attachment folder")
	if err != nil {
		return err
	}

	pattern, err := ctx.ask("Filename pattern")
	if err != nil {
		return err
	}

	customer := models.Customer{
		CompanyName:    company,
		EmailAddresses: splitList(addresses),
		RecipientNames: splitList(recipients),
		FileGeneration: models.FileGeneration{
			FilePath:        path,
			FilenamePattern: pattern,
		},
	}

	for _, address := range customer.EmailAddresses {
		if _, err := mails.ParseAddress(address); err != nil {
			return fmt.Errorf("invalid address %q: %w", address, err)
		}
	}

	id, err := s.Store.Add(context.Background(), &customer)
	if err != nil {
		return err
	}

	s.Trail.Append(audit.NewCustomerEvent(
		audit.EventCustomerCreated, id, customer.CompanyName))

	ctx.printf("\n\tCustomer %q added.\n\n", id)
	return nil
}

func (s *shellCommand) customersRemove(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: customers remove [ID]")
	}

	id := ctx.arg(0)

	customer, err := s.Store.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.Store.SoftDelete(context.Background(), id); err != nil {
		return err
	}

	s.Trail.Append(audit.NewCustomerEvent(
		audit.EventCustomerDeleted, id, customer.CompanyName))

	ctx.printf("\n\tCustomer %q deactivated.\n\n", id)
	return nil
}

func (s *shellCommand) customersVerify(ctx shellContext) error {
	if !ctx.checkArgs(1) {
		return errors.New("Usage: customers verify [ID]")
	}

	report, err := s.Verifier.VerifyCustomer(context.Background(), ctx.arg(0))
	if err != nil {
		return err
	}

	ctx.printf("\n\t%s: %s\n", report.CustomerID, report.Status)
	for _, issue := range report.Issues {
		ctx.printf("\t[%s] %s\n", issue.Severity, issue.Message)
	}
	ctx.printf("\n")

	return nil
}

func (s *shellCommand) auditTail(ctx shellContext) error {
	if !ctx.checkArgs(0) && !ctx.checkArgs(1) {
		return errors.New("Usage: audit tail [COUNT]")
	}

	count := 10
	if ctx.checkArgs(1) {
		n, err := strconv.Atoi(ctx.arg(0))
		if err != nil || n < 1 {
			return fmt.Errorf("invalid count %q", ctx.arg(0))
		}

		count = n
	}

	events := s.Trail.Query(audit.Filter{})
	if len(events) > count {
		events = events[len(events)-count:]
	}

	printEvents(ctx, events)
	return nil
}

func (s *shellCommand) auditSecurity(ctx shellContext) error {
	if !ctx.checkArgs(0) && !ctx.checkArgs(1) {
		return errors.New("Usage: audit security [DAYS]")
	}

	days := 7
	if ctx.checkArgs(1) {
		n, err := strconv.Atoi(ctx.arg(0))
		if err != nil || n < 1 {
			return fmt.Errorf("invalid number of days %q", ctx.arg(0))
		}

		days = n
	}

	printEvents(ctx, s.Trail.SecurityEvents(time.Duration(days)*24*time.Hour))
	return nil
}

func (s *shellCommand) auditPrune(ctx shellContext) error {
	if !ctx.checkArgs(0) && !ctx.checkArgs(1) {
		return errors.New("Usage: audit prune (DAYS)")
	}

	retention := audit.DefaultRetention()
	if ctx.checkArgs(1) {
		days, err := strconv.Atoi(ctx.arg(0))
		if err != nil || days < 1 {
			return fmt.Errorf("invalid retention %q", ctx.arg(0))
		}

		retention = time.Duration(days) * 24 * time.Hour
	}

	dropped, err := s.Trail.Prune(retention)
	if err != nil {
		return err
	}

	ctx.printf("\n\t%d events dropped.\n\n", dropped)
	return nil
}

func (s *shellCommand) preview(ctx shellContext) error {
	if !ctx.checkArgs(2) && !ctx.checkArgs(3) {
		return errors.New("Usage: preview [EMAIL] [RECIPIENT] (ATTACHMENT)")
	}

	candidate := verify.Candidate{
		Email:         ctx.arg(0),
		RecipientName: ctx.arg(1),
	}

	if ctx.checkArgs(3) {
		candidate.AttachmentFile = ctx.arg(2)
	}

	preview := s.Verifier.GetPreview(context.Background(), candidate)

	ctx.printf("\n\tCustomer:   %s\n", preview.Customer)
	ctx.printf("\tEmail:      %s\n", preview.Email)
	ctx.printf("\tDomain:     %s\n", preview.DomainCheck)
	ctx.printf("\tAttachment: %s\n", preview.FileCheck)
	ctx.printf("\tCan send:   %v\n\n", preview.CanSend)

	return nil
}

func printEvents(ctx shellContext, events []audit.Event) {
	ctx.printf("\n(%d) Events:\n", len(events))
	for _, event := range events {
		ctx.printf("\t%s  %-8s %-22s %s\n",
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.Severity,
			event.Type,
			event.Action)
	}
	ctx.printf("\n")
}

func splitList(value string) []string {
	var list []string

	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	return list
}

type shellContext struct {
	shell *ishell.Context
}

func (c *shellContext) checkArgs(n int) bool {
	return len(c.shell.Args) == n
}

func (c *shellContext) arg(i int) string {
	return c.shell.Args[i]
}

func (c *shellContext) printf(format string, v ...interface{}) {
	c.shell.Printf(format, v...)
}

func (c *shellContext) ask(prompt string) (string, error) {
	c.printf("%s: ", prompt)
	return c.shell.ReadLineErr()
}

func composeShellCmd(cmd ishell.Cmd, children []*ishell.Cmd) *ishell.Cmd {
	for _, child := range children {
		cmd.AddCmd(child)
	}

	return &cmd
}

func (s *shellCommand) wrapShellFunc(fn func(shellContext) error) func(*ishell.Context) {
	return func(shell *ishell.Context) {
		ctx := shellContext{
			shell: shell,
		}

		if err := fn(ctx); err != nil {
			shell.Err(err)
			return
		}

		if err := s.Trail.Flush(); err != nil {
			shell.Err(err)
		}
	}
}
