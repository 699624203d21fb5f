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
	"fmt"
	"os"
	"os/signal"

	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/verify"
)

type verifyCommand struct {
	Store    customers.Store
	Verifier *verify.Verifier
}

// run verifies the given customer ids, or every active customer if none are
// given, and prints the findings. The run can be interrupted with ^C between
// customers.
func (c *verifyCommand) run(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go func() {
		<-interrupt
		cancel()
	}()

	ids := args
	if len(ids) == 0 {
		for _, customer := range c.Store.ListActive() {
			ids = append(ids, customer.ID)
		}
	}

	return c.verifyAll(ctx, ids)
}

func (c *verifyCommand) verifyAll(ctx context.Context, ids []string) error {
	var failed int

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		report, err := c.Verifier.VerifyCustomer(ctx, id)
		if err != nil {
			return err
		}

		printSelfReport(report)

		if report.Status == verify.SelfFailed {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d customers failed verification",
			failed, len(ids))
	}

	return nil
}

func printSelfReport(report *verify.SelfReport) {
	fmt.Printf("%-10s %s\n", report.CustomerID, report.Status)

	for _, issue := range report.Issues {
		fmt.Printf("           [%s] %s\n", issue.Severity, issue.Message)
	}
}
