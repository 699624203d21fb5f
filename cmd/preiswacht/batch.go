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

	"github.com/lukasdietrich/preiswacht/internal/drafts"
)

type batchCommand struct {
	Generator *drafts.Generator
}

// run generates drafts for all active customers. An optional argument picks
// the draft template. The run can be interrupted with ^C between customers.
func (c *batchCommand) run(args []string) error {
	var templateKey string
	if len(args) > 0 {
		templateKey = args[0]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go func() {
		<-interrupt
		cancel()
	}()

	result, err := c.Generator.Run(ctx, templateKey, nil, printProgress)
	if result != nil {
		fmt.Printf("\n%d customers: %d drafts generated, %d blocked, %d errors\n",
			result.Total, result.Generated, result.Blocked, result.Errors)
	}

	return err
}

func printProgress(p drafts.Progress) {
	verdict := "blocked"
	if p.CanSend {
		verdict = "draft created"
	}

	fmt.Printf("[%d/%d] %-10s %-40s %s (%s)\n",
		p.Index, p.Total, p.CustomerID, p.CompanyName, verdict, p.Status)
}
