// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lukasdietrich/preiswacht/internal/audit"
	"github.com/lukasdietrich/preiswacht/internal/customers"
	"github.com/lukasdietrich/preiswacht/internal/drafts"
	"github.com/lukasdietrich/preiswacht/internal/storage"
	"github.com/lukasdietrich/preiswacht/internal/verify"
)

var wireSet = wire.NewSet(
	wire.Struct(new(verifyCommand), "*"),
	wire.Struct(new(batchCommand), "*"),
	wire.Struct(new(reportCommand), "*"),
	wire.Struct(new(shellCommand), "*"),

	storage.WireSet,
	customers.WireSet,
	verify.WireSet,
	audit.WireSet,
	drafts.WireSet,
)

func newVerifyCommand() (*verifyCommand, error) {
	panic(wire.Build(wireSet))
}

func newBatchCommand() (*batchCommand, error) {
	panic(wire.Build(wireSet))
}

func newReportCommand() (*reportCommand, error) {
	panic(wire.Build(wireSet))
}

func newShellCommand() (*shellCommand, error) {
	panic(wire.Build(wireSet))
}
