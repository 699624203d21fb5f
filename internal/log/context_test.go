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

package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestLogContextTestSuite(t *testing.T) {
	suite.Run(t, new(LogContextTestSuite))
}

type LogContextTestSuite struct {
	baseLogTestSuite
}

func (s *LogContextTestSuite) TestAllFields() {
	ctx := context.TODO()
	ctx = WithOrigin(ctx, "batch")
	ctx = WithUser(ctx, "jane")
	ctx = WithCustomer(ctx, "AB12CD34")

	InfoContext(ctx).Msg("TestAllFields")
	s.assertMsg("{\"level\":\"info\"," +
		"\"origin\":\"batch\"," +
		"\"user\":\"jane\"," +
		"\"customer\":\"AB12CD34\"," +
		"\"message\":\"TestAllFields\"}\n")
}

func (s *LogContextTestSuite) TestNoFields() {
	InfoContext(context.TODO()).Msg("TestNoFields")
	s.assertMsg("{\"level\":\"info\",\"message\":\"TestNoFields\"}\n")
}
