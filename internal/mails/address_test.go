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

package mails

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAddress(t *testing.T) {
	for raw, expectedErr := range map[string]error{
		"":            ErrInvalidAddressFormat,
		"no-at-sign":  ErrInvalidAddressFormat,
		"a@acme.com":  nil,
		"a@b@acme.de": nil,
		strings.Repeat("x", 65) + "@acme.com":             ErrPathTooLong,
		"a@" + strings.Repeat("x", 250) + ".lorem.aaaaaa": ErrPathTooLong,
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseAddress(raw)
			assert.Equal(t, expectedErr, err)
		})
	}
}

func TestAddressParts(t *testing.T) {
	addr, err := ParseAddress("alice@Acme.COM")
	assert.NoError(t, err)

	assert.Equal(t, "alice", addr.LocalPart())
	assert.Equal(t, "Acme.COM", addr.Domain())
	assert.Equal(t, "acme.com", addr.NormalizedDomain())
	assert.Equal(t, "alice@Acme.COM", addr.String())
}

func TestSameDomain(t *testing.T) {
	for _, testCase := range []struct {
		a, b     string
		expected bool
	}{
		{"acme.com", "ACME.com", true},
		{"acme.com", "acme.de", false},
		{"xn--caf-dma.example", "café.example", true},
		{"münchen.example", "MÜNCHEN.example", true},
	} {
		t.Run(testCase.a+"="+testCase.b, func(t *testing.T) {
			assert.Equal(t, testCase.expected, SameDomain(testCase.a, testCase.b))
		})
	}
}
