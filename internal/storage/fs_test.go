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

package storage

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilesystem(t *testing.T) {
	fs := NewFilesystem()

	assert.NotNil(t, fs)
	assert.Implements(t, (*afero.Fs)(nil), fs)
}

func TestWriteFileAtomic(t *testing.T) {
	fs := afero.NewMemMapFs()

	require.NoError(t, WriteFileAtomic(fs, "data/doc.json", []byte("first")))
	require.NoError(t, WriteFileAtomic(fs, "data/doc.json", []byte("second")))

	content, err := afero.ReadFile(fs, "data/doc.json")
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// no temporary file may be left behind
	ok, _ := Exists(fs, "data/doc.json.tmp")
	assert.False(t, ok)
}

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.pdf", []byte("%PDF"), 0600))
	require.NoError(t, afero.WriteFile(fs, "empty.pdf", nil, 0600))

	ok, size := Exists(fs, "a.pdf")
	assert.True(t, ok)
	assert.EqualValues(t, 4, size)

	ok, size = Exists(fs, "empty.pdf")
	assert.True(t, ok)
	assert.EqualValues(t, 0, size)

	ok, _ = Exists(fs, "missing.pdf")
	assert.False(t, ok)
}
