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
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// NewFilesystem creates the filesystem used for all persistent documents.
func NewFilesystem() afero.Fs {
	return afero.NewOsFs()
}

// WriteFileAtomic writes data to a temporary file next to filename and renames
// it into place, so readers never observe a partially written document.
func WriteFileAtomic(fs afero.Fs, filename string, data []byte) error {
	folder := filepath.Dir(filename)

	if err := fs.MkdirAll(folder, 0700); err != nil {
		return err
	}

	tmp := filename + ".tmp"

	if err := afero.WriteFile(fs, tmp, data, 0600); err != nil {
		return err
	}

	if err := fs.Rename(tmp, filename); err != nil {
		fs.Remove(tmp)
		return err
	}

	return nil
}

// Exists reports whether filename exists and is a regular, non-empty file.
func Exists(fs afero.Fs, filename string) (bool, int64) {
	info, err := fs.Stat(filename)
	if err != nil || info.IsDir() {
		return false, 0
	}

	return true, info.Size()
}

// IsNotExist wraps os.IsNotExist for symmetry with the afero backed helpers.
func IsNotExist(err error) bool {
	return os.IsNotExist(err)
}
