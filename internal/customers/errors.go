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

package customers

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is used for lookups against non-existent customer records.
	ErrNotFound = errors.New("customers: not found")

	// ErrInvalidInput is used for malformed caller input, e.g. an email
	// without an "@" sign or a record missing required fields.
	ErrInvalidInput = errors.New("customers: invalid input")
)

// StorageError wraps failures of the backing customer database document.
// It is distinct from ErrNotFound on purpose: a caller must be able to block
// all sends on an unreadable database instead of treating it like an unknown
// customer.
type StorageError struct {
	Op       string
	Filename string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("customers: %s %q: %v", e.Op, e.Filename, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsErrNotFound checks if an error is caused by a missing customer record.
func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsErrInvalidInput checks if an error is caused by malformed caller input.
func IsErrInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsErrStorage checks if an error is caused by the backing document.
func IsErrStorage(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
