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

	"github.com/rs/zerolog"
)

type fieldOrigin struct{}
type fieldUser struct{}
type fieldCustomer struct{}

// WithOrigin adds the origin of processing to the context.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, fieldOrigin{}, origin)
}

// WithUser adds the acting user to the context.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, fieldUser{}, user)
}

// WithCustomer adds the customer identifier to the context.
func WithCustomer(ctx context.Context, customer string) context.Context {
	return context.WithValue(ctx, fieldCustomer{}, customer)
}

// appendContextFields adds defined fields in the context to the log event.
func appendContextFields(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if origin, ok := ctx.Value(fieldOrigin{}).(string); ok {
		event.Str("origin", origin)
	}

	if user, ok := ctx.Value(fieldUser{}).(string); ok {
		event.Str("user", user)
	}

	if customer, ok := ctx.Value(fieldCustomer{}).(string); ok {
		event.Str("customer", customer)
	}

	return event
}
