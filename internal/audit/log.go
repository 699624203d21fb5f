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

package audit

import (
	"encoding/json"
	"os/user"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/preiswacht/internal/log"
	"github.com/lukasdietrich/preiswacht/internal/storage"
)

const documentVersion = "2.0.0"

func init() {
	viper.SetDefault("storage.audit.filename", "logs/audit.json")
	viper.SetDefault("storage.audit.retentiondays", 365)
}

// DefaultRetention returns the configured retention horizon for Prune.
//
// `storage.audit.retentiondays` is the retention in days.
func DefaultRetention() time.Duration {
	return time.Duration(viper.GetInt("storage.audit.retentiondays")) * 24 * time.Hour
}

// document is the on-disk layout of the audit trail.
type document struct {
	Version     string  `json:"version"`
	TotalEvents int     `json:"total_events"`
	AuditEvents []Event `json:"audit_events"`
}

// Log is the append-only audit trail. Events are never mutated or removed
// individually; Prune is the only destructive operation and must be invoked
// explicitly. All mutations are serialized through a single writer lock.
type Log struct {
	fs       afero.Fs
	filename string
	user     string
	session  string

	mu     sync.Mutex
	events []Event
	dirty  bool
}

// NewLog creates the audit log using configuration from viper and loads any
// existing trail from disk. A missing file is not an error, an unreadable one
// is.
//
// `storage.audit.filename` is the filename of the audit document.
func NewLog(fs afero.Fs) (*Log, error) {
	l := &Log{
		fs:       fs,
		filename: viper.GetString("storage.audit.filename"),
		user:     currentUser(),
		session:  uuid.New().String(),
	}

	if err := l.loadExisting(); err != nil {
		return nil, err
	}

	return l, nil
}

func currentUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "unknown"
	}

	return u.Username
}

func (l *Log) loadExisting() error {
	content, err := afero.ReadFile(l.fs, l.filename)
	if err != nil {
		if storage.IsNotExist(err) {
			return nil
		}

		return err
	}

	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		return err
	}

	l.events = doc.AuditEvents

	log.Debug().
		Str("filename", l.filename).
		Int("events", len(l.events)).
		Msg("audit trail loaded")

	return nil
}

// Append adds an event to the trail. Error and critical events are persisted
// immediately to minimize the loss window on a crash; lower severities are
// buffered until the next persisting append or an explicit Flush. A failing
// persist never propagates to the caller: the audit subsystem must not crash
// the workflow it observes. The failed write is kept in memory and retried by
// a later Flush.
func (l *Log) Append(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if event.User == "" {
		event.User = l.user
	}

	event.SessionID = l.session
	event.ID = event.fingerprint()

	l.events = append(l.events, event)
	l.dirty = true

	l.logEvent(&event)

	if event.Severity >= SeverityError {
		l.persist()
	}
}

// logEvent mirrors the audit entry into the low-level application log.
func (l *Log) logEvent(event *Event) {
	entry := log.Info()

	switch event.Severity {
	case SeverityWarning:
		entry = log.Warn()
	case SeverityError, SeverityCritical:
		entry = log.Error()
	}

	entry.
		Str("event", event.ID).
		Str("type", string(event.Type)).
		Str("user", event.User).
		Msg(event.Action)
}

// Flush persists all buffered events, retrying previously failed writes.
func (l *Log) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.dirty {
		return nil
	}

	return l.persist()
}

// persist writes the trail while holding the lock. Failures are swallowed
// after logging but leave the dirty flag set.
func (l *Log) persist() error {
	doc := document{
		Version:     documentVersion,
		TotalEvents: len(l.events),
		AuditEvents: l.events,
	}

	content, err := json.MarshalIndent(&doc, "", "  ")
	if err == nil {
		err = storage.WriteFileAtomic(l.fs, l.filename, content)
	}

	if err != nil {
		log.Error().
			Str("filename", l.filename).
			Err(err).
			Msg("could not persist audit trail")

		return err
	}

	l.dirty = false
	return nil
}

// Prune permanently drops events older than the retention horizon and
// persists the remaining trail. It returns the number of dropped events.
func (l *Log) Prune(retention time.Duration) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	horizon := time.Now().Add(-retention)
	kept := l.events[:0]

	for _, event := range l.events {
		if !event.Timestamp.Before(horizon) {
			kept = append(kept, event)
		}
	}

	dropped := len(l.events) - len(kept)
	l.events = kept

	if dropped > 0 {
		log.Info().
			Int("dropped", dropped).
			Msg("audit trail pruned")

		l.dirty = true
		if err := l.persist(); err != nil {
			return dropped, err
		}
	}

	return dropped, nil
}

// Session returns the per-process session id stamped onto appended events.
func (l *Log) Session() string {
	return l.session
}
