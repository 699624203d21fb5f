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

package drafts

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/preiswacht/internal/log"
	"github.com/lukasdietrich/preiswacht/internal/storage"
)

func init() {
	viper.SetDefault("drafts.templates.filename", "data/templates.json")
}

// Template is a subject and body with {placeholder} markers.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DefaultTemplate is used when no template file exists or a requested key
// is not defined.
var DefaultTemplate = Template{
	Subject: "Preisliste {month} {year} - {company_name}",
	Body: "Sehr geehrte Damen und Herren,\n" +
		"\n" +
		"anbei erhalten Sie unsere aktuelle Preisliste für {month} {year}.\n" +
		"\n" +
		"Mit freundlichen Grüßen\n" +
		"{sender_name}",
}

// templateDocument is the on-disk layout of the template collection.
type templateDocument struct {
	Version   string              `json:"version"`
	Templates map[string]Template `json:"templates"`
}

// TemplateStore holds the named draft templates loaded from disk.
type TemplateStore struct {
	templates map[string]Template
}

// NewTemplateStore loads the template document using configuration from
// viper. A missing file is not an error, the built-in default is used
// instead.
//
// `drafts.templates.filename` is the filename of the template document.
func NewTemplateStore(fs afero.Fs) (*TemplateStore, error) {
	filename := viper.GetString("drafts.templates.filename")

	content, err := afero.ReadFile(fs, filename)
	if err != nil {
		if storage.IsNotExist(err) {
			log.Debug().
				Str("filename", filename).
				Msg("no template document, using built-in default")

			return &TemplateStore{}, nil
		}

		return nil, err
	}

	var doc templateDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("drafts: malformed template document %q: %w",
			filename, err)
	}

	return &TemplateStore{templates: doc.Templates}, nil
}

// Lookup returns the template for key, falling back to the "default" entry
// and finally the built-in default.
func (t *TemplateStore) Lookup(key string) Template {
	if template, ok := t.templates[key]; ok {
		return template
	}

	if key != "" && key != "default" {
		log.Warn().
			Str("template", key).
			Msg("unknown template, falling back to default")
	}

	if template, ok := t.templates["default"]; ok {
		return template
	}

	return DefaultTemplate
}
