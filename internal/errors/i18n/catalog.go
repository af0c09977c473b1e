// Package i18n resolves user-facing messages for engine error codes.
//
// Catalogs are keyed by error code strings. Locale selection uses
// golang.org/x/text language matching so that requests like "pt" or
// "en-GB" resolve to the nearest supported catalog.
package i18n

import (
	"strings"
	"text/template"

	"golang.org/x/text/language"
)

// Code mirrors the codes defined in internal/errors/codes.go. They are
// duplicated as strings to avoid an import cycle.
type Code = string

// Catalog stores the localized messages for one locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

// Locale returns the catalog's BCP 47 locale tag.
func (c *Catalog) Locale() string { return c.locale }

var supported = []language.Tag{
	language.AmericanEnglish,     // en-US: canonical source locale
	language.BrazilianPortuguese, // pt-BR
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]*Catalog{
	language.AmericanEnglish:     enUSCatalog,
	language.BrazilianPortuguese: ptBRCatalog,
}

// Resolve returns the best catalog for the requested locale, falling back
// to en-US for unknown or empty locales.
func Resolve(locale string) *Catalog {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return enUSCatalog
	}
	_, index, _ := matcher.Match(tag)
	if catalog, ok := catalogs[supported[index]]; ok {
		return catalog
	}
	return enUSCatalog
}

// Message renders the localized message for code, substituting data fields
// into {{.Name}} placeholders. Unknown codes fall back to the code string.
func (c *Catalog) Message(code Code, data map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		if fallback, ok := enUSCatalog.messages[code]; ok {
			raw = fallback
		} else {
			return code
		}
	}
	if len(data) == 0 || !strings.Contains(raw, "{{") {
		return raw
	}
	tmpl, err := template.New(code).Parse(raw)
	if err != nil {
		return raw
	}
	var builder strings.Builder
	if err := tmpl.Execute(&builder, data); err != nil {
		return raw
	}
	return builder.String()
}
