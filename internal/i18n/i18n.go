// Package i18n holds the user-facing message tables and language negotiation.
// Collaborator failures are converted into these messages at the boundary,
// in the language the client asked for.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// Idioma is a supported UI language.
type Idioma string

const (
	ES Idioma = "es"
	PT Idioma = "pt"
	EN Idioma = "en"
)

// Default is used when nothing in the request matches.
var Default = ES

var soportados = []language.Tag{language.Spanish, language.Portuguese, language.English}

var matcher = language.NewMatcher(soportados)

// Parse returns the Idioma for a short code, falling back to Default.
func Parse(code string) Idioma {
	switch Idioma(code) {
	case ES, PT, EN:
		return Idioma(code)
	}
	return Default
}

// Detect negotiates an Idioma from an Accept-Language style header value.
func Detect(header string) Idioma {
	if header == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	switch idx {
	case 0:
		return ES
	case 1:
		return PT
	case 2:
		return EN
	}
	return Default
}

// T translates a message key. Unknown languages fall back to Default and
// unknown keys are returned unchanged. Args are applied with fmt.Sprintf.
func T(lang Idioma, key string, args ...any) string {
	msg, ok := mensajes[lang][key]
	if !ok {
		msg, ok = mensajes[Default][key]
	}
	if !ok {
		msg = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
