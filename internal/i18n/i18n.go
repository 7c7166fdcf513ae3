// Package i18n looks up display strings for the user's language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
}

var matcher = language.NewMatcher(supported)

// catalogs holds translations keyed by the English source string.
// English needs no entries.
var catalogs = map[language.Tag]map[string]string{
	language.German: {
		"Organization URL":           "Organisations-URL",
		"Connect":                    "Verbinden",
		"Connecting…":                "Verbinde…",
		"OR":                         "ODER",
		"Create a new organization":  "Neue Organisation erstellen",
		"Network and Proxy Settings": "Netzwerk- und Proxy-Einstellungen",
		"Unknown error":              "Unbekannter Fehler",
		"OK":                         "OK",
		"Error":                      "Fehler",
		"Known servers":              "Bekannte Server",
		"Tab: next  Enter: activate": "Tab: weiter  Enter: auswählen",
		"Esc: back":                  "Esc: zurück",
	},
	language.French: {
		"Organization URL":           "URL de l'organisation",
		"Connect":                    "Se connecter",
		"Connecting…":                "Connexion…",
		"OR":                         "OU",
		"Create a new organization":  "Créer une nouvelle organisation",
		"Network and Proxy Settings": "Paramètres réseau et proxy",
		"Unknown error":              "Erreur inconnue",
		"OK":                         "OK",
		"Error":                      "Erreur",
		"Known servers":              "Serveurs connus",
		"Tab: next  Enter: activate": "Tab : suivant  Entrée : activer",
		"Esc: back":                  "Échap : retour",
	},
}

// Catalog translates keys for one language.
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

// New returns the catalog best matching locale, which may be a BCP 47 tag
// ("de-CH") or a POSIX locale ("de_DE.UTF-8"). Unknown locales fall back to English.
func New(locale string) *Catalog {
	tag, _, _ := matcher.Match(parseLocale(locale))
	base, _ := tag.Base()
	for _, t := range supported {
		if b, _ := t.Base(); b == base {
			tag = t
			break
		}
	}
	return &Catalog{tag: tag, messages: catalogs[tag]}
}

// Tag returns the matched language.
func (c *Catalog) Tag() language.Tag { return c.tag }

// Translate returns the display string for key, or key itself when no
// translation exists.
func (c *Catalog) Translate(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	return key
}

func parseLocale(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
