// Package i18n holds the compiled-in string tables used for invoice
// rendering. German is the default language; unknown codes fall back to
// it instead of failing.
package i18n

import "go.uber.org/zap"

type Language int

const (
	German Language = iota
	English
)

// MissingKey is rendered in place of a label whose translation is
// absent, so a broken key is visible on the document instead of
// aborting the render.
const MissingKey = "TRANSLATION_MISSING"

// Parse maps a short language code onto a Language. Only "en" selects
// English; everything else, including the empty string, is German.
func Parse(code string) Language {
	if code == "en" {
		return English
	}
	return German
}

func (l Language) String() string {
	if l == English {
		return "en"
	}
	return "de"
}

var warnLog = zap.NewNop().Sugar()

// SetLogger routes missing-translation warnings to the given logger.
func SetLogger(lg *zap.SugaredLogger) {
	if lg != nil {
		warnLog = lg
	}
}

// Translate resolves a label for the given language and category.
// Missing keys return MissingKey and log a warning.
func Translate(lang Language, category, key string) string {
	table, ok := tables[lang][category]
	if !ok {
		// Unknown category falls back to the language's invoice table,
		// the only category the system ships.
		table = tables[lang]["invoice"]
	}
	if v, ok := table[key]; ok {
		return v
	}
	warnLog.Warnw("translation missing", "language", lang.String(), "category", category, "key", key)
	return MissingKey
}
