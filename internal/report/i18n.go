package report

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Language represents a supported localization code.
type Language string

const (
	// LangEnglish renders the report in English.
	LangEnglish Language = "en"
	// LangTurkish renders the report in Turkish.
	LangTurkish Language = "tr"
)

// ErrUnsupportedLanguage is returned when an unknown language code is requested.
var ErrUnsupportedLanguage = errors.New("report: unsupported language")

//go:embed locales/*.json
var localeFS embed.FS

// locales maps each embedded language to its string table. Languages
// are discovered from the locale files, so adding a translation means
// dropping a JSON file next to the existing ones.
var locales = loadLocales()

func loadLocales() map[Language]map[string]string {
	files, err := fs.Glob(localeFS, "locales/*.json")
	if err != nil || len(files) == 0 {
		panic(fmt.Sprintf("report: list locales: %v", err))
	}
	out := make(map[Language]map[string]string, len(files))
	for _, file := range files {
		lang := Language(strings.TrimSuffix(path.Base(file), ".json"))
		data, err := localeFS.ReadFile(file)
		if err != nil {
			panic(fmt.Sprintf("report: load locale %s: %v", lang, err))
		}
		var parsed map[string]string
		if err := json.Unmarshal(data, &parsed); err != nil {
			panic(fmt.Sprintf("report: parse locale %s: %v", lang, err))
		}
		out[lang] = parsed
	}
	if _, ok := out[LangEnglish]; !ok {
		panic("report: english locale missing")
	}
	return out
}

// Translator resolves localized strings for a specific language.
type Translator struct {
	lang Language
	data map[string]string
}

// NewTranslator builds a translator for the requested language, falling back to English.
func NewTranslator(lang Language) Translator {
	data, ok := locales[lang]
	if !ok {
		lang = LangEnglish
		data = locales[LangEnglish]
	}
	return Translator{lang: lang, data: data}
}

// Lang returns the active language.
func (t Translator) Lang() Language {
	return t.lang
}

// T returns the localized string for the provided key. Keys missing
// from a translation fall back to English, then to the key itself.
func (t Translator) T(key string) string {
	if val, ok := t.data[key]; ok {
		return val
	}
	if t.lang != LangEnglish {
		if val, ok := locales[LangEnglish][key]; ok {
			return val
		}
	}
	return key
}

// Format returns the localized string for the key formatted with the given arguments.
func (t Translator) Format(key string, args ...interface{}) string {
	return fmt.Sprintf(t.T(key), args...)
}

// ParseLanguage converts a flag value into a supported Language.
func ParseLanguage(lang string) (Language, error) {
	code := Language(strings.ToLower(strings.TrimSpace(lang)))
	switch code {
	case "":
		return LangEnglish, nil
	case "en-us", "en-gb", "english":
		return LangEnglish, nil
	case "tr-tr", "turkish", "türkçe", "turkce":
		return LangTurkish, nil
	}
	if _, ok := locales[code]; ok {
		return code, nil
	}
	return LangEnglish, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
}
