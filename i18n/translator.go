// Package i18n holds the user-facing strings of slidedeck in English and
// Simplified Chinese, including the titles and placeholders put on new
// slides.
package i18n

import (
	"fmt"
	"strings"
	"sync"

	"slidedeck/config"
	"slidedeck/model"
)

// Language is a supported display language, named as it appears in the
// config file.
type Language string

const (
	English Language = "English"
	Chinese Language = "简体中文"
)

var tables = map[Language]map[string]string{
	English: englishTranslations,
	Chinese: chineseTranslations,
}

// Languages lists the supported languages.
func Languages() []Language {
	return []Language{English, Chinese}
}

// ParseLanguage accepts the config names and the usual short codes. Anything
// else is English.
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "简体中文", "zh", "zh-cn", "zh_cn", "chinese":
		return Chinese
	default:
		return English
	}
}

// Translator looks strings up in one language. Keys missing from it fall
// back to English, then to the key itself.
type Translator struct {
	mu       sync.RWMutex
	language Language
}

// NewTranslator returns a translator for lang.
func NewTranslator(lang Language) *Translator {
	return &Translator{language: lang}
}

var (
	defaultTranslator *Translator
	once              sync.Once
)

// GetTranslator returns the process-wide translator.
func GetTranslator() *Translator {
	once.Do(func() {
		defaultTranslator = NewTranslator(English)
	})
	return defaultTranslator
}

func (t *Translator) SetLanguage(lang Language) {
	t.mu.Lock()
	t.language = lang
	t.mu.Unlock()
}

func (t *Translator) GetLanguage() Language {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.language
}

// T translates key, formatting params into it when given.
func (t *Translator) T(key string, params ...interface{}) string {
	text, ok := tables[t.GetLanguage()][key]
	if !ok {
		if text, ok = englishTranslations[key]; !ok {
			return key
		}
	}
	if len(params) > 0 {
		return fmt.Sprintf(text, params...)
	}
	return text
}

// SlideDefaults returns the strings placed on new, duplicated and imported
// slides.
func (t *Translator) SlideDefaults() model.Defaults {
	return model.Defaults{
		TitleFormat:        t.T("slide.title_format"),
		TitlePlaceholder:   t.T("slide.title_placeholder"),
		ContentPlaceholder: t.T("slide.content_placeholder"),
		CopySuffix:         t.T("slide.copy_suffix"),
		ImportedTitle:      t.T("slide.imported_title"),
		ImportedContent:    t.T("slide.imported_content"),
	}
}

func T(key string, params ...interface{}) string {
	return GetTranslator().T(key, params...)
}

func SetLanguage(lang Language) {
	GetTranslator().SetLanguage(lang)
}

func GetLanguage() Language {
	return GetTranslator().GetLanguage()
}

// GetLanguageString returns the current language as written in config.
func GetLanguageString() string {
	return string(GetLanguage())
}

// SlideDefaults returns the slide strings in the current language.
func SlideDefaults() model.Defaults {
	return GetTranslator().SlideDefaults()
}

// SyncLanguageFromConfig switches the process-wide language to the one in
// cfg. It runs at startup and whenever the config is saved.
func SyncLanguageFromConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	SetLanguage(ParseLanguage(cfg.Language))
}
