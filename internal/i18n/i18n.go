package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jeandeaual/go-locale"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init loads every locales/*.json message file from fsys and selects lang
func Init(fsys fs.FS, lang string) error {
	b := i18n.NewBundle(language.AmericanEnglish)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	files, err := fs.Glob(fsys, "locales/*.json")
	if err != nil {
		return err
	}
	for _, f := range files {
		if _, err := b.LoadMessageFileFS(fsys, f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang)
	return nil
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]interface{}, pluralCount ...int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		return messageID
	}

	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := l.Localize(config)
	if err != nil {
		// 번역 실패 시 ID 그대로 반환
		return messageID
	}
	return msg
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	mu.Lock()
	defer mu.Unlock()
	if bundle != nil {
		localizer = i18n.NewLocalizer(bundle, lang)
	}
}

// Resolve maps a configured locale to a language tag, detecting the system locale for "auto"
func Resolve(configured string) string {
	if configured != "" && configured != "auto" {
		return configured
	}
	userLocale, err := locale.GetLocale()
	if err != nil || userLocale == "" {
		return "en-US"
	}
	return userLocale
}
