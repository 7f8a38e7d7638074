// Copyright (c) 2026 DerpFest Team
// DerpFest Customizations - attestation payload and settings tooling
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides the user-facing strings of the customizations
// screens and CLI. It uses the go-i18n library to load embedded YAML
// translation files; message IDs follow the resource names of the settings
// app (keybox_data_loaded, pif_data_summary_loaded, ...).
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files from the 'locales' directory
// into the application binary.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	current   string
	locales   []string
)

// Init initializes the bundle and sets up the localizer for lang. Unknown
// languages fall back to English.
func Init(lang string) {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	locales = locales[:0]
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			continue
		}
		locales = append(locales, strings.TrimSuffix(f.Name(), ".yaml"))
	}
	sort.Strings(locales)

	current = lang
	localizer = i18n.NewLocalizer(bundle, lang, language.English.String())
}

// T translates messageID. When args are given the translation is used as a
// fmt format string. A missing ID is returned unchanged.
func T(messageID string, args ...interface{}) string {
	if localizer == nil {
		Init("en")
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		msg = messageID
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// SetLang changes the active language of the localizer.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the language passed to the last Init.
func GetLang() string {
	if localizer == nil {
		Init("en")
	}
	return current
}

// AvailableLocales lists the embedded locale codes.
func AvailableLocales() []string {
	if localizer == nil {
		Init("en")
	}
	out := make([]string, len(locales))
	copy(out, locales)
	return out
}
