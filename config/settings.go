package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

type Language string

const (
	LanguageEnglishUS Language = "en-US"
	LanguageIndonesia Language = "id-ID"
)

var AllLanguage = []Language{
	LanguageEnglishUS,
	LanguageIndonesia,
}

func (e Language) IsValid() bool {
	switch e {
	case LanguageEnglishUS, LanguageIndonesia:
		return true
	}
	return false
}

func (e Language) String() string {
	return string(e)
}

const (
	settingsKeyLanguageUsed = "language_used"
	defaultSettingsFile     = "settings.toml"
)

// SettingsRepository persists user preferences in a TOML file.
type SettingsRepository struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewSettingsRepository reads path (or SETTINGS_FILE, or ./settings.toml).
// A missing file is not an error; defaults apply until the first save.
func NewSettingsRepository(path string) (*SettingsRepository, error) {
	if path == "" {
		path = os.Getenv("SETTINGS_FILE")
	}
	if path == "" {
		path = defaultSettingsFile
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetDefault(settingsKeyLanguageUsed, string(LanguageEnglishUS))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}
	return &SettingsRepository{v: v, path: path}, nil
}

// LanguageUsed falls back to English when the stored value is unknown.
func (r *SettingsRepository) LanguageUsed() Language {
	r.mu.Lock()
	defer r.mu.Unlock()
	lang := Language(r.v.GetString(settingsKeyLanguageUsed))
	if !lang.IsValid() {
		return LanguageEnglishUS
	}
	return lang
}

func (r *SettingsRepository) SaveLanguageUsed(lang Language) error {
	if !lang.IsValid() {
		return fmt.Errorf("%s is not a valid Language", lang)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.v.Set(settingsKeyLanguageUsed, string(lang))
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return r.v.WriteConfigAs(r.path)
}
