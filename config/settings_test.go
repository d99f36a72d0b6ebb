package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsRepository_DefaultsWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")

	repo, err := config.NewSettingsRepository(path)
	require.NoError(t, err)
	assert.Equal(t, config.LanguageEnglishUS, repo.LanguageUsed())
}

func TestSettingsRepository_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	repo, err := config.NewSettingsRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveLanguageUsed(config.LanguageIndonesia))
	assert.Equal(t, config.LanguageIndonesia, repo.LanguageUsed())

	reloaded, err := config.NewSettingsRepository(path)
	require.NoError(t, err)
	assert.Equal(t, config.LanguageIndonesia, reloaded.LanguageUsed())
}

func TestSettingsRepository_RejectsUnknownLanguage(t *testing.T) {
	repo, err := config.NewSettingsRepository(filepath.Join(t.TempDir(), "settings.toml"))
	require.NoError(t, err)

	assert.Error(t, repo.SaveLanguageUsed(config.Language("xx-XX")))
	assert.Equal(t, config.LanguageEnglishUS, repo.LanguageUsed())
}

func TestSettingsRepository_UnknownStoredValueFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("language_used = \"fr-FR\"\n"), 0o644))

	repo, err := config.NewSettingsRepository(path)
	require.NoError(t, err)
	assert.Equal(t, config.LanguageEnglishUS, repo.LanguageUsed())
}
