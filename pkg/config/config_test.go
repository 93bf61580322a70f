package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/logshift/pkg/rewrite"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, filepath.Clean("app/src/main/java"), cfg.Root)
	assert.Equal(t, []string{".kt"}, cfg.Extensions)
	assert.Equal(t, rewrite.DefaultMigration(), cfg.Migration)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, "logshift.yaml", `
root: src/main/kotlin
extensions:
  - .kt
  - kts
ignore_patterns:
  - "**/build/**"
migration:
  from_facility: Log
  to_facility: Timber
  levels: [d, e]
  wrapped_levels: [e]
  from_import: android.util.Log
  to_import: timber.log.Timber
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean("src/main/kotlin"), cfg.Root)
	assert.Equal(t, []string{".kt", ".kts"}, cfg.Extensions)
	assert.Equal(t, []string{"**/build/**"}, cfg.IgnorePatterns)
	assert.Equal(t, "Timber", cfg.Migration.ToFacility)
	assert.Equal(t, "timber.log.Timber", cfg.Migration.ToImport)
}

func TestLoad_YAMLDefaultsApplied(t *testing.T) {
	path := writeConfig(t, "logshift.yaml", `
root: src
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Root)
	assert.Equal(t, []string{".kt"}, cfg.Extensions)
	assert.Equal(t, rewrite.DefaultMigration(), cfg.Migration)
}

func TestLoad_YAMLUnknownField(t *testing.T) {
	path := writeConfig(t, "logshift.yaml", `
root: src
destination: elsewhere
`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing YAML")
}

func TestLoad_HCL(t *testing.T) {
	path := writeConfig(t, "logshift.hcl", `
root       = "src/main/kotlin"
extensions = [".kt"]

migration {
  from_facility  = "Log"
  to_facility    = "Logger"
  levels         = ["d", "e", "w", "i", "v"]
  wrapped_levels = ["e", "w"]
  from_import    = "android.util.Log"
  to_import      = "com.quick.browser.util.Logger"
}
`)

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean("src/main/kotlin"), cfg.Root)
	assert.Equal(t, rewrite.DefaultMigration(), cfg.Migration)
}

func TestLoad_HCLInvalid(t *testing.T) {
	path := writeConfig(t, "logshift.hcl", `root = `)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing HCL")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_NoParser(t *testing.T) {
	path := writeConfig(t, "logshift.toml", `root = "src"`)

	_, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser found")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantError string
	}{
		{
			name: "extension_without_dot_normalized",
			cfg:  Config{Extensions: []string{"kt", ".java"}},
		},
		{
			name:      "empty_extension",
			cfg:       Config{Extensions: []string{""}},
			wantError: "extensions[0] is empty",
		},
		{
			name: "invalid_migration",
			cfg: Config{
				Migration: rewrite.Migration{FromFacility: "Log", ToFacility: "Log", Levels: []string{"d"}},
			},
			wantError: "validating migration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, []string{".kt", ".java"}, tt.cfg.Extensions)
		})
	}
}

func TestConfig_String(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Contains(t, cfg.String(), "Log -> Logger")
	assert.Contains(t, cfg.String(), ".kt")
}

func TestGetParser(t *testing.T) {
	assert.IsType(t, &YAMLParser{}, GetParser("a.yaml"))
	assert.IsType(t, &YAMLParser{}, GetParser("a.yml"))
	assert.IsType(t, &HCLParser{}, GetParser("a.hcl"))
	assert.Nil(t, GetParser("a.json"))
}
