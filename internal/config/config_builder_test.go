package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// minimalConfig holds the only settings without defaults.
func minimalConfig() *StructuredConfig {
	return &StructuredConfig{
		App:     App{TokenSignKey: "sign-key"},
		Storage: Storage{DB: DB{DSN: "postgres://localhost/portal"}},
	}
}

func newTestBuilder() *configBuilder {
	b := newConfigBuilder()
	b.args = nil
	return b
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no configs fails
// validation because the token sign key is missing.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newTestBuilder().build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidAppConfigs)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newTestBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_DefaultsFillGaps verifies that defaults only fill fields left
// empty by earlier sources.
func TestBuild_DefaultsFillGaps(t *testing.T) {
	b := newTestBuilder()
	override := minimalConfig()
	override.Security.Lockout.MaxAttempts = 3
	b.configs = append(b.configs, override)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Security.Lockout.MaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Security.Lockout.Window)
	assert.Equal(t, 30*time.Minute, cfg.Security.Lockout.Duration)
	assert.Equal(t, 2*time.Hour, cfg.App.TokenDuration)
	assert.True(t, cfg.App.AdminSelfRegistrationAllowed())
	assert.Equal(t, DriverPostgres, cfg.Storage.DB.Driver)
	assert.Equal(t, AvatarBackendLocal, cfg.Storage.Avatars.Backend)
	assert.Equal(t, int64(2*1024*1024), cfg.Storage.Avatars.MaxBytes)
	assert.Equal(t, defaultCookieName, cfg.Server.CookieName)
	assert.Equal(t, defaultTurnstileVerifyURL, cfg.Security.Captcha.TurnstileVerifyURL)
	assert.False(t, cfg.Security.Captcha.TurnstileActive())
}

// TestBuild_ExplicitFalseSurvivesDefaults verifies that a configured "false"
// for admin self-registration is not overwritten by the default "true".
func TestBuild_ExplicitFalseSurvivesDefaults(t *testing.T) {
	disabled := false
	b := newTestBuilder()
	cfg := minimalConfig()
	cfg.App.AllowAdminSelfRegistration = &disabled
	b.configs = append(b.configs, cfg)
	b.withDefaults()

	got, err := b.build()
	require.NoError(t, err)
	assert.False(t, got.App.AdminSelfRegistrationAllowed())
}

// TestBuild_EarlierSourceWins verifies merge precedence.
func TestBuild_EarlierSourceWins(t *testing.T) {
	b := newTestBuilder()
	first := minimalConfig()
	first.App.Version = "1.0.0"
	b.configs = append(b.configs,
		first,
		&StructuredConfig{App: App{Version: "2.0.0", TokenIssuer: "issuer"}},
	)
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "issuer", cfg.App.TokenIssuer)
}

// TestBuild_ValidationFailures covers each invalid group.
func TestBuild_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *StructuredConfig)
		wantErr error
	}{
		{
			name:    "unknown driver",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.Driver = "mysql" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "missing dsn",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.DB.DSN = "" },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "s3 without bucket",
			mutate:  func(cfg *StructuredConfig) { cfg.Storage.Avatars.Backend = AvatarBackendS3 },
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name:    "negative lockout",
			mutate:  func(cfg *StructuredConfig) { cfg.Security.Lockout.MaxAttempts = -1 },
			wantErr: ErrInvalidSecurityConfigs,
		},
		{
			name:    "negative rate limit",
			mutate:  func(cfg *StructuredConfig) { cfg.Server.RateLimitPerMinute = -5 },
			wantErr: ErrInvalidServerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuilder()
			cfg := minimalConfig()
			tt.mutate(cfg)
			b.configs = append(b.configs, cfg)
			b.withDefaults()

			_, err := b.build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── withEnv ───────────────────────────────────────────────────────────────────

// TestWithEnv_ReturnsBuilder verifies the fluent interface.
func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newTestBuilder()
	assert.Same(t, b, b.withEnv())
}

// TestWithEnv_ReadsEnvVars verifies that environment variables are picked up.
func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_VERSION":      "env-version",
		"APP_TOKEN_ISSUER": "env-issuer",
	})

	b := newTestBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, "env-issuer", b.configs[0].App.TokenIssuer)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

// TestWithFlags_ParsesArgs verifies that builder args are parsed.
func TestWithFlags_ParsesArgs(t *testing.T) {
	b := newTestBuilder()
	b.args = []string{"-d", "portal.db", "-driver", "sqlite3"}

	assert.Same(t, b, b.withFlags())
	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "portal.db", b.configs[0].Storage.DB.DSN)
}

// TestWithFlags_SetsErrorOnBadFlag verifies that a parse failure is recorded.
func TestWithFlags_SetsErrorOnBadFlag(t *testing.T) {
	b := newTestBuilder()
	b.args = []string{"-a", "nonsense"}
	b.withFlags()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

// TestWithJSON_NoOp_WhenNoPathSet verifies that withJSON does nothing when
// no config has a JSONFilePath.
func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newTestBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithJSON_AppendsConfig_WhenValidFile verifies that a valid JSON file is
// parsed and appended.
func TestWithJSON_AppendsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.App.Version = "json-version"
	payload.App.TokenIssuer = "json-issuer"
	path := writeTempJSONConfig(t, payload)

	b := newTestBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-version", b.configs[1].App.Version)
	assert.Equal(t, "json-issuer", b.configs[1].App.TokenIssuer)
}

// TestWithJSON_SetsError_WhenFileNotFound verifies that a missing file path
// sets b.err.
func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newTestBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		JSONFilePath: "/nonexistent/config.json",
	})
	b.withJSON()

	assert.Error(t, b.err)
}

// TestWithJSON_UsesLastPath verifies that when multiple configs have a
// JSONFilePath, the last non-empty one wins.
func TestWithJSON_UsesLastPath(t *testing.T) {
	payload := StructuredJSONConfig{}
	payload.App.Version = "last-wins"
	path := writeTempJSONConfig(t, payload)

	b := newTestBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{JSONFilePath: "/nonexistent/first.json"},
		&StructuredConfig{JSONFilePath: path},
	)
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "last-wins", b.configs[2].App.Version)
}
