package app

import (
	"encoding/base64"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadSigningSecretFromEnv(t *testing.T) {
	raw := []byte(strings.Repeat("k", 40))

	for name, enc := range map[string]*base64.Encoding{
		"std":     base64.StdEncoding,
		"raw url": base64.RawURLEncoding,
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Config{JWTSecret: enc.EncodeToString(raw), SecretFile: filepath.Join(t.TempDir(), "unused")}
			secret, err := LoadSigningSecret(cfg, discardLogger())
			require.NoError(t, err)
			require.Equal(t, raw, secret)
			require.NoFileExists(t, cfg.SecretFile)
		})
	}
}

func TestLoadSigningSecretRejectsShortSecret(t *testing.T) {
	cfg := Config{JWTSecret: base64.StdEncoding.EncodeToString([]byte("short"))}
	_, err := LoadSigningSecret(cfg, discardLogger())
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestLoadSigningSecretRejectsGarbage(t *testing.T) {
	cfg := Config{JWTSecret: "not base64 at all!!"}
	_, err := LoadSigningSecret(cfg, discardLogger())
	require.Error(t, err)
}

func TestLoadSigningSecretGeneratesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "keys", "jwt_secret")
	cfg := Config{SecretFile: file}

	first, err := LoadSigningSecret(cfg, discardLogger())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(first), jwtx.MinSecretSize)

	info, err := os.Stat(file)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	second, err := LoadSigningSecret(cfg, discardLogger())
	require.NoError(t, err)
	require.Equal(t, first, second, "secret must survive restarts")
}
