package app

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/novastudy/pkg/cryptox"
	"github.com/aussiebroadwan/novastudy/pkg/jwtx"
)

// LoadSigningSecret resolves the HMAC secret shared by the signer and
// verifier.
//
// AUTH_JWT_SECRET wins when set. Otherwise the secret lives in SecretFile,
// which is generated on first start so tokens survive restarts.
func LoadSigningSecret(cfg Config, logger *slog.Logger) ([]byte, error) {
	if cfg.JWTSecret != "" {
		secret, err := decodeSecret(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("decode AUTH_JWT_SECRET: %w", err)
		}
		logger.Info("jwt secret loaded from environment")
		return secret, nil
	}

	encoded, err := cryptox.LoadOrGenerateKeyFile(cfg.SecretFile, cryptox.TokenSize512)
	if err != nil {
		return nil, fmt.Errorf("load secret file: %w", err)
	}
	secret, err := decodeSecret(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", cfg.SecretFile, err)
	}
	logger.Info("jwt secret loaded from file", "path", cfg.SecretFile)
	return secret, nil
}

// decodeSecret accepts standard or URL-safe base64, padded or not.
func decodeSecret(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	var (
		secret []byte
		err    error
	)
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if secret, err = enc.DecodeString(s); err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	if len(secret) < jwtx.MinSecretSize {
		return nil, jwtx.ErrWeakSecret
	}
	return secret, nil
}
