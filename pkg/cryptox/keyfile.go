package cryptox

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadOrGenerateKeyFile returns the base64url key stored in file. If the file
// does not exist a key of size random bytes is generated and written with
// 0600 permissions so it survives restarts.
func LoadOrGenerateKeyFile(file string, size int) (string, error) {
	file = filepath.Clean(file)
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return "", err
	}

	b, err := os.ReadFile(file)
	if err == nil {
		key := strings.TrimSpace(string(b))
		if key == "" {
			return "", errors.New("cryptox: key file is empty: " + file)
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	key, err := GenerateToken(size)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(file, []byte(key), 0600); err != nil {
		return "", err
	}
	return key, nil
}
