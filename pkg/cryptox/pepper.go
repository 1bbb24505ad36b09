package cryptox

import (
	"sync"
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper loads the pepper from file, generating and persisting a fresh
// one on first start. Until it is called the pepper is empty.
func LoadPepper(file string) error {
	p, err := LoadOrGenerateKeyFile(file, keyLength)
	if err != nil {
		return err
	}
	SetPepper(p)
	return nil
}

// SetPepper replaces the process-wide pepper.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// Pepper returns the process-wide pepper.
func Pepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}
