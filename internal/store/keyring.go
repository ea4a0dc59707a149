package store

import (
	"errors"
	"log/slog"

	"github.com/tartampluch/weekgrid/internal/config"
	"github.com/zalando/go-keyring"
)

// Keyring persists preferences in the OS keyring under a fixed service
// name, matching how the rest of the application stores user secrets.
type Keyring struct {
	Service string
}

// NewKeyring returns a keyring-backed store using the application service.
func NewKeyring() *Keyring {
	return &Keyring{Service: config.KeyringService}
}

func (k *Keyring) Get(key string) (string, error) {
	v, err := keyring.Get(k.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		slog.Warn(config.MsgStoreReadFail,
			config.LogKeyComponent, config.CompStore,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", err
	}
	return v, nil
}

func (k *Keyring) Set(key, value string) error {
	return keyring.Set(k.Service, key, value)
}

func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(k.Service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
