// Package filekv persists each slot as a standalone JSON file in a data
// directory. It is the default backend: zero external services, and slots
// remain hand-editable on disk.
package filekv

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type Store struct {
	dir string
}

// NewStore opens (creating if needed) the data directory holding the slots.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating data dir %s", dir)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := ioutil.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrSlotNotFound
		}
		return nil, errors.Wrapf(err, "reading slot file %s", s.path(key))
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return errors.Wrapf(ioutil.WriteFile(s.path(key), value, 0o644), "writing slot file %s", s.path(key))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing slot file %s", s.path(key))
	}
	return nil
}

var _ core.KVStore = (*Store)(nil)
