package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/petroshong/calofeed-sub001/pkg/log"
	"go.uber.org/zap"
)

// File 每个命名空间一个 JSON 文件，写入通过临时文件 + rename 完成
type File struct {
	mu   sync.RWMutex
	path string
	data map[string]json.RawMessage
}

func NewFile(dir, namespace string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create dir: %w", err)
	}
	f := &File{
		path: filepath.Join(dir, namespace+".json"),
		data: make(map[string]json.RawMessage),
	}
	content, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("localstore: read %s: %w", f.path, err)
	default:
		if err := json.Unmarshal(content, &f.data); err != nil {
			log.L.Warn("local store file is corrupt, starting empty", zap.String("path", f.path), zap.Error(err))
			f.data = make(map[string]json.RawMessage)
		}
	}
	return f, nil
}

func (f *File) GetRaw(key string) ([]byte, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (f *File) SetRaw(key string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s: not a json document", ErrSerialize, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.data[key]
	f.data[key] = append(json.RawMessage(nil), data...)
	if err := f.flush(); err != nil {
		if had {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.flush()
}

func (f *File) Keys() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *File) flush() error {
	content, err := json.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("localstore: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("localstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("localstore: rename: %w", err)
	}
	return nil
}
