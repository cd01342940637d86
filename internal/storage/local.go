package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files under a single root directory on the local filesystem.
type Local struct {
	root string
}

func NewLocal(rootDir string) (*Local, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", abs, err)
	}
	return &Local{root: abs}, nil
}

// resolve rejects any name that would escape the root.
func (l *Local) resolve(name string) (string, error) {
	target := filepath.Join(l.root, filepath.Clean("/"+name))
	if target != l.root && !strings.HasPrefix(target, l.root+string(os.PathSeparator)) {
		return "", ErrTraversal
	}
	if target == l.root {
		return "", ErrTraversal
	}
	return target, nil
}

func (l *Local) Save(_ context.Context, name string, data []byte) (string, error) {
	target, err := l.resolve(name)
	if err != nil {
		return "", err
	}
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if os.IsExist(err) {
			return "", ErrExists
		}
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return name, nil
}

func (l *Local) Load(_ context.Context, name string) ([]byte, error) {
	target, err := l.resolve(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return b, nil
}

func (l *Local) Delete(_ context.Context, name string) error {
	target, err := l.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}
