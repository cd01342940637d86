package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCS stores files as objects in a single bucket. Object-store counterpart of
// Local; same create-only contract, enforced via a DoesNotExist precondition.
type GCS struct {
	client *gcs.Client
	bucket string
	prefix string
}

func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCS{client: c, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

func (g *GCS) Close() error { return g.client.Close() }

func (g *GCS) object(name string) (*gcs.ObjectHandle, error) {
	// object names are flat identifiers; anything path-like is refused
	if strings.Contains(name, "/") || strings.Contains(name, "..") || name == "" {
		return nil, ErrTraversal
	}
	key := name
	if g.prefix != "" {
		key = g.prefix + "/" + name
	}
	return g.client.Bucket(g.bucket).Object(key), nil
}

func (g *GCS) Save(ctx context.Context, name string, data []byte) (string, error) {
	obj, err := g.object(name)
	if err != nil {
		return "", err
	}
	w := obj.If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		// precondition failure means the object already exists
		if strings.Contains(err.Error(), "conditionNotMet") || strings.Contains(err.Error(), "412") {
			return "", ErrExists
		}
		return "", err
	}
	return name, nil
}

func (g *GCS) Load(ctx context.Context, name string) ([]byte, error) {
	obj, err := g.object(name)
	if err != nil {
		return nil, err
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	obj, err := g.object(name)
	if err != nil {
		return err
	}
	if err := obj.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return err
	}
	return nil
}
