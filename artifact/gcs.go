package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const gcsWriteTimeout = 2 * time.Minute

// GCSStore keeps artifacts in a Cloud Storage bucket under
// <prefix>/<name>/<version>.bson plus a <prefix>/<name>/LATEST pointer.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates a GCSStore. It assumes Application Default Credentials
// unless endpoint points at an emulator.
func NewGCSStore(ctx context.Context, bucket, prefix, endpoint string) (*GCSStore, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket, prefix: prefix}, nil
}

// Put uploads data and advances the latest pointer.
func (s *GCSStore) Put(ctx context.Context, key Key, data []byte) error {
	if key.IsLatest() {
		return InvalidKeyError(key.String())
	}

	if err := s.write(ctx, objectName(s.prefix, key), "application/bson", data); err != nil {
		return fmt.Errorf("upload artifact %s: %w", key, err)
	}
	if err := s.write(ctx, latestName(s.prefix, key.Name), "text/plain", []byte(key.Version+"\n")); err != nil {
		return fmt.Errorf("update latest pointer for %s: %w", key.Name, err)
	}
	return nil
}

// Get downloads the artifact stored under key.
func (s *GCSStore) Get(ctx context.Context, key Key) ([]byte, error) {
	if key.IsLatest() {
		return nil, InvalidKeyError(key.String())
	}

	data, err := s.read(ctx, objectName(s.prefix, key))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, NotFoundError(key)
		}
		return nil, fmt.Errorf("download artifact %s: %w", key, err)
	}
	return data, nil
}

// Latest reads the latest pointer object for name.
func (s *GCSStore) Latest(ctx context.Context, name string) (Key, error) {
	data, err := s.read(ctx, latestName(s.prefix, name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return Key{}, NotFoundError(Key{Name: name})
		}
		return Key{}, fmt.Errorf("read latest pointer for %s: %w", name, err)
	}
	return Key{Name: name, Version: strings.TrimSpace(string(data))}, nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// URI returns the gs:// location of key.
func (s *GCSStore) URI(key Key) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectName(s.prefix, key))
}

func (s *GCSStore) write(ctx context.Context, object, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, gcsWriteTimeout)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", object, err)
	}
	return nil
}

func (s *GCSStore) read(ctx context.Context, object string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", object, err)
	}
	return data, nil
}
