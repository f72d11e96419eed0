// Package artifact stores versioned binary artifacts such as trained models.
//
// Producers Put a blob under a fresh Key; consumers Get a specific version or
// resolve the latest one for a name.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LatestVersion is the version alias resolved through Store.Latest.
const LatestVersion = "latest"

const versionTimeLayout = "20060102T150405Z"

// ErrArtifactNotFound is returned when no artifact exists for a key.
var ErrArtifactNotFound = errors.New("artifact not found")
var errInvalidKey = errors.New("invalid artifact key")

// NotFoundError reports a missing artifact.
func NotFoundError(key Key) error {
	return fmt.Errorf("%w: %s", ErrArtifactNotFound, key)
}

// InvalidKeyError reports an unparsable key.
func InvalidKeyError(raw string) error {
	return fmt.Errorf("%w: %q", errInvalidKey, raw)
}

// Key identifies one version of a named artifact.
type Key struct {
	Name    string
	Version string
}

// NewKey builds a key with a fresh, time-ordered version for name.
func NewKey(name string, now time.Time) Key {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return Key{Name: name, Version: now.UTC().Format(versionTimeLayout) + "-" + suffix}
}

// ParseKey accepts "name@version", "name@latest" and a bare "name" (latest).
func ParseKey(raw string) (Key, error) {
	name, version, found := strings.Cut(strings.TrimSpace(raw), "@")
	if !found || version == "" {
		version = LatestVersion
	}
	if name == "" || strings.ContainsAny(name, "/@") || strings.ContainsAny(version, "/@") {
		return Key{}, InvalidKeyError(raw)
	}
	return Key{Name: name, Version: version}, nil
}

// IsLatest reports whether the key refers to the latest version alias.
func (k Key) IsLatest() bool {
	return k.Version == "" || k.Version == LatestVersion
}

func (k Key) String() string {
	version := k.Version
	if version == "" {
		version = LatestVersion
	}
	return k.Name + "@" + version
}

// Store persists artifacts.
type Store interface {
	// Put writes data under key and makes key the latest version of its name.
	Put(ctx context.Context, key Key, data []byte) error
	// Get reads the artifact stored under key. key must name a concrete version.
	Get(ctx context.Context, key Key) ([]byte, error)
	// Latest returns the most recently Put key for name.
	Latest(ctx context.Context, name string) (Key, error)
	Close() error
}

// Locator is implemented by stores that can name where an artifact lives.
type Locator interface {
	URI(key Key) string
}

// Location returns the backend location of key, or key itself when store
// cannot say.
func Location(store Store, key Key) string {
	if l, ok := store.(Locator); ok {
		return l.URI(key)
	}
	return key.String()
}

// Resolve returns key unchanged, or the latest concrete key when key is an alias.
func Resolve(ctx context.Context, store Store, key Key) (Key, error) {
	if !key.IsLatest() {
		return key, nil
	}
	return store.Latest(ctx, key.Name)
}

// Load resolves key and reads the artifact.
func Load(ctx context.Context, store Store, key Key) (Key, []byte, error) {
	resolved, err := Resolve(ctx, store, key)
	if err != nil {
		return Key{}, nil, err
	}
	data, err := store.Get(ctx, resolved)
	if err != nil {
		return Key{}, nil, err
	}
	return resolved, data, nil
}

func objectName(prefix string, key Key) string {
	return joinObject(prefix, key.Name, key.Version+".bson")
}

func latestName(prefix, name string) string {
	return joinObject(prefix, name, "LATEST")
}

func joinObject(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part = strings.Trim(part, "/"); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "/")
}
