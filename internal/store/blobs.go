package store

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	blobSuffix    = ".pdf"
	partialSuffix = ".part"
	metaSuffix    = ".meta"
)

// BlobMeta is the sidecar written next to each blob.
type BlobMeta struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	StoredAt time.Time `json:"storedAt"`
}

// BlobStore keeps PDF payloads in a directory, addressed by content hash.
type BlobStore struct {
	dir string
}

// NewBlobStore creates dir when missing.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create blob dir")
	}
	return &BlobStore{dir: dir}, nil
}

// BlobKey returns the key data is stored under.
func BlobKey(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Put stores data and returns its key. Storing the same bytes twice is a
// no-op apart from refreshing the sidecar.
func (b *BlobStore) Put(data []byte, name string) (string, error) {
	key := BlobKey(data)
	blobPath, metaPath, partialPath := b.pathsFor(key)

	if info, err := os.Stat(blobPath); err != nil || info.Size() != int64(len(data)) {
		if err := os.WriteFile(partialPath, data, 0o644); err != nil {
			return "", errors.Wrap(err, "write blob")
		}
		if err := os.Rename(partialPath, blobPath); err != nil {
			os.Remove(partialPath)
			return "", errors.Wrap(err, "commit blob")
		}
	}
	meta := BlobMeta{Name: name, Size: int64(len(data)), StoredAt: time.Now().UTC()}
	if err := writeMeta(metaPath, meta); err != nil {
		return "", err
	}
	return key, nil
}

// Get reads the blob stored under key.
func (b *BlobStore) Get(key string) ([]byte, error) {
	if !validKey(key) {
		return nil, errors.Errorf("invalid blob key %q", key)
	}
	blobPath, _, _ := b.pathsFor(key)
	data, err := os.ReadFile(blobPath)
	if err != nil {
		return nil, errors.Wrapf(err, "read blob %s", key)
	}
	return data, nil
}

// Stat returns the sidecar of key.
func (b *BlobStore) Stat(key string) (BlobMeta, error) {
	if !validKey(key) {
		return BlobMeta{}, errors.Errorf("invalid blob key %q", key)
	}
	_, metaPath, _ := b.pathsFor(key)
	return readMeta(metaPath)
}

// Delete removes a blob and its sidecar. Missing files are not an error.
func (b *BlobStore) Delete(key string) error {
	if !validKey(key) {
		return errors.Errorf("invalid blob key %q", key)
	}
	blobPath, metaPath, partialPath := b.pathsFor(key)
	for _, path := range []string{blobPath, metaPath, partialPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "delete blob %s", key)
		}
	}
	return nil
}

func (b *BlobStore) pathsFor(key string) (string, string, string) {
	return filepath.Join(b.dir, key+blobSuffix), filepath.Join(b.dir, key+metaSuffix), filepath.Join(b.dir, key+partialSuffix)
}

func validKey(key string) bool {
	if len(key) != sha1.Size*2 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}

func readMeta(path string) (BlobMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BlobMeta{}, errors.Wrap(err, "read blob meta")
	}
	var meta BlobMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return BlobMeta{}, errors.Wrap(err, "decode blob meta")
	}
	return meta, nil
}

func writeMeta(path string, meta BlobMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode blob meta")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write blob meta")
}
