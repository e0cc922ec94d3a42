package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrNotFound is returned by an ObjectStore when a key does not exist.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the read side of a key/value object store.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// LocalStore serves objects from a directory. Keys are slash-separated
// paths relative to the root.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// S3Config describes an S3 bucket. Empty keys mean anonymous access.
type S3Config struct {
	Endpoint  string // host[:port], no scheme
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Insecure  bool
}

// S3Store serves objects from one S3 bucket using minio-go.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates an S3 store. No request is made until Get.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("s3 endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	// minio-go signs anonymously when both keys are empty.
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3Error(key, err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only shows up on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyS3Error(key, err)
	}
	return data, nil
}

func classifyS3Error(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey":
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	case "NoSuchBucket":
		return fmt.Errorf("bucket does not exist: %w", err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return fmt.Errorf("access denied: %w", err)
	}
	return err
}

// prefixed scopes a store to the keys below prefix.
type prefixed struct {
	store  ObjectStore
	prefix string
}

// WithPrefix returns a store whose keys are resolved below prefix.
func WithPrefix(store ObjectStore, prefix string) ObjectStore {
	if prefix == "" {
		return store
	}
	return &prefixed{store: store, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.store.Get(ctx, path.Join(p.prefix, key))
}
