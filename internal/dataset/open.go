package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/log"
)

// Environment variables naming the authenticated user store.
const (
	EnvUserBucket = "S3_USER_STORAGE_BUCKET"
	EnvUserKey    = "S3_USER_STORAGE_KEY"
	EnvUserSecret = "S3_USER_STORAGE_SECRET"
)

// StoreCandidate is one store configuration the Opener may try.
type StoreCandidate struct {
	Name string
	Open func(ctx context.Context) (ObjectStore, error)
}

// OpenError reports that no candidate store could open a dataset.
type OpenError struct {
	DatasetID string
	Tried     []string
	Last      error
	Errs      error // every failure, one per tried candidate
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open Zarr dataset with ID %s. Tried configurations: %s. Last error: %v",
		e.DatasetID, strings.Join(e.Tried, ", "), e.Last)
}

func (e *OpenError) Unwrap() error { return e.Errs }

// Opener opens datasets by trying each candidate store in order.
type Opener struct {
	candidates []StoreCandidate
	logger     *log.Logger
}

// NewOpener creates an opener over the given candidates.
func NewOpener(logger *log.Logger, candidates ...StoreCandidate) *Opener {
	if logger == nil {
		logger = log.Discard()
	}
	return &Opener{candidates: candidates, logger: logger}
}

// Open opens datasetID from the first candidate that can read it. This is
// not a retry loop; each candidate is tried exactly once.
func (o *Opener) Open(ctx context.Context, datasetID string) (*Dataset, error) {
	if len(o.candidates) == 0 {
		return nil, errors.New("no dataset stores configured")
	}

	var (
		errs  *multierror.Error
		tried []string
		last  error
	)
	for _, c := range o.candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tried = append(tried, c.Name)
		o.logger.Debug("opening dataset", "id", datasetID, "store", c.Name)

		ds, err := o.try(ctx, c, datasetID)
		if err == nil {
			o.logger.Debug("opened dataset", "id", datasetID, "store", c.Name)
			return ds, nil
		}
		o.logger.Debug("open failed", "store", c.Name, "error", err)
		last = err
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", c.Name, err))
	}

	return nil, &OpenError{
		DatasetID: datasetID,
		Tried:     tried,
		Last:      last,
		Errs:      errs.ErrorOrNil(),
	}
}

func (o *Opener) try(ctx context.Context, c StoreCandidate, datasetID string) (*Dataset, error) {
	store, err := c.Open(ctx)
	if err != nil {
		return nil, err
	}
	return OpenZarr(ctx, WithPrefix(store, datasetID))
}

// DefaultCandidates returns the public store followed by the authenticated
// user store. getenv is usually os.Getenv.
func DefaultCandidates(cfg config.StoreConfig, getenv func(string) string) []StoreCandidate {
	return []StoreCandidate{
		{
			Name: "Public store",
			Open: func(context.Context) (ObjectStore, error) {
				return NewS3Store(S3Config{
					Endpoint: cfg.Endpoint,
					Region:   cfg.Region,
					Bucket:   cfg.PublicBucket,
					Insecure: cfg.Insecure,
				})
			},
		},
		{
			Name: "Authenticated store",
			Open: func(context.Context) (ObjectStore, error) {
				bucket := getenv(EnvUserBucket)
				if bucket == "" {
					return nil, fmt.Errorf("%s is not set", EnvUserBucket)
				}
				key, secret := getenv(EnvUserKey), getenv(EnvUserSecret)
				if key == "" || secret == "" {
					return nil, fmt.Errorf("%s and %s must both be set", EnvUserKey, EnvUserSecret)
				}
				return NewS3Store(S3Config{
					Endpoint:  cfg.Endpoint,
					Region:    cfg.Region,
					Bucket:    bucket,
					AccessKey: key,
					SecretKey: secret,
					Insecure:  cfg.Insecure,
				})
			},
		},
	}
}
