package s3set

import (
	"context"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dogmatiq/encstrset/driver/aws/internal/s3x"
	"github.com/dogmatiq/encstrset/internal/syncx"
	"github.com/dogmatiq/encstrset/set"
)

// store is an implementation of [set.Store] that persists to an S3
// bucket.
//
// Each member is stored as an object under a key prefix derived from the set
// name.
type store struct {
	Client    *s3.Client
	Bucket    string
	OnRequest func(any) []func(*s3.Options)

	createBucketOnce syncx.SucceedOnce
}

// NewStore returns a new [set.Store] that uses the given S3 client
// to store set members in the given bucket.
//
// The bucket is created the first time a set is opened, if it does not already
// exist.
func NewStore(
	client *s3.Client,
	bucket string,
	options ...Option,
) set.Store {
	if bucket == "" {
		panic("bucket name must not be empty")
	}

	s := &store{
		Client: client,
		Bucket: bucket,
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Option is a functional option that changes the behavior of [NewStore].
type Option func(*store)

// WithRequestHook is an [Option] that configures fn as a pre-request hook.
//
// Before each S3 API request, fn is passed a pointer to the input struct, e.g.
// [s3.HeadObjectInput], which it may modify in-place. It may be called with any
// S3 request type. The types of requests used may change in any version without
// notice.
//
// Any functions returned by fn will be applied to the request's options before
// the request is sent.
func WithRequestHook(fn func(any) []func(*s3.Options)) Option {
	return func(s *store) {
		s.OnRequest = fn
	}
}

// Open returns the set with the given name.
func (s *store) Open(ctx context.Context, name string) (set.Set, error) {
	if err := s.createBucketOnce.Do(ctx, s.createBucket); err != nil {
		return nil, err
	}

	return &setimpl{
		client:          s.Client,
		onRequest:       s.OnRequest,
		bucket:          s.Bucket,
		name:            name,
		objectKeyPrefix: "set/" + url.PathEscape(name) + "/",
	}, nil
}

func (s *store) createBucket(ctx context.Context) error {
	return s3x.CreateBucketIfNotExists(
		ctx,
		s.Client,
		s.Bucket,
		s.OnRequest,
	)
}
