package s3set

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/awsx"
	"github.com/dogmatiq/encstrset/driver/aws/internal/s3x"
	"github.com/dogmatiq/encstrset/set"
)

// Each member is stored as one object under the set's key prefix.
//
// Members of up to maxInlineSize octets are hex-encoded into the key after
// [inlineMarker] and the object is empty. Longer members would exceed the
// 1024-octet key limit, so they are stored under the hex-encoded SHA-256
// digest of the member after [digestMarker] and the object body holds the
// member itself.
const (
	inlineMarker  = "m"
	digestMarker  = "d"
	maxInlineSize = 256
)

// errStopRange stops listing objects when a range function returns false.
var errStopRange = errors.New("stop ranging")

type setimpl struct {
	client          *s3.Client
	onRequest       func(any) []func(*s3.Options)
	bucket          string
	name            string
	objectKeyPrefix string
}

func (s *setimpl) Name() string {
	return s.name
}

func (s *setimpl) Has(ctx context.Context, v []byte) (bool, error) {
	if _, err := awsx.Do(
		ctx,
		s.client.HeadObject,
		s.onRequest,
		&s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    s.objectKey(v),
		},
	); err != nil {
		if s3x.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("unable to head set member object: %w", err)
	}

	return true, nil
}

func (s *setimpl) TryAdd(ctx context.Context, v []byte) (bool, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         s.objectKey(v),
		IfNoneMatch: aws.String("*"),
		Body:        bytes.NewReader(nil),
	}

	if len(v) > maxInlineSize {
		in.Body = bytes.NewReader(bytes.Clone(v))
	}

	if _, err := awsx.Do(
		ctx,
		s.client.PutObject,
		s.onRequest,
		in,
	); err != nil {
		if s3x.IsConflict(err) {
			return false, nil
		}
		return false, fmt.Errorf("unable to put set member object: %w", err)
	}

	return true, nil
}

// TryRemove checks for the member before deleting it. The check and the delete
// are separate requests, so concurrent removals of the same member from
// different processes may both report success.
func (s *setimpl) TryRemove(ctx context.Context, v []byte) (bool, error) {
	ok, err := s.Has(ctx, v)
	if !ok || err != nil {
		return false, err
	}

	if _, err := awsx.Do(
		ctx,
		s.client.DeleteObject,
		s.onRequest,
		&s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    s.objectKey(v),
		},
	); err != nil {
		return false, fmt.Errorf("unable to delete set member object: %w", err)
	}

	return true, nil
}

func (s *setimpl) Len(ctx context.Context) (int, error) {
	n := 0

	if err := s.list(
		ctx,
		func(types.Object) error {
			n++
			return nil
		},
	); err != nil {
		return 0, err
	}

	return n, nil
}

func (s *setimpl) Clear(ctx context.Context) error {
	// The keys are collected before any object is deleted so that the listing
	// is not modified while it is being paginated.
	var keys []types.ObjectIdentifier

	if err := s.list(
		ctx,
		func(obj types.Object) error {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
			return nil
		},
	); err != nil {
		return err
	}

	return s3x.DeleteObjects(ctx, s.client, s.bucket, s.onRequest, keys)
}

func (s *setimpl) Range(ctx context.Context, fn set.RangeFunc) error {
	err := s.list(
		ctx,
		func(obj types.Object) error {
			v, err := s.member(ctx, aws.ToString(obj.Key))
			if err != nil {
				return err
			}

			ok, err := fn(ctx, v)
			if err != nil {
				return err
			}
			if !ok {
				return errStopRange
			}

			return nil
		},
	)

	if err == errStopRange {
		return nil
	}

	return err
}

func (s *setimpl) Close() error {
	return nil
}

// list calls fn for each object that belongs to the set.
func (s *setimpl) list(
	ctx context.Context,
	fn func(types.Object) error,
) error {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.objectKeyPrefix),
	}

	var options []func(*s3.Options)
	if s.onRequest != nil {
		options = s.onRequest(in)
	}

	pages := s3.NewListObjectsV2Paginator(s.client, in)

	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx, options...)
		if err != nil {
			return fmt.Errorf("unable to list set member objects: %w", err)
		}

		for _, obj := range out.Contents {
			if err := fn(obj); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *setimpl) objectKey(v []byte) *string {
	if len(v) <= maxInlineSize {
		return aws.String(s.objectKeyPrefix + inlineMarker + hex.EncodeToString(v))
	}

	d := sha256.Sum256(v)
	return aws.String(s.objectKeyPrefix + digestMarker + hex.EncodeToString(d[:]))
}

// member returns the member stored in the object with the given key.
func (s *setimpl) member(ctx context.Context, key string) ([]byte, error) {
	suffix := strings.TrimPrefix(key, s.objectKeyPrefix)

	if enc, ok := strings.CutPrefix(suffix, inlineMarker); ok {
		v, err := hex.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("object key %q is corrupt: %w", key, err)
		}
		return v, nil
	}

	if enc, ok := strings.CutPrefix(suffix, digestMarker); ok {
		want, err := hex.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("object key %q is corrupt: %w", key, err)
		}
		return s.readMember(ctx, key, want)
	}

	return nil, fmt.Errorf("object key %q is not a set member", key)
}

// readMember returns the body of the object with the given key, verifying that
// it matches the digest in the key.
func (s *setimpl) readMember(ctx context.Context, key string, digest []byte) ([]byte, error) {
	out, err := awsx.Do(
		ctx,
		s.client.GetObject,
		s.onRequest,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to get set member object: %w", err)
	}
	defer out.Body.Close()

	v, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read set member object: %w", err)
	}

	if d := sha256.Sum256(v); !bytes.Equal(d[:], digest) {
		return nil, fmt.Errorf("object %q is corrupt: body does not match the digest in its key", key)
	}

	return v, nil
}
