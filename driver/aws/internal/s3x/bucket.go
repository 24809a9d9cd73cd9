package s3x

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dogmatiq/encstrset/driver/aws/internal/awsx"
)

// MaxDeleteBatch is the largest number of objects accepted by a single
// DeleteObjects call.
const MaxDeleteBatch = 1000

// CreateBucketIfNotExists creates an S3 bucket if it does not already exist.
func CreateBucketIfNotExists(
	ctx context.Context,
	client *s3.Client,
	bucket string,
	onRequest func(any) []func(*s3.Options),
) error {
	if _, err := awsx.Do(
		ctx,
		client.CreateBucket,
		onRequest,
		&s3.CreateBucketInput{
			Bucket: aws.String(bucket),
		},
	); err != nil && !isOwned(err) {
		return fmt.Errorf("unable to create bucket: %w", err)
	}

	return nil
}

// DeleteBucketIfExists deletes an S3 bucket and all of the objects in it.
func DeleteBucketIfExists(
	ctx context.Context,
	client *s3.Client,
	bucket string,
	onRequest func(any) []func(*s3.Options),
) error {
	var keys []types.ObjectIdentifier

	pages := s3.NewListObjectsV2Paginator(
		client,
		&s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
		},
	)

	for pages.HasMorePages() {
		out, err := pages.NextPage(ctx)
		if IsNotFound(err) {
			return nil
		} else if err != nil {
			return fmt.Errorf("unable to list objects: %w", err)
		}

		for _, obj := range out.Contents {
			keys = append(keys, types.ObjectIdentifier{Key: obj.Key})
		}
	}

	if err := DeleteObjects(ctx, client, bucket, onRequest, keys); err != nil {
		return err
	}

	if _, err := awsx.Do(
		ctx,
		client.DeleteBucket,
		onRequest,
		&s3.DeleteBucketInput{
			Bucket: aws.String(bucket),
		},
	); err != nil && !IsNotFound(err) {
		return fmt.Errorf("unable to delete bucket: %w", err)
	}

	return nil
}

// DeleteObjects deletes the objects with the given keys, in batches of up to
// [MaxDeleteBatch].
func DeleteObjects(
	ctx context.Context,
	client *s3.Client,
	bucket string,
	onRequest func(any) []func(*s3.Options),
	keys []types.ObjectIdentifier,
) error {
	for len(keys) > 0 {
		batch := keys[:min(len(keys), MaxDeleteBatch)]
		keys = keys[len(batch):]

		out, err := awsx.Do(
			ctx,
			client.DeleteObjects,
			onRequest,
			&s3.DeleteObjectsInput{
				Bucket: aws.String(bucket),
				Delete: &types.Delete{
					Objects: batch,
					Quiet:   aws.Bool(true),
				},
			},
		)
		if err != nil {
			return fmt.Errorf("unable to delete %d object(s): %w", len(batch), err)
		}

		if len(out.Errors) != 0 {
			e := out.Errors[0]
			return fmt.Errorf(
				"unable to delete object %q: %s",
				aws.ToString(e.Key),
				aws.ToString(e.Message),
			)
		}
	}

	return nil
}
