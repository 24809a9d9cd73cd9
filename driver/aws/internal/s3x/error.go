package s3x

import (
	"errors"

	"github.com/aws/smithy-go"
)

// code returns the S3 error code carried by err, or an empty string if err is
// not an S3 API error.
func code(err error) string {
	var e smithy.APIError
	if errors.As(err, &e) {
		return e.ErrorCode()
	}
	return ""
}

// IsNotFound returns true if err reports that the requested object or bucket
// does not exist.
func IsNotFound(err error) bool {
	switch code(err) {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

// IsConflict returns true if err reports that a conditional write failed
// because of an existing object.
func IsConflict(err error) bool {
	switch code(err) {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

// isOwned returns true if err reports that a bucket being created already
// exists.
func isOwned(err error) bool {
	switch code(err) {
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return true
	}
	return false
}
