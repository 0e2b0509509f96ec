package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrEmptyKey      = errors.New("storage: empty key")
	ErrNotFound      = errors.New("storage: file not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
	ErrPresignFailed = errors.New("storage: presign failed")
)

// wrapS3Error maps S3 error codes to sentinels. The AWS error is kept as
// text only.
func wrapS3Error(err, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
