package upload

import "errors"

var (
	ErrEmptyAsset   = errors.New("empty asset")
	ErrStorageError = errors.New("storage error")
)
