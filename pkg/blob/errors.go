package blob

import "errors"

var (
	ErrNotFound      = errors.New("blob not found")
	ErrInvalidPath   = errors.New("invalid blob path") // Prevents path traversal attacks
	ErrInvalidConfig = errors.New("invalid storage configuration")

	ErrFailedToWrite           = errors.New("failed to write blob")
	ErrFailedToRead            = errors.New("failed to read blob")
	ErrFailedToCreateDirectory = errors.New("failed to create storage directory")
	ErrFailedToGetAbsolutePath = errors.New("failed to resolve absolute path")
	ErrFailedToLoadConfig      = errors.New("failed to load AWS config")
)
