package files

import "errors"

var (
	// Validation failures on entry creation. Messages surface verbatim in
	// API error responses.
	ErrMissingName     = errors.New("Missing name")
	ErrMissingType     = errors.New("Missing type")
	ErrMissingData     = errors.New("Missing data")
	ErrInvalidData     = errors.New("Invalid data")
	ErrParentNotFound  = errors.New("Parent not found")
	ErrParentNotFolder = errors.New("Parent is not a folder")

	// ErrNotFound covers both entries that do not exist and entries the
	// caller is not allowed to see. The two cases are indistinguishable
	// on purpose.
	ErrNotFound = errors.New("Not found")

	// ErrFolderNoContent is reported when content is requested for a folder.
	ErrFolderNoContent = errors.New("A folder doesn't have content")

	// ErrStorage wraps blob storage failures.
	ErrStorage = errors.New("storage failure")
)
