package interfaces

import "errors"

var (
	// ErrNotPersisted is returned before any remote call when an operation needs an entity
	// that has never been saved.
	ErrNotPersisted = errors.New("entity has no identifier")
	// ErrWriteFailed wraps a rejected create, set or merge.
	ErrWriteFailed = errors.New("write failed")
	ErrNotFound    = errors.New("not found")
	// ErrURLResolution means a blob was stored but no download URL could be obtained for it.
	ErrURLResolution = errors.New("download URL could not be resolved")
	ErrBlobUpload    = errors.New("blob upload failed")
)
