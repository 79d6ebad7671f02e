package engine

import "fmt"

// Error categories surfaced in the export response. Every fatal failure maps
// to exactly one; graph-size problems never appear here because the ladder
// absorbs them.
const (
	CategoryAcquisition = "acquisition"
	CategoryRenderAsset = "render-asset"
	CategoryCompile     = "graph-compile"
	CategoryBackend     = "backend"
	CategoryRequest     = "invalid-request"
)

// ExportError pairs a failure category with the underlying detail. The
// detail message travels verbatim to the caller; nothing is retried here.
type ExportError struct {
	Category string
	Err      error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

func fail(category string, err error) *ExportError {
	return &ExportError{Category: category, Err: err}
}
