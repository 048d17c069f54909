//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// ExtractError represents a failure unpacking a downloaded archive.
type ExtractError struct {
	Base Error `json:"error"`

	// Archive is the path to the archive file.
	Archive string `json:"archive,omitempty"`

	// Format is the detected or configured archive format.
	Format string `json:"format,omitempty"`

	// Entry is the archive member being extracted when the failure occurred,
	// if applicable (e.g. a path-traversal attempt).
	Entry string `json:"entry,omitempty"`
}

// NewExtractError creates an ExtractError.
func NewExtractError(archive, format string, cause error) *ExtractError {
	return &ExtractError{
		Base: Error{
			Category: CategoryExtract,
			Code:     CodeExtractFailed,
			Message:  "failed to extract archive",
			Cause:    cause,
		},
		Archive: archive,
		Format:  format,
	}
}

// WithEntry sets the offending archive member.
func (e *ExtractError) WithEntry(entry string) *ExtractError {
	e.Entry = entry
	return e
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *ExtractError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *ExtractError) Is(target error) bool {
	t, ok := target.(*ExtractError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
