//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

// PluginError represents a failure inside the Lua plugin sandbox: a script
// syntax error, a host-call contract violation, or a hook that returned a
// malformed result.
type PluginError struct {
	Base Error `json:"error"`

	// Plugin is the plugin name (backend + tool identity).
	Plugin string `json:"plugin,omitempty"`

	// Hook is the hook function that failed (e.g. "PreInstall").
	Hook string `json:"hook,omitempty"`
}

// NewPluginError creates a PluginError.
func NewPluginError(plugin, hook, message string, cause error) *PluginError {
	return &PluginError{
		Base: Error{
			Category: CategoryPlugin,
			Code:     CodePluginError,
			Message:  message,
			Cause:    cause,
		},
		Plugin: plugin,
		Hook:   hook,
	}
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error.
func (e *PluginError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *PluginError) Is(target error) bool {
	t, ok := target.(*PluginError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
