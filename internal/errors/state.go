//nolint:revive // Package name intentionally shadows stdlib errors for convenience.
package errors

import "fmt"

// StateError represents a state management error.
type StateError struct {
	Base Error `json:"error"`

	// LockPID is the PID of the process holding the lock (if applicable).
	LockPID int `json:"lockPid,omitempty"`

	// LockFile is the path to the lock file.
	LockFile string `json:"lockFile,omitempty"`
}

// NewStateError creates a StateError.
func NewStateError(message string, cause error) *StateError {
	return &StateError{
		Base: Error{
			Category: CategoryState,
			Code:     CodeStateError,
			Message:  message,
			Cause:    cause,
		},
	}
}

// NewLockError creates a StateError for lock conflicts.
func NewLockError(lockFile string, lockPID int) *StateError {
	hint := fmt.Sprintf("Wait for the other process to finish, or\nrun 'rm %s' if it's stale.", lockFile)
	return &StateError{
		Base: Error{
			Category: CategoryState,
			Code:     CodeStateLocked,
			Message:  "state locked",
			Hint:     hint,
		},
		LockPID:  lockPID,
		LockFile: lockFile,
	}
}

// NewLockContendedError creates a StateError for a lock that is already
// held by another process attempting to mutate the same install root,
// shim directory, or lockfile.
func NewLockContendedError(lockFile string, lockPID int) *StateError {
	hint := fmt.Sprintf("Another vertool process (PID %d) holds %s.\nWait for it to finish or remove the lock file if it is stale.", lockPID, lockFile)
	return &StateError{
		Base: Error{
			Category: CategoryState,
			Code:     CodeLockContended,
			Message:  "lock contended",
			Hint:     hint,
		},
		LockPID:  lockPID,
		LockFile: lockFile,
	}
}

// RegistryError represents a registry-related error.
type RegistryError struct {
	Base Error `json:"error"`

	// Registry is the registry name (e.g., "aqua").
	Registry string `json:"registry,omitempty"`

	// Package is the package name (if applicable).
	Package string `json:"package,omitempty"`

	// Version is the version (if applicable).
	Version string `json:"version,omitempty"`
}

// NewRegistryError creates a RegistryError.
func NewRegistryError(registry, message string, cause error) *RegistryError {
	return &RegistryError{
		Base: Error{
			Category: CategoryRegistry,
			Code:     CodeRegistryError,
			Message:  message,
			Cause:    cause,
		},
		Registry: registry,
	}
}

// NewRegistryNotAvailableError creates a RegistryError for a registry that
// could not be loaded (baked copy missing, remote unreachable and no
// cached fallback).
func NewRegistryNotAvailableError(registry string, cause error) *RegistryError {
	return &RegistryError{
		Base: Error{
			Category: CategoryRegistry,
			Code:     CodeRegistryNotAvail,
			Message:  fmt.Sprintf("registry %q is not available", registry),
			Cause:    cause,
		},
		Registry: registry,
	}
}

// NewPackageNotFoundError creates a RegistryError for an unknown package
// name within an otherwise-available registry.
func NewPackageNotFoundError(registry, pkg string) *RegistryError {
	return &RegistryError{
		Base: Error{
			Category: CategoryRegistry,
			Code:     CodePackageNotFound,
			Message:  fmt.Sprintf("package %q not found", pkg),
			Hint:     "Check the package name against the registry, or add a custom backend entry.",
		},
		Registry: registry,
		Package:  pkg,
	}
}

// NewOverrideConflictError creates a RegistryError for a package entry
// whose override records could not be merged unambiguously.
func NewOverrideConflictError(registry, pkg, message string) *RegistryError {
	return &RegistryError{
		Base: Error{
			Category: CategoryRegistry,
			Code:     CodeOverrideConflict,
			Message:  message,
		},
		Registry: registry,
		Package:  pkg,
	}
}

// NewResolveNoMatchError creates a RegistryError for a version/platform
// combination that produced no asset candidate after scoring.
func NewResolveNoMatchError(registry, pkg, version string) *RegistryError {
	return &RegistryError{
		Base: Error{
			Category: CategoryRegistry,
			Code:     CodeResolveNoMatch,
			Message:  fmt.Sprintf("no asset matches the current platform for %s@%s", pkg, version),
			Hint:     "The package may not publish a build for this OS/architecture.",
		},
		Registry: registry,
		Package:  pkg,
		Version:  version,
	}
}

// WithPackage sets the package name.
func (e *RegistryError) WithPackage(pkg string) *RegistryError {
	e.Package = pkg
	return e
}

// WithVersion sets the version.
func (e *RegistryError) WithVersion(version string) *RegistryError {
	e.Version = version
	return e
}

// Error implements the error interface for StateError.
func (e *StateError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error for StateError.
func (e *StateError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *StateError) Is(target error) bool {
	t, ok := target.(*StateError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}

// Error implements the error interface for RegistryError.
func (e *RegistryError) Error() string {
	return e.Base.Error()
}

// Unwrap returns the underlying error for RegistryError.
func (e *RegistryError) Unwrap() error {
	return e.Base.Cause
}

// Is reports whether the target error matches this error by code.
func (e *RegistryError) Is(target error) bool {
	t, ok := target.(*RegistryError)
	if !ok {
		return false
	}
	return e.Base.Code == t.Base.Code
}
