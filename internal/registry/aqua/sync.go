package aqua

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Store is the persistence collaborator SyncRegistry needs from the
// Lockfile Manager: a locked read/modify/write cycle over the registry
// sync record.
type Store interface {
	Lock() error
	Unlock() error
	LoadRegistryState() (*RegistryState, error)
	SaveRegistryState(*RegistryState) error
}

// SyncRegistry fetches the latest aqua-registry ref and updates state if changed.
func SyncRegistry(ctx context.Context, store Store) error {
	if err := store.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = store.Unlock() }()

	currentState, err := store.LoadRegistryState()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	client := NewVersionClient(nil)
	newRef, err := client.GetLatestRef(ctx)
	if err != nil {
		return fmt.Errorf("failed to get latest aqua registry ref: %w", err)
	}

	// Check if registry needs update
	var oldRef RegistryRef
	if currentState != nil && currentState.Aqua != nil {
		oldRef = currentState.Aqua.Ref
	}

	if string(oldRef) == newRef {
		slog.Info("aqua registry is up to date", "ref", newRef)
		return nil
	}

	// Update registry state
	updated := &RegistryState{
		Aqua: &AquaRegistryState{
			Ref:       RegistryRef(newRef),
			UpdatedAt: time.Now(),
		},
	}

	if err := store.SaveRegistryState(updated); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	slog.Info("aqua registry updated", "from", oldRef, "to", newRef)
	return nil
}
