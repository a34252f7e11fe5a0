package vault

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/models"
)

type memoryVault struct {
	mu      sync.RWMutex
	entries []models.Entry
	index   map[uuid.UUID]int
	changed bool
}

// NewMemory returns an empty in-memory vault.
func NewMemory(entries ...models.Entry) Vault {
	v := &memoryVault{index: make(map[uuid.UUID]int)}
	for _, e := range entries {
		v.index[e.UUID] = len(v.entries)
		v.entries = append(v.entries, e)
	}
	return v
}

func (v *memoryVault) FindByUUID(_ context.Context, id uuid.UUID) (models.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	i, ok := v.index[id]
	if !ok {
		return models.Entry{}, ErrEntryNotFound
	}
	return v.entries[i], nil
}

func (v *memoryVault) FindByGTU(_ context.Context, key models.GTU) (models.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	for _, e := range v.entries {
		if e.GTU() == key {
			return e, nil
		}
	}
	return models.Entry{}, ErrEntryNotFound
}

func (v *memoryVault) Entries(_ context.Context) ([]models.Entry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return slices.Clone(v.entries), nil
}

func (v *memoryVault) Append(_ context.Context, entry models.Entry) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.index[entry.UUID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUUID, entry.UUID)
	}
	v.index[entry.UUID] = len(v.entries)
	v.entries = append(v.entries, entry)
	return nil
}

func (v *memoryVault) Update(_ context.Context, entry models.Entry) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	i, ok := v.index[entry.UUID]
	if !ok {
		return ErrEntryNotFound
	}
	v.entries[i] = entry
	return nil
}

func (v *memoryVault) Remove(_ context.Context, id uuid.UUID) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	i, ok := v.index[id]
	if !ok {
		return ErrEntryNotFound
	}
	v.entries = slices.Delete(v.entries, i, i+1)
	delete(v.index, id)
	for j := i; j < len(v.entries); j++ {
		v.index[v.entries[j].UUID] = j
	}
	return nil
}

func (v *memoryVault) MarkChanged(changed bool) {
	v.mu.Lock()
	v.changed = changed
	v.mu.Unlock()
}

func (v *memoryVault) IsChanged() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.changed
}
