// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package vault defines the lookup and mutation surface the import and
// export engine needs from a vault store, plus an in-memory store.
package vault

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-pass-transfer/models"
)

// Sentinel errors shared by every Vault implementation.
var (
	// ErrEntryNotFound is returned by lookups that match nothing.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrDuplicateUUID is returned by Append when the identifier is taken.
	ErrDuplicateUUID = errors.New("entry uuid already exists")
)

//go:generate mockgen -source=vault.go -destination=../mock/vault_mock.go -package=mock

// Vault is the store an import writes into and an export reads from.
type Vault interface {
	// FindByUUID returns the entry with the given identifier.
	FindByUUID(ctx context.Context, id uuid.UUID) (models.Entry, error)
	// FindByGTU returns the entry with the given identity key.
	FindByGTU(ctx context.Context, key models.GTU) (models.Entry, error)
	// Entries returns every entry in insertion order.
	Entries(ctx context.Context) ([]models.Entry, error)

	Append(ctx context.Context, entry models.Entry) error
	Update(ctx context.Context, entry models.Entry) error
	Remove(ctx context.Context, id uuid.UUID) error

	// MarkChanged flags the vault as modified since it was last saved.
	MarkChanged(changed bool)
	IsChanged() bool
}
