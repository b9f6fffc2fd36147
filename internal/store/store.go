// Package store persists the single live TaxRecord. Exactly one slot
// exists; concurrent saves race with last-write-wins semantics, which is
// acceptable for single-operator usage.
package store

import "github.com/thetechguyfromvietnam/tax-info/internal/models"

// Store reads and writes the current record.
type Store interface {
	// Load returns the stored record, or (nil, nil) when none exists.
	Load() (*models.TaxRecord, error)
	// Save replaces the stored record.
	Save(record *models.TaxRecord) error
}

// NoopStore is used on read-only deployment targets: Save reports success
// without writing (the record still survives via the spreadsheet sync) and
// Load always returns nothing.
type NoopStore struct{}

// NewNoopStore creates a NoopStore
func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (s *NoopStore) Load() (*models.TaxRecord, error) { return nil, nil }

func (s *NoopStore) Save(record *models.TaxRecord) error { return nil }
