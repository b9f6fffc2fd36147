package store

import "github.com/thetechguyfromvietnam/tax-info/internal/models"

// MemoryStore keeps the record in process memory. Used in tests and
// available as a backend where no filesystem persistence is wanted.
type MemoryStore struct {
	record *models.TaxRecord
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*models.TaxRecord, error) {
	if s.record == nil {
		return nil, nil
	}
	copied := *s.record
	return &copied, nil
}

func (s *MemoryStore) Save(record *models.TaxRecord) error {
	copied := *record
	s.record = &copied
	return nil
}
