package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"go.uber.org/zap"
)

func testRecord(taxCode string) *models.TaxRecord {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.TaxRecord{
		TaxCode:   taxCode,
		Email:     "test@example.com",
		Phone:     "0123456789",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestFileStore_LoadMissingFile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "tax-info.json"), zap.NewNop())

	record, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tax-info.json")
	s := NewFileStore(path, zap.NewNop())

	want := testRecord("0316794479")
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.TaxCode, got.TaxCode)
	assert.Equal(t, want.Email, got.Email)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "tax-info.json"), zap.NewNop())

	require.NoError(t, s.Save(testRecord("0316794479")))
	require.NoError(t, s.Save(testRecord("3901212654")))

	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "3901212654", got.TaxCode)
}

func TestFileStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax-info.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewFileStore(path, zap.NewNop())
	_, err := s.Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	record, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, record)

	require.NoError(t, s.Save(testRecord("0316794479")))
	got, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0316794479", got.TaxCode)

	// Returned record is a copy; mutating it must not affect the store.
	got.TaxCode = "changed"
	again, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "0316794479", again.TaxCode)
}

func TestNoopStore(t *testing.T) {
	s := NewNoopStore()

	require.NoError(t, s.Save(testRecord("0316794479")))
	record, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, record)
}
