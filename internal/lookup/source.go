// Package lookup resolves a tax code to a company record by trying a
// fixed chain of data sources: the self-hosted API when configured, the
// public registry, then a static fallback table.
package lookup

import (
	"context"
	"errors"

	"github.com/thetechguyfromvietnam/tax-info/internal/models"
)

// ErrNotFound is the soft miss: a source answered but has no record for
// the tax code, or was skipped. The resolver falls through on it.
var ErrNotFound = errors.New("no company information found for this tax code")

// ErrInvalidTaxCode rejects a lookup before any source is attempted.
var ErrInvalidTaxCode = errors.New("invalid tax code format, must be 10-13 digits")

// errTimeout marks an upstream call that hit its deadline.
var errTimeout = errors.New("lookup timed out")

// SourceError carries a well-formed failure description from an upstream
// API. It is worth surfacing to the user when every source fails.
type SourceError struct {
	Message string
}

func (e *SourceError) Error() string { return e.Message }

// Source attempts to resolve a tax code against one specific data source.
type Source interface {
	Name() string
	Resolve(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error)
}
