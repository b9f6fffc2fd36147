package lookup

import (
	"context"
	"errors"

	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"github.com/thetechguyfromvietnam/tax-info/pkg/utils"
	"go.uber.org/zap"
)

// Resolver tries sources in their given order and returns the first hit.
type Resolver struct {
	sources []Source
	logger  *zap.Logger
}

// NewResolver creates a Resolver over an ordered list of sources
func NewResolver(logger *zap.Logger, sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		logger:  logger,
	}
}

// Lookup resolves a tax code to a company record. The caller validates the
// tax code format first; it is re-checked here so the resolver never fires
// an external call for garbage input. On total failure the returned error
// carries the most specific message available, in strict precedence: a
// well-formed upstream error description, then "lookup timed out", then a
// generic not-found. A timeout outranks the generic miss even when later
// sources (the static table included) were attempted and missed, since it
// tells the operator the registry answer may simply not have arrived.
func (r *Resolver) Lookup(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error) {
	if err := utils.ValidateTaxCode(taxCode); err != nil {
		return nil, ErrInvalidTaxCode
	}

	var upstream *SourceError
	sawTimeout := false

	for _, src := range r.sources {
		result, err := src.Resolve(ctx, taxCode)
		if err == nil && result != nil {
			r.logger.Info("Company lookup resolved",
				zap.String("source", src.Name()),
				zap.String("tax_code", taxCode))
			return result, nil
		}

		var se *SourceError
		switch {
		case errors.As(err, &se):
			if upstream == nil {
				upstream = se
			}
		case errors.Is(err, errTimeout):
			sawTimeout = true
		}

		r.logger.Debug("Lookup source missed",
			zap.String("source", src.Name()),
			zap.String("tax_code", taxCode),
			zap.Error(err))
	}

	if upstream != nil {
		return nil, upstream
	}
	if sawTimeout {
		return nil, errTimeout
	}
	return nil, ErrNotFound
}
