package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/thetechguyfromvietnam/tax-info/internal/format"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"go.uber.org/zap"
)

// customSource queries a self-hosted lookup API at <base>/<taxCode>.
// Every failure is soft: the resolver falls through to the next source.
type customSource struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewCustomSource creates the configured-API source. An empty or
// placeholder base URL yields a source that misses without a network call.
func NewCustomSource(baseURL string, timeout time.Duration, logger *zap.Logger) Source {
	return &customSource{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *customSource) Name() string { return "custom-api" }

func (s *customSource) configured() bool {
	if s.baseURL == "" {
		return false
	}
	// Deployment templates ship a placeholder URL; treat it as unset.
	return !strings.Contains(s.baseURL, "your-api")
}

func (s *customSource) Resolve(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error) {
	if !s.configured() {
		return nil, ErrNotFound
	}

	url := fmt.Sprintf("%s/%s", s.baseURL, taxCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("Custom API request failed", zap.Error(err))
		return nil, fmt.Errorf("custom API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("Custom API returned non-OK status",
			zap.Int("status", resp.StatusCode))
		return nil, ErrNotFound
	}

	var company models.CustomAPICompany
	if err := json.NewDecoder(resp.Body).Decode(&company); err != nil {
		return nil, fmt.Errorf("failed to decode custom API response: %w", err)
	}
	if company.MaSoThue == "" {
		return nil, ErrNotFound
	}

	return FromCustomAPI(company), nil
}

// FromCustomAPI maps a custom-API payload to the common result shape. Also
// used by the manual parse endpoint.
func FromCustomAPI(company models.CustomAPICompany) *models.CompanyLookupResult {
	nameEn := company.TitleEn
	if nameEn == "" {
		nameEn = company.TitleEnAscii
	}
	return &models.CompanyLookupResult{
		Success:       true,
		TaxCode:       company.MaSoThue,
		CompanyName:   company.Title,
		CompanyNameEn: nameEn,
		Address:       format.Address(company.DiaChiCongTy),
	}
}
