package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/thetechguyfromvietnam/tax-info/internal/format"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultRegistryEndpoint is the public VietQR business registry.
const DefaultRegistryEndpoint = "https://api.vietqr.io/v2/business"

// registrySource queries the public registry API. The upstream rate-limits
// aggressively, so calls go through a local limiter first.
type registrySource struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRegistrySource creates the public-registry source
func NewRegistrySource(endpoint string, timeout time.Duration, logger *zap.Logger) Source {
	if endpoint == "" {
		endpoint = DefaultRegistryEndpoint
	}
	return &registrySource{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		logger:   logger,
	}
}

func (s *registrySource) Name() string { return "vietqr" }

func (s *registrySource) Resolve(ctx context.Context, taxCode string) (*models.CompanyLookupResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/%s", s.endpoint, taxCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			s.logger.Warn("Registry lookup timed out", zap.String("tax_code", taxCode))
			return nil, errTimeout
		}
		s.logger.Debug("Registry request failed", zap.Error(err))
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		s.logger.Warn("Registry rate limited the request", zap.String("tax_code", taxCode))
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Debug("Registry returned non-2xx status",
			zap.Int("status", resp.StatusCode))
		return nil, ErrNotFound
	}

	var payload models.VietQRResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}

	if payload.Code != "00" || payload.Data == nil {
		// A well-formed error payload carries a description worth
		// reporting if every other source also fails.
		if payload.Desc != "" {
			return nil, &SourceError{Message: payload.Desc}
		}
		return nil, ErrNotFound
	}

	return &models.CompanyLookupResult{
		Success:       true,
		TaxCode:       taxCode,
		CompanyName:   payload.Data.Name,
		CompanyNameEn: payload.Data.InternationalName,
		ShortName:     payload.Data.ShortName,
		Address:       format.Address(payload.Data.Address),
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
