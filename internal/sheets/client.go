// Package sheets mirrors saved submissions to a spreadsheet: a Google
// Sheets webhook when one is configured, or a local workbook file.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"go.uber.org/zap"
)

// Syncer mirrors a record to a spreadsheet. Sync never returns an error;
// every failure is captured in the outcome so a failed sync can ride along
// an otherwise-successful submit.
type Syncer interface {
	Sync(ctx context.Context, record *models.TaxRecord) models.SyncOutcome
}

// rowPayload is the webhook contract. The webhook owns header-row creation
// and append-only semantics in its backing sheet.
type rowPayload struct {
	InvoiceNumber string `json:"invoiceNumber"`
	TaxCode       string `json:"taxCode"`
	CompanyName   string `json:"companyName"`
	Address       string `json:"address"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Client posts records to the spreadsheet webhook with bounded retries.
type Client struct {
	url         string
	maxAttempts int
	client      *http.Client
	sleep       func(time.Duration)
	logger      *zap.Logger
}

// NewClient creates a webhook client. An empty URL yields a client whose
// Sync reports "not configured" without any network call.
func NewClient(url string, timeout time.Duration, maxAttempts int, logger *zap.Logger) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		url:         url,
		maxAttempts: maxAttempts,
		client:      &http.Client{Timeout: timeout},
		sleep:       time.Sleep,
		logger:      logger,
	}
}

// Sync posts the record, retrying transient failures (network errors,
// timeouts, 5xx, unreadable response bodies) with a linear backoff of
// attemptNumber seconds. A 4xx or an explicit failure flag in a
// well-formed response is final; the server message is surfaced as-is.
func (c *Client) Sync(ctx context.Context, record *models.TaxRecord) models.SyncOutcome {
	if c.url == "" {
		return models.SyncOutcome{
			Success: false,
			Message: "Google Sheets sync is not configured",
		}
	}

	body, err := json.Marshal(rowPayload{
		InvoiceNumber: record.InvoiceNumber,
		TaxCode:       record.TaxCode,
		CompanyName:   record.CompanyName,
		Address:       record.Address,
		Email:         record.Email,
		Phone:         record.Phone,
	})
	if err != nil {
		return models.SyncOutcome{Success: false, Message: fmt.Sprintf("failed to encode record: %v", err)}
	}

	var last models.SyncOutcome
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		outcome, retryable := c.post(ctx, body)
		if !retryable {
			if outcome.Success {
				c.logger.Info("Record synced to Google Sheets",
					zap.String("tax_code", record.TaxCode),
					zap.Int("attempt", attempt))
			} else {
				c.logger.Warn("Google Sheets rejected the record",
					zap.String("tax_code", record.TaxCode),
					zap.String("message", outcome.Message))
			}
			return outcome
		}

		last = outcome
		c.logger.Warn("Google Sheets sync attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.maxAttempts),
			zap.String("message", outcome.Message))

		if attempt < c.maxAttempts {
			c.sleep(time.Duration(attempt) * time.Second)
		}
	}

	return last
}

// post runs a single attempt. The second return value reports whether the
// failure is worth retrying.
func (c *Client) post(ctx context.Context, body []byte) (models.SyncOutcome, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return models.SyncOutcome{Success: false, Message: fmt.Sprintf("failed to build request: %v", err)}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.SyncOutcome{Success: false, Message: fmt.Sprintf("webhook request failed: %v", err)}, true
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return models.SyncOutcome{
			Success: false,
			Message: fmt.Sprintf("webhook returned status %d", resp.StatusCode),
		}, true
	}

	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("webhook rejected the request with status %d", resp.StatusCode)
		var parsed webhookResponse
		if json.NewDecoder(resp.Body).Decode(&parsed) == nil && parsed.Message != "" {
			msg = parsed.Message
		}
		return models.SyncOutcome{Success: false, Message: msg}, false
	}

	var parsed webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return models.SyncOutcome{
			Success: false,
			Message: fmt.Sprintf("unreadable webhook response: %v", err),
		}, true
	}

	if !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = "webhook reported failure"
		}
		return models.SyncOutcome{Success: false, Message: msg}, false
	}

	msg := parsed.Message
	if msg == "" {
		msg = "Synced to Google Sheets"
	}
	return models.SyncOutcome{Success: true, Message: msg}, false
}
