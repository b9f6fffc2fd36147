package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/thetechguyfromvietnam/tax-info/internal/format"
	"github.com/thetechguyfromvietnam/tax-info/internal/lookup"
	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"github.com/thetechguyfromvietnam/tax-info/internal/sheets"
	"github.com/thetechguyfromvietnam/tax-info/internal/store"
	"github.com/thetechguyfromvietnam/tax-info/pkg/utils"
	"go.uber.org/zap"
)

// Handler serves the tax-info HTTP API
type Handler struct {
	store    store.Store
	resolver *lookup.Resolver
	syncer   sheets.Syncer
	validate *validator.Validate
	logger   *zap.Logger
}

// NewHandler creates a Handler with custom validation rules registered
func NewHandler(st store.Store, resolver *lookup.Resolver, syncer sheets.Syncer, logger *zap.Logger) *Handler {
	v := validator.New()
	v.RegisterValidation("taxcode", func(fl validator.FieldLevel) bool {
		return utils.TaxCodePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("vnphone", func(fl validator.FieldLevel) bool {
		return utils.PhonePattern.MatchString(fl.Field().String())
	})
	// Replace the built-in email rule so the shared permissive pattern
	// is the one source of truth for what the form accepts.
	v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
		return utils.EmailPattern.MatchString(fl.Field().String())
	})

	return &Handler{
		store:    st,
		resolver: resolver,
		syncer:   syncer,
		validate: v,
		logger:   logger,
	}
}

// submitRequest is the POST /api/tax-info body. Phone is normalized before
// validation runs.
type submitRequest struct {
	TaxCode       string `json:"taxCode" validate:"required,taxcode"`
	CompanyName   string `json:"companyName"`
	Address       string `json:"address"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,vnphone"`
	InvoiceNumber string `json:"invoiceNumber"`
}

// validationMessage turns the first field error into a message specific
// enough for the form to show next to the right input.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "TaxCode":
		if fe.Tag() == "required" {
			return "Tax code is required"
		}
		return "Invalid tax code format (must be 10-13 digits)"
	case "Email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Invalid email format"
	case "Phone":
		if fe.Tag() == "required" {
			return "Phone number is required"
		}
		return "Invalid phone number (must be 10-11 digits)"
	}
	return "Invalid request"
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Tax info service is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Fetch handles GET /api/tax-info and returns the single stored record, or
// null data when nothing has been submitted yet.
func (h *Handler) Fetch(c *gin.Context) {
	record, err := h.store.Load()
	if err != nil {
		h.logger.Error("Failed to load stored record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to read stored tax information",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    record,
	})
}

// Submit handles POST /api/tax-info: validate, persist, then mirror to the
// spreadsheet. The sync is awaited but its failure never fails the submit;
// its outcome rides along in the response.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	req.Phone = format.Phone(req.Phone)
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": validationMessage(err),
		})
		return
	}

	now := time.Now().UTC()
	record := &models.TaxRecord{
		TaxCode:       req.TaxCode,
		CompanyName:   utils.SanitizeString(strings.TrimSpace(req.CompanyName)),
		Address:       format.Address(utils.SanitizeString(req.Address)),
		Email:         strings.TrimSpace(req.Email),
		Phone:         req.Phone,
		InvoiceNumber: utils.SanitizeString(strings.TrimSpace(req.InvoiceNumber)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The slot is replaced wholesale but the original creation time is
	// kept when a previous record exists.
	if existing, err := h.store.Load(); err == nil && existing != nil {
		record.CreatedAt = existing.CreatedAt
	}

	if err := h.store.Save(record); err != nil {
		h.logger.Error("Failed to save record", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to save tax information",
		})
		return
	}

	// An accepted submit runs to completion internally. The sync keeps
	// its own timeouts; a client disconnect must not void the remaining
	// retries, especially on read-only deployments where the webhook is
	// the only place the record survives.
	outcome := h.syncer.Sync(context.WithoutCancel(c.Request.Context()), record)

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Tax information saved",
		"data":             record,
		"googleSheetsSync": outcome,
	})
}

// Lookup handles GET /api/tax-lookup/:taxCode. Business-logic failures,
// including a bad tax code format, come back as HTTP 200 with success:false
// so the form never has to special-case transport errors.
func (h *Handler) Lookup(c *gin.Context) {
	taxCode := c.Param("taxCode")
	if err := utils.ValidateTaxCode(taxCode); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Invalid tax code format (must be 10-13 digits)",
		})
		return
	}

	// Like submit, an accepted lookup runs on the sources' own timeouts
	// rather than the client's connection lifetime.
	result, err := h.resolver.Lookup(context.WithoutCancel(c.Request.Context()), taxCode)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ParseLookup handles POST /api/tax-lookup/parse: re-maps a raw
// upstream-shaped payload to the common result shape for manual use.
func (h *Handler) ParseLookup(c *gin.Context) {
	var payload models.CustomAPICompany
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
		})
		return
	}

	if payload.MaSoThue == "" {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "Payload has no MaSoThue field",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    lookup.FromCustomAPI(payload),
	})
}
