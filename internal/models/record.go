package models

import "time"

// TaxRecord is the persisted submission. Exactly one record is live at a
// time; each new submission fully replaces the previous one.
type TaxRecord struct {
	TaxCode       string    `json:"taxCode"`
	CompanyName   string    `json:"companyName,omitempty"`
	Address       string    `json:"address,omitempty"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	InvoiceNumber string    `json:"invoiceNumber,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CompanyLookupResult is the common shape every lookup source normalizes
// to. It is produced fresh per request and never persisted.
type CompanyLookupResult struct {
	Success       bool   `json:"success"`
	TaxCode       string `json:"taxCode"`
	CompanyName   string `json:"companyName"`
	CompanyNameEn string `json:"companyNameEn,omitempty"`
	ShortName     string `json:"shortName,omitempty"`
	Address       string `json:"address,omitempty"`
}

// SyncOutcome reports one spreadsheet sync attempt. It is embedded in the
// submit response but not persisted.
type SyncOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
