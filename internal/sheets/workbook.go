package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/thetechguyfromvietnam/tax-info/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var workbookHeader = []interface{}{
	"Timestamp", "Invoice Number", "Tax Code", "Company Name", "Address", "Email", "Phone",
}

// Workbook mirrors submissions to a local .xlsx file, one row per
// submission. Used when no webhook URL is configured so records still
// accumulate somewhere an accountant can open.
type Workbook struct {
	path   string
	logger *zap.Logger
}

// NewWorkbook creates a workbook syncer backed by the given .xlsx path
func NewWorkbook(path string, logger *zap.Logger) *Workbook {
	return &Workbook{
		path:   path,
		logger: logger,
	}
}

// Sync appends the record as a row, creating the workbook with a header
// row on first use.
func (w *Workbook) Sync(ctx context.Context, record *models.TaxRecord) models.SyncOutcome {
	if err := w.append(record); err != nil {
		w.logger.Error("Failed to append record to workbook",
			zap.String("path", w.path),
			zap.Error(err))
		return models.SyncOutcome{
			Success: false,
			Message: fmt.Sprintf("local workbook sync failed: %v", err),
		}
	}

	w.logger.Info("Record appended to local workbook",
		zap.String("path", w.path),
		zap.String("tax_code", record.TaxCode))
	return models.SyncOutcome{Success: true, Message: "Recorded to local workbook"}
}

func (w *Workbook) append(record *models.TaxRecord) error {
	f, created, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read workbook rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to compute row cell: %w", err)
	}

	row := []interface{}{
		record.UpdatedAt.Format(time.RFC3339),
		record.InvoiceNumber,
		record.TaxCode,
		record.CompanyName,
		record.Address,
		record.Email,
		record.Phone,
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	if created {
		if dir := filepath.Dir(w.path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create workbook directory: %w", err)
			}
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// open returns the existing workbook, or a fresh one with the header row
// already written.
func (w *Workbook) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(w.path); err == nil {
		f, err := excelize.OpenFile(w.path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open workbook: %w", err)
		}
		return f, false, nil
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &workbookHeader); err != nil {
		f.Close()
		return nil, false, fmt.Errorf("failed to write header row: %w", err)
	}
	return f, true, nil
}
