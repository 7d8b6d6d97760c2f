// Package export produces XLSX workbooks from extracted records.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jsjsjjsuuuu/textify-upload-sub003/constants"
	"github.com/jsjsjjsuuuu/textify-upload-sub003/internal/entity"
)

// Service turns a record list into XLSX bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RecordsXLSX returns a workbook of the completed records, one row per
// shipment. Records still pending or in error are skipped.
func (s *Service) RecordsXLSX(recs []*entity.ExtractionRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Shipments"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"#",
		"Code",
		"Sender",
		"Phone",
		"Province",
		"Price",
		"Company",
		"Confidence",
		"Method",
		"Added",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	exported := 0
	for _, r := range recs {
		if r.Status != constants.StatusCompleted {
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.Number)
		write(2, r.ShipmentFields.Code)
		write(3, r.ShipmentFields.SenderName)
		write(4, r.ShipmentFields.PhoneNumber)
		write(5, r.ShipmentFields.Province)
		write(6, r.ShipmentFields.Price)
		write(7, r.ShipmentFields.CompanyName)
		write(8, r.Confidence)
		write(9, string(r.Method))
		if !r.AddedAt.IsZero() {
			write(10, r.AddedAt.Format("2006-01-02 15:04"))
		}

		row++
		exported++
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)  // ordinal
	_ = f.SetColWidth(sheet, "B", "B", 14) // code
	_ = f.SetColWidth(sheet, "C", "C", 26) // sender
	_ = f.SetColWidth(sheet, "D", "D", 16) // phone
	_ = f.SetColWidth(sheet, "E", "E", 18) // province
	_ = f.SetColWidth(sheet, "F", "G", 16) // price, company
	_ = f.SetColWidth(sheet, "H", "J", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", exported,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
