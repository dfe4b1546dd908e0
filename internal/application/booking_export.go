package application

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportHeader = []interface{}{"ID", "Item", "Owner ID", "Booker", "Booker email", "Start", "End", "Status", "Created"}

// ExportBookings renders every booking as an XLSX workbook (admin).
func (s *BookingService) ExportBookings(ctx context.Context) ([]byte, error) {
	bookings, err := s.ListAllBookings(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "I1", headerStyle)
	}

	for i, b := range bookings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			b.ID.String(),
			b.Item.Name,
			b.Item.OwnerID.String(),
			b.Booker.Name,
			b.Booker.Email,
			b.Start.Format(time.RFC3339),
			b.End.Format(time.RFC3339),
			b.Status,
			b.CreatedAt.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "C", 38)
	_ = f.SetColWidth(exportSheet, "D", "I", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
