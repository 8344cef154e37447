// Package export writes a user's bookings to an xlsx workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"trainswift/internal/models"
)

var header = []string{
	"Booking ID", "Train", "Number", "From", "To",
	"Travel Date", "Class", "Seats", "Total Price", "Status", "Trip",
}

// UserBookings creates an xlsx file under dir with one row per booking
// and returns the file path. The trip column is classified against the
// supplied now.
func UserBookings(dir string, profile models.Profile, bookings []models.Booking, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	title := fmt.Sprintf("Bookings for %s (%s)", profile.Name, profile.Email)
	_ = f.SetCellValue(sheetName, "A1", title)
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	for i, name := range header {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetCellValue(sheetName, col+"2", name)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle)

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID, b.Train.Name, b.Train.Number, b.Train.From, b.Train.To,
			b.Date, b.TrainClass, len(b.Passengers), b.TotalPrice, b.Status,
			string(models.ClassifyTrip(b, now)),
		}
		for j, v := range values {
			col, _ := excelize.ColumnNumberToName(j + 1)
			_ = f.SetCellValue(sheetName, col+fmt.Sprint(row), v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", lastCol, 18)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_%s.xlsx", profile.ID, now.Format("2006-01-02"))
	filePath := filepath.Join(dir, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	return filePath, nil
}
