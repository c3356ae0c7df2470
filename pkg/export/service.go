package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bluecore-studio/crm-api/pkg/leads"
	"github.com/bluecore-studio/crm-api/pkg/models"
)

// Service writes lead exports to disk for download.
type Service struct {
	leadService *leads.Service
	storagePath string
}

// NewService creates a new export service.
func NewService(leadService *leads.Service, storagePath string) *Service {
	os.MkdirAll(storagePath, 0755)

	return &Service{
		leadService: leadService,
		storagePath: storagePath,
	}
}

// Export generates a CSV or Excel file of every lead matching the
// filters and returns its path for the handler to send.
func (s *Service) Export(ctx context.Context, format string, filters models.LeadSearchRequest) (string, error) {
	var ext string
	switch format {
	case "csv":
		ext = "csv"
	case "excel", "xlsx":
		ext = "xlsx"
	default:
		return "", fmt.Errorf("invalid format %q: %w", format, models.ErrInvalidInput)
	}

	rows, err := s.leadService.ListAll(ctx, filters)
	if err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(s.storagePath, fmt.Sprintf("leads-%s.%s", timestamp, ext))

	if ext == "csv" {
		err = s.generateCSV(path, rows)
	} else {
		err = s.generateExcel(path, rows)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

var exportHeaders = []string{
	"ID", "Company", "Website", "Contact", "Email", "Stage", "Priority",
	"Deal Value", "Source", "Next Follow-Up", "Created At",
}

func exportRow(lead models.Lead) []string {
	return []string{
		strconv.FormatUint(uint64(lead.ID), 10),
		lead.CompanyName,
		strDeref(lead.CompanyWebsite),
		strDeref(lead.ContactName),
		strDeref(lead.ContactEmail),
		string(lead.Stage),
		string(lead.Priority),
		floatDeref(lead.DealValue),
		string(lead.Source),
		strDeref(lead.NextFollowUp),
		lead.CreatedAt.Format(time.RFC3339),
	}
}

// generateCSV writes leads as a CSV file.
func (s *Service) generateCSV(path string, leads []models.Lead) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, lead := range leads {
		if err := writer.Write(exportRow(lead)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}

// generateExcel writes leads as an Excel workbook.
func (s *Service) generateExcel(path string, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		for colIdx, value := range exportRow(lead) {
			cell := fmt.Sprintf("%c%d", 'A'+colIdx, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportHeaders {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatDeref(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
