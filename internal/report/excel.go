package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"medico-vitals/internal/domain"
)

const (
	vitalsSheet  = "Vital Readings"
	historySheet = "Disease History"

	timeLayout = "2006-01-02 15:04:05"
)

var vitalsHeader = []string{
	"Recorded At",
	"Device",
	"Heart Rate (bpm)",
	"SpO2 (%)",
	"Temperature (°C)",
	"Risk Level",
	"Scenario",
	"Specific Cause",
	"Recommendations",
}

var historyHeader = []string{
	"Disease",
	"Status",
	"Confidence (%)",
	"Detected At",
	"Cleared At",
	"Temp (°C)",
	"HR (bpm)",
	"SpO2 (%)",
	"Observed Symptoms",
	"Doctor Notes",
}

// PatientReport is the input for one workbook.
type PatientReport struct {
	Patient  *domain.Patient
	Readings []*domain.VitalReading
	History  []*domain.DiseaseHistory
}

// Generate renders the two-sheet patient workbook.
func Generate(data PatientReport) ([]byte, error) {
	f := excelize.NewFile()
	// WriteTo needs the file open, close only on error paths.

	if err := writeVitalsSheet(f, data); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHistorySheet(f, data); err != nil {
		f.Close()
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	if index, err := f.GetSheetIndex(vitalsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeVitalsSheet(f *excelize.File, data PatientReport) error {
	if _, err := f.NewSheet(vitalsSheet); err != nil {
		return fmt.Errorf("failed to create vitals sheet: %w", err)
	}
	widths := []float64{20, 15, 16, 10, 16, 12, 10, 40, 50}
	if err := writeHeader(f, vitalsSheet, vitalsHeader, widths); err != nil {
		return err
	}

	for i, reading := range data.Readings {
		row := i + 2
		cells := []any{
			reading.RecordedAt.Format(timeLayout),
			reading.DeviceID,
			reading.HeartRate,
			reading.SpO2,
			reading.Temperature,
			string(reading.RiskLevel),
			reading.ScenarioID,
			reading.SpecificCause,
			reading.Recommendations,
		}
		if err := writeRow(f, vitalsSheet, row, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeHistorySheet(f *excelize.File, data PatientReport) error {
	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}
	widths := []float64{28, 14, 14, 20, 20, 10, 10, 10, 40, 50}
	if err := writeHeader(f, historySheet, historyHeader, widths); err != nil {
		return err
	}

	for i, h := range data.History {
		row := i + 2

		clearedAt := ""
		if h.ClearedAt.Valid {
			clearedAt = h.ClearedAt.Time.Format(timeLayout)
		}
		var temp, hr, spo2 any
		if h.DetectedTemperature.Valid {
			temp = h.DetectedTemperature.Float64
		}
		if h.DetectedHeartRate.Valid {
			hr = h.DetectedHeartRate.Int64
		}
		if h.DetectedSpO2.Valid {
			spo2 = h.DetectedSpO2.Int64
		}
		notes := ""
		if h.DoctorNotes.Valid {
			notes = h.DoctorNotes.String
		}

		cells := []any{
			h.DiseaseName,
			string(h.Status),
			h.DetectionConfidence,
			h.DetectedAt.Format(timeLayout),
			clearedAt,
			temp,
			hr,
			spo2,
			h.ObservedSymptoms,
			notes,
		}
		if err := writeRow(f, historySheet, row, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if i < len(widths) && widths[i] > 0 {
			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return fmt.Errorf("failed to set column width: %w", err)
			}
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []any) error {
	for col, value := range cells {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

// Filename builds the download name for a patient workbook.
func Filename(patient *domain.Patient) string {
	return fmt.Sprintf("patient-report-%s.xlsx", patient.ID)
}
