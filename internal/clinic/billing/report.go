package billing

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

var reportHeaders = []string{
	"Profesional", "Sesiones", "Facturación", "Honorarios", "Centro",
}

// GenerateReport renders the finance summary and the per-professional
// breakdown as an xlsx workbook, returned as raw bytes for download.
func (c *Calculator) GenerateReport(f Filter, basis LiabilityBasis) ([]byte, error) {
	summary := c.Summarize(f, basis)
	rows := c.EarningsByProfessional(f)

	file := excelize.NewFile()
	sheetName := "Finanzas"
	index, err := file.NewSheet(sheetName)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	file.DeleteSheet("Sheet1")
	file.SetActiveSheet(index)

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	// Summary block first, breakdown table below it.
	summaryCells := [][2]any{
		{"Factura Cobrada", summary.Collected},
		{"Factura Por Cobrar", summary.Outstanding},
		{"Ganancia Profesionales", summary.StaffLiability},
		{"Ganancia Centro", summary.CenterNet},
	}
	for i, pair := range summaryCells {
		if err := setCell(file, sheetName, 1, i+1, pair[0]); err != nil {
			file.Close()
			return nil, err
		}
		if err := setCell(file, sheetName, 2, i+1, pair[1]); err != nil {
			file.Close()
			return nil, err
		}
	}

	headerRow := len(summaryCells) + 2
	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, headerRow)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("convert coordinates: %w", err)
		}
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			file.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := file.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			file.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}

	for i, row := range rows {
		r := headerRow + 1 + i
		values := []any{row.Name, row.Sessions, row.Gross, row.Commission, row.CenterShare}
		for col, v := range values {
			if err := setCell(file, sheetName, col+1, r, v); err != nil {
				file.Close()
				return nil, err
			}
		}
	}

	widths := []float64{32, 12, 16, 16, 16}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("convert column number: %w", err)
		}
		if err := file.SetColWidth(sheetName, col, col, w); err != nil {
			file.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("convert coordinates: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s: %w", cell, err)
	}
	return nil
}
