package render

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"saltbath/exceldate"
	"saltbath/model"
)

const (
	// templateFirstRow is the first data row of the acceptance report template; the
	// row below it holds the signature footer.
	templateFirstRow = 6
	reportColumns    = 9
	dateNumFmt       = "yy/m/d"
)

// ReportFileName is the conventional name of a report generated on reportDate.
func ReportFileName(reportDate model.Date, title string) string {
	return fmt.Sprintf("%d_%d_%d_%s.xlsx", reportDate.Year, reportDate.Month, reportDate.Day, title)
}

// WriteReportXLSX writes rows to path. With an existing template the rows go from
// row 6 down, every new row takes the styles of row 6 and the footer moves below the
// last row. Without a template a plain sheet with a header row is written.
func WriteReportXLSX(rows []model.ReportRow, path, templatePath string) error {
	if len(rows) == 0 {
		return model.ErrEmptyRecords
	}

	var (
		f        *excelize.File
		sheet    string
		firstRow int
		err      error
	)
	if templatePath != "" && fileExists(templatePath) {
		f, err = excelize.OpenFile(templatePath)
		if err != nil {
			return fmt.Errorf("could not open report template %s: %w", templatePath, err)
		}
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
		firstRow = templateFirstRow
		if err := growTemplate(f, sheet, len(rows)); err != nil {
			f.Close()
			return err
		}
		if err := adjustTemplateFormat(f, sheet, len(rows)); err != nil {
			f.Close()
			return err
		}
	} else {
		if templatePath != "" {
			zap.S().Warnf("report template %s not found, writing a plain sheet", templatePath)
		}
		f = excelize.NewFile()
		sheet = f.GetSheetName(0)
		firstRow = 2
		if err := writePlainHeader(f, sheet); err != nil {
			f.Close()
			return err
		}
	}
	defer f.Close()

	dateStyle, err := dateStyleFor(f, sheet, firstRow)
	if err != nil {
		return err
	}

	for i, row := range rows {
		line := firstRow + i
		values := map[int]interface{}{
			1: exceldate.ToTime(row.Date),
			2: row.HeatNumber,
			3: row.Count,
			4: row.HeatNumber,
			5: row.CompoundLayer,
			6: row.DiffusionDepth,
			9: row.Labels,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col, line)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
		}
		dateCell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetCellStyle(sheet, dateCell, dateCell, dateStyle); err != nil {
			return fmt.Errorf("style %s: %w", dateCell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save report %s: %w", path, err)
	}
	zap.S().Infof("report written to %s (%d rows)", path, len(rows))
	return nil
}

// growTemplate makes room for n data rows and copies the row-6 styles onto them.
func growTemplate(f *excelize.File, sheet string, n int) error {
	if n <= 1 {
		return nil
	}
	if err := f.InsertRows(sheet, templateFirstRow+1, n-1); err != nil {
		return fmt.Errorf("could not insert report rows: %w", err)
	}
	for col := 1; col <= reportColumns; col++ {
		src, _ := excelize.CoordinatesToCellName(col, templateFirstRow)
		style, err := f.GetCellStyle(sheet, src)
		if err != nil {
			return fmt.Errorf("could not read style of %s: %w", src, err)
		}
		top, _ := excelize.CoordinatesToCellName(col, templateFirstRow+1)
		bottom, _ := excelize.CoordinatesToCellName(col, templateFirstRow+n-1)
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("could not copy style to %s:%s: %w", top, bottom, err)
		}
	}
	return nil
}

// adjustTemplateFormat restores the footer merges (signature and remark cells) on
// the row below the data and aligns the row-2 title cells.
func adjustTemplateFormat(f *excelize.File, sheet string, n int) error {
	footer := templateFirstRow + n
	for _, span := range [][2]int{{2, 3}, {5, 8}} {
		from, _ := excelize.CoordinatesToCellName(span[0], footer)
		to, _ := excelize.CoordinatesToCellName(span[1], footer)
		if err := f.MergeCell(sheet, from, to); err != nil {
			return fmt.Errorf("could not merge %s:%s: %w", from, to, err)
		}
	}
	if err := alignCell(f, sheet, "A2", "left"); err != nil {
		return err
	}
	return alignCell(f, sheet, "I2", "right")
}

func alignCell(f *excelize.File, sheet, cell, horizontal string) error {
	style := &excelize.Style{}
	if id, err := f.GetCellStyle(sheet, cell); err == nil && id != 0 {
		if s, err := f.GetStyle(id); err == nil && s != nil {
			style = s
		}
	}
	style.Alignment = &excelize.Alignment{Horizontal: horizontal, Vertical: "center"}
	id, err := f.NewStyle(style)
	if err != nil {
		return fmt.Errorf("could not create alignment for %s: %w", cell, err)
	}
	return f.SetCellStyle(sheet, cell, cell, id)
}

func writePlainHeader(f *excelize.File, sheet string) error {
	header := []interface{}{"Date", "Heat No.", "Qty", "Heat No.", "Compound layer", "Diffusion depth", "", "", "Part numbers"}
	return f.SetSheetRow(sheet, "A1", &header)
}

// dateStyleFor keeps the look of the first date cell and only swaps its number format.
func dateStyleFor(f *excelize.File, sheet string, row int) (int, error) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	base := &excelize.Style{}
	if id, err := f.GetCellStyle(sheet, cell); err == nil && id != 0 {
		if s, err := f.GetStyle(id); err == nil && s != nil {
			base = s
		}
	}
	numFmt := dateNumFmt
	base.NumFmt = 0
	base.CustomNumFmt = &numFmt
	id, err := f.NewStyle(base)
	if err != nil {
		return 0, fmt.Errorf("could not create date style: %w", err)
	}
	return id, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
