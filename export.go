package main

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"schoolprofile/internal/profile"
)

const summarySheet = "Summary"

// sheetWriter appends rows to one worksheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (w *sheetWriter) write(values ...interface{}) error {
	w.row++
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			return err
		}
		if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write %s!%s: %w", w.sheet, cell, err)
		}
	}
	return nil
}

// cellValue leaves missing values as empty cells.
func cellValue(v profile.Value) interface{} {
	if !v.Valid {
		return nil
	}
	return v.Float64
}

// ExportProfileXLSX writes a profile to an Excel workbook: a summary sheet,
// one sheet per chart and a narratives sheet.
func ExportProfileXLSX(p *profile.Profile, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, p); err != nil {
		return err
	}

	for _, c := range p.Charts {
		if err := writeChartSheet(f, c); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Narratives"); err != nil {
		return fmt.Errorf("failed to create narratives sheet: %w", err)
	}
	w := &sheetWriter{f: f, sheet: "Narratives"}
	if err := w.write("Family", "Text"); err != nil {
		return err
	}
	for _, n := range p.Narratives {
		if err := w.write(string(n.Family), n.Plain()); err != nil {
			return err
		}
	}
	_ = f.SetColWidth("Narratives", "B", "B", 100)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if logger != nil {
		logger.Info("Exported profile", "school", p.Selection.School, "path", path, "charts", len(p.Charts))
	}
	return nil
}

func writeSummarySheet(f *excelize.File, p *profile.Profile) error {
	w := &sheetWriter{f: f, sheet: summarySheet}
	rows := [][]interface{}{
		{"Profile", p.Title},
		{"Grade level", p.Selection.GradeLevel},
		{"School", p.Selection.School},
	}
	if p.Selection.Compare != "" {
		rows = append(rows, []interface{}{"Compare", p.Selection.Compare})
	}
	for _, fam := range profile.YearFamilies {
		if y, ok := p.Selection.Years[fam]; ok {
			rows = append(rows, []interface{}{"Year: " + string(fam), profile.YearLabel(y)})
		}
	}
	for _, a := range p.Advisories {
		rows = append(rows, []interface{}{"Advisory", stripTags(a)})
	}
	for _, r := range rows {
		if err := w.write(r...); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)
	_ = f.SetColWidth(summarySheet, "B", "B", 60)
	return nil
}

// sheetName keeps to Excel's 31 character limit.
func sheetName(c profile.Chart) string {
	name := strings.NewReplacer("/", "-", ":", "", "?", "", "*", "", "[", "(", "]", ")", `\`, "-").Replace(c.Key)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

func writeChartSheet(f *excelize.File, c profile.Chart) error {
	sheet := sheetName(c)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	w := &sheetWriter{f: f, sheet: sheet}
	if err := w.write(c.Title); err != nil {
		return err
	}

	var err error
	switch {
	case c.Comparison != nil:
		err = writeComparison(w, *c.Comparison)
	case c.Category != nil:
		err = writeCategory(w, *c.Category)
	case c.Grouped != nil:
		err = writeGrouped(w, *c.Grouped)
	case c.Series != nil:
		err = writeSeries(w, *c.Series)
	}
	if err != nil {
		return err
	}
	if c.Annotation != "" {
		w.row++
		if err := w.write(c.Annotation); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 40)
	return nil
}

func writeComparison(w *sheetWriter, m profile.ComparisonMatrix) error {
	if err := w.write("Year", profile.YearLabel(m.Year)); err != nil {
		return err
	}
	if err := w.write("Name", "Role", "Value", "Status"); err != nil {
		return err
	}
	for _, e := range m.Entries {
		if err := w.write(e.Name, string(e.Role), cellValue(e.Value), e.Status.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeCategory(w *sheetWriter, m profile.CategoryMatrix) error {
	if err := w.write("Category", "Year", m.School); err != nil {
		return err
	}
	for _, e := range m.Entries {
		if err := w.write(e.Label, profile.YearLabel(e.Year), cellValue(e.Value)); err != nil {
			return err
		}
	}
	return nil
}

func writeGrouped(w *sheetWriter, g profile.GroupedMatrix) error {
	header := []interface{}{"Category"}
	for _, s := range g.Series {
		header = append(header, s.Name)
	}
	if err := w.write(header...); err != nil {
		return err
	}
	for i, cat := range g.Categories {
		row := []interface{}{cat}
		for _, s := range g.Series {
			row = append(row, cellValue(s.Values[i]))
		}
		if err := w.write(row...); err != nil {
			return err
		}
	}
	return nil
}

func writeSeries(w *sheetWriter, s profile.SeriesMatrix) error {
	header := []interface{}{"Name"}
	for _, y := range s.Years {
		header = append(header, profile.YearLabel(y))
	}
	if err := w.write(header...); err != nil {
		return err
	}
	for _, r := range s.Rows {
		row := []interface{}{r.Name}
		for _, v := range r.Values {
			row = append(row, cellValue(v))
		}
		if err := w.write(row...); err != nil {
			return err
		}
	}
	return nil
}
