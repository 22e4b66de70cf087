package exporter

import (
	"chat-analyzer/internal/domain"
	"chat-analyzer/internal/ports"
	"chat-analyzer/internal/render"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Листы книги Excel.
const (
	SheetSummary  = "Summary"
	SheetUsers    = "Users"
	SheetEmojis   = "Emojis"
	SheetTimeline = "Timeline"
	SheetWords    = "Words"
)

// ExcelExporter выводит результат книгой .xlsx.
type ExcelExporter struct{}

// NewExcelExporter создает новый экземпляр ExcelExporter.
func NewExcelExporter() ports.Exporter {
	return &ExcelExporter{}
}

// Export записывает книгу с листами Summary, Users, Emojis, Timeline и Words.
func (e *ExcelExporter) Export(w io.Writer, result *domain.AnalysisResult) error {
	v := render.Build(result)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("failed to close excel file", slog.String("error", err.Error()))
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total messages", v.TotalMessages},
		{"Most active user", v.MostActiveUser},
		{"Most active user messages", v.MostActiveUserCount},
		{"Total words", v.TotalWords},
		{"Media messages", v.MediaMessages},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	users := [][]interface{}{{"User", "Messages"}}
	for _, u := range v.Users {
		users = append(users, []interface{}{u.Name, u.Count})
	}

	emojis := [][]interface{}{{"Emoji", "Count"}}
	for _, em := range v.Emojis {
		emojis = append(emojis, []interface{}{em.Key, em.Count})
	}

	timeline := [][]interface{}{{"Date", "Messages", "Share of peak, %"}}
	for _, b := range v.Timeline {
		timeline = append(timeline, []interface{}{b.Date, b.Count, b.Height})
	}

	words := [][]interface{}{{"Word", "Count"}}
	for _, t := range v.Words {
		words = append(words, []interface{}{t.Word, t.Count})
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{SheetUsers, users},
		{SheetEmojis, emojis},
		{SheetTimeline, timeline},
		{SheetWords, words},
	} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write excel: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("invalid cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
