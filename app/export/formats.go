package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/leadcomb/lead-comb/app/database"
)

func renderCSV(contacts []database.Contact, fields []string, stamp string) (*File, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(fields))
	for i, field := range fields {
		header[i] = fieldLabels[field]
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(fields))
	for i := range contacts {
		for j, field := range fields {
			row[j] = cellString(extractors[field](&contacts[i]))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &File{
		Name:        "contacts-" + stamp + ".csv",
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}

func renderJSON(contacts []database.Contact, fields []string, includeAnalytics bool, stamp string) (*File, error) {
	rows := make([]map[string]any, 0, len(contacts))
	for i := range contacts {
		row := make(map[string]any, len(fields))
		for _, field := range fields {
			row[field] = extractors[field](&contacts[i])
		}
		rows = append(rows, row)
	}

	payload := map[string]any{
		"exportedAt": stamp,
		"total":      len(contacts),
		"contacts":   rows,
	}
	if includeAnalytics {
		payload["analytics"] = Summarize(contacts)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	return &File{
		Name:        "contacts-" + stamp + ".json",
		ContentType: "application/json",
		Data:        data,
	}, nil
}

func renderXLSX(contacts []database.Contact, fields []string, stamp string) (*File, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Contacts"
	f.SetSheetName("Sheet1", sheet)

	for i, field := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, fieldLabels[field]); err != nil {
			return nil, err
		}
	}

	for i := range contacts {
		for j, field := range fields {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellString(extractors[field](&contacts[i]))); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	return &File{
		Name:        "contacts-" + stamp + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

// pdfFields limits the PDF table to columns that fit a landscape page.
var pdfFields = []string{"username", "platform", "followerCount", "engagementRate", "isVerified", "location"}

func renderPDF(contacts []database.Contact, fields []string, stamp string) (*File, error) {
	columns := intersect(fields, pdfFields)
	if len(columns) == 0 {
		columns = pdfFields
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(columns))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 8, "Contacts Export "+stamp, "", 1, "L", false, 0, "")
	for _, field := range columns {
		pdf.CellFormat(colWidth, 7, fieldLabels[field], "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for i := range contacts {
		for _, field := range columns {
			pdf.CellFormat(colWidth, 6, cellString(extractors[field](&contacts[i])), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	return &File{
		Name:        "contacts-" + stamp + ".pdf",
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

func intersect(requested, allowed []string) []string {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, field := range allowed {
		allowedSet[field] = struct{}{}
	}
	var out []string
	for _, field := range requested {
		if _, ok := allowedSet[field]; ok {
			out = append(out, field)
		}
	}
	return out
}
