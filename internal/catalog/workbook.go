package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultSubjectsSheet is the sheet WorkbookSource reads when none is set.
const DefaultSubjectsSheet = "Subjects"

// WorkbookSource reads subjects from a spreadsheet maintained by the school
// office. The sheet has a header row followed by rows of
// Class | Kind (academic, vocational, remedial) | Subject.
type WorkbookSource struct {
	Path  string
	Sheet string
}

func (s WorkbookSource) Name() string { return "workbook:" + s.Path }

func (s WorkbookSource) Fetch(_ context.Context) (SubjectTable, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := s.Sheet
	if sheet == "" {
		sheet = DefaultSubjectsSheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseSubjectRows(rows)
}

func parseSubjectRows(rows [][]string) (SubjectTable, error) {
	byClass := make(map[int]*ClassSubjects)
	var order []int

	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue // header
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: want class, kind, subject", i+1)
		}
		class, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || class < 1 {
			return nil, fmt.Errorf("row %d: invalid class %q", i+1, row[0])
		}
		entry, ok := byClass[class]
		if !ok {
			entry = &ClassSubjects{Class: class}
			byClass[class] = entry
			order = append(order, class)
		}

		subject := strings.TrimSpace(row[2])
		switch strings.ToLower(strings.TrimSpace(row[1])) {
		case "academic":
			entry.Academic = append(entry.Academic, subject)
		case "vocational":
			entry.Vocational = append(entry.Vocational, subject)
		case "remedial":
			entry.Remedial = append(entry.Remedial, subject)
		default:
			return nil, fmt.Errorf("row %d: unknown subject kind %q", i+1, row[1])
		}
	}

	entries := make([]ClassSubjects, 0, len(order))
	for _, class := range order {
		entries = append(entries, *byClass[class])
	}
	return NewSubjectTable(entries), nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
