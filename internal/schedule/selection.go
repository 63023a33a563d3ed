package schedule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/p-n-ai/pai-assess/internal/catalog"
)

// RowField names an editable field of a SubjectRow.
type RowField string

const (
	FieldSubject  RowField = "subject"
	FieldTestDate RowField = "testDate"
	FieldDeadline RowField = "deadline"
)

// SubjectRow is one (subject, test date, submission deadline) triple scheduled
// for a class. Unset fields are empty or nil.
type SubjectRow struct {
	ID       int    `json:"id"`
	Subject  string `json:"subject,omitempty"`
	TestDate *Date  `json:"testDate,omitempty"`
	Deadline *Date  `json:"deadline,omitempty"`
}

// Complete reports whether every field of the row is set.
func (r SubjectRow) Complete() bool {
	return r.Subject != "" && r.TestDate != nil && r.Deadline != nil
}

type rowKey struct {
	class int
	row   int
}

// classRecord is a row of the Classes table. A zero maxScore means unset.
type classRecord struct {
	maxScore int
}

// editOrigin remembers the row loaded from an existing test and its test date
// at the time edit mode was entered.
type editOrigin struct {
	class    int
	row      int
	testDate *Date
}

// Selection is the in-progress configuration. It is stored as two normalized
// tables: classes keyed by class number, and subject rows keyed by
// (class, row id). A class is selected exactly when it has a Classes entry.
//
// Selection is not safe for concurrent use; Workflow serializes access.
type Selection struct {
	group   *catalog.ClassGroup
	classes map[int]*classRecord
	rows    map[rowKey]*SubjectRow
	nextRow map[int]int
	origin  *editOrigin
}

// NewSelection returns an empty selection with no active group.
func NewSelection() *Selection {
	return &Selection{
		classes: make(map[int]*classRecord),
		rows:    make(map[rowKey]*SubjectRow),
		nextRow: make(map[int]int),
	}
}

// NewEditSelection returns a selection pre-seeded with exactly one class and
// one row, loaded from an existing test. Changing that row's test date later
// clears its deadline.
func NewEditSelection(group catalog.ClassGroup, class int, row SubjectRow, maxScore int) (*Selection, error) {
	s := NewSelection()
	if err := s.SelectGroup(group); err != nil {
		return nil, err
	}
	if !group.HasClass(class) {
		return nil, fmt.Errorf("class %d: %w", class, ErrClassNotInGroup)
	}
	if !deadlineAfter(row.TestDate, row.Deadline) {
		return nil, ErrDeadlineNotAfterTestDate
	}

	s.classes[class] = &classRecord{maxScore: maxScore}
	row.ID = 1
	row.Subject = strings.TrimSpace(row.Subject)
	s.rows[rowKey{class, row.ID}] = &row
	s.nextRow[class] = row.ID + 1
	s.origin = &editOrigin{class: class, row: row.ID, testDate: row.TestDate}
	return s, nil
}

// Group returns the active class group.
func (s *Selection) Group() (catalog.ClassGroup, bool) {
	if s.group == nil {
		return catalog.ClassGroup{}, false
	}
	return *s.group, true
}

// Empty reports whether no class is selected. A selection with only an active
// group is still empty.
func (s *Selection) Empty() bool {
	return len(s.classes) == 0
}

// EditMode reports whether the selection was seeded from an existing test.
func (s *Selection) EditMode() bool {
	return s.origin != nil
}

// EditTarget returns the class and row loaded from the existing test.
func (s *Selection) EditTarget() (class, row int, ok bool) {
	if s.origin == nil {
		return 0, 0, false
	}
	return s.origin.class, s.origin.row, true
}

// Clear discards everything, including the active group.
func (s *Selection) Clear() {
	s.group = nil
	clear(s.classes)
	clear(s.rows)
	clear(s.nextRow)
	s.origin = nil
}

// SelectGroup makes g the active group. It only applies to an empty
// selection; switching away from a populated one must go through the
// transition guard, which clears first.
func (s *Selection) SelectGroup(g catalog.ClassGroup) error {
	if !s.Empty() {
		return ErrSelectionNotEmpty
	}
	s.group = &g
	return nil
}

// IsSelected reports whether class is selected.
func (s *Selection) IsSelected(class int) bool {
	_, ok := s.classes[class]
	return ok
}

// Classes returns the selected classes in ascending order.
func (s *Selection) Classes() []int {
	classes := make([]int, 0, len(s.classes))
	for c := range s.classes {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

// ToggleClass selects class with one blank row, or deselects it together with
// its rows and max score. It returns whether the class is now selected.
func (s *Selection) ToggleClass(class int) (bool, error) {
	if s.IsSelected(class) {
		s.removeClass(class)
		return false, nil
	}
	if s.group == nil {
		return false, ErrNoActiveGroup
	}
	if !s.group.HasClass(class) {
		return false, fmt.Errorf("class %d: %w", class, ErrClassNotInGroup)
	}

	s.classes[class] = &classRecord{}
	s.insertRow(class)
	return true, nil
}

// MaxScore returns the max score of a selected class, if set.
func (s *Selection) MaxScore(class int) (int, bool) {
	rec, ok := s.classes[class]
	if !ok || rec.maxScore == 0 {
		return 0, false
	}
	return rec.maxScore, true
}

// SetMaxScore sets the max score of a selected class. Values outside [1,100]
// are rejected.
func (s *Selection) SetMaxScore(class, value int) error {
	rec, ok := s.classes[class]
	if !ok {
		return fmt.Errorf("class %d: %w", class, ErrClassNotSelected)
	}
	if value < 1 || value > 100 {
		return fmt.Errorf("got %d: %w", value, ErrMaxScoreRange)
	}
	rec.maxScore = value
	return nil
}

// Rows returns copies of the class's rows ordered by id.
func (s *Selection) Rows(class int) []SubjectRow {
	var rows []SubjectRow
	for key, row := range s.rows {
		if key.class == class {
			rows = append(rows, *row)
		}
	}
	slices.SortFunc(rows, func(a, b SubjectRow) int { return a.ID - b.ID })
	return rows
}

// Row returns a copy of a single row.
func (s *Selection) Row(class, rowID int) (SubjectRow, bool) {
	row, ok := s.rows[rowKey{class, rowID}]
	if !ok {
		return SubjectRow{}, false
	}
	return *row, true
}

// AddSubjectRow appends a blank row to a selected class and returns its id.
// It refuses while the class still has a row without a subject.
func (s *Selection) AddSubjectRow(class int) (int, error) {
	if !s.IsSelected(class) {
		return 0, fmt.Errorf("class %d: %w", class, ErrClassNotSelected)
	}
	for key, row := range s.rows {
		if key.class == class && row.Subject == "" {
			return 0, fmt.Errorf("class %d row %d: %w", class, row.ID, ErrIncompleteRow)
		}
	}
	return s.insertRow(class), nil
}

// RemoveSubjectRow deletes a row. Removing a class's last row deselects the
// class.
func (s *Selection) RemoveSubjectRow(class, rowID int) error {
	key := rowKey{class, rowID}
	if _, ok := s.rows[key]; !ok {
		return fmt.Errorf("class %d row %d: %w", class, rowID, ErrRowNotFound)
	}
	delete(s.rows, key)
	if s.rowCount(class) == 0 {
		s.removeClass(class)
	}
	return nil
}

// SetRowField sets one field of a row from its string form. Dates use
// YYYY-MM-DD and an empty value clears the field. The row is left unchanged
// when the edit is rejected.
func (s *Selection) SetRowField(class, rowID int, field RowField, value string) error {
	row, ok := s.rows[rowKey{class, rowID}]
	if !ok {
		return fmt.Errorf("class %d row %d: %w", class, rowID, ErrRowNotFound)
	}

	next := *row
	switch field {
	case FieldSubject:
		subject := strings.TrimSpace(value)
		if subject != "" && s.hasSubject(class, rowID, subject) {
			return fmt.Errorf("%q in class %d: %w", subject, class, ErrDuplicateSubject)
		}
		next.Subject = subject
	case FieldTestDate:
		d, err := parseOptionalDate(value)
		if err != nil {
			return err
		}
		next.TestDate = d
		if s.isEditTarget(class, rowID) && !sameDate(d, s.origin.testDate) {
			next.Deadline = nil
		}
	case FieldDeadline:
		d, err := parseOptionalDate(value)
		if err != nil {
			return err
		}
		next.Deadline = d
	default:
		return fmt.Errorf("%q: %w", field, ErrUnknownField)
	}

	if !deadlineAfter(next.TestDate, next.Deadline) {
		return fmt.Errorf("deadline %s, test date %s: %w", next.Deadline, next.TestDate, ErrDeadlineNotAfterTestDate)
	}
	*row = next
	return nil
}

func (s *Selection) insertRow(class int) int {
	id := s.nextRow[class]
	if id == 0 {
		id = 1
	}
	s.rows[rowKey{class, id}] = &SubjectRow{ID: id}
	s.nextRow[class] = id + 1
	return id
}

func (s *Selection) removeClass(class int) {
	for key := range s.rows {
		if key.class == class {
			delete(s.rows, key)
		}
	}
	delete(s.classes, class)
	delete(s.nextRow, class)
}

func (s *Selection) rowCount(class int) int {
	n := 0
	for key := range s.rows {
		if key.class == class {
			n++
		}
	}
	return n
}

func (s *Selection) hasSubject(class, exceptRow int, subject string) bool {
	for key, row := range s.rows {
		if key.class == class && key.row != exceptRow && strings.EqualFold(row.Subject, subject) {
			return true
		}
	}
	return false
}

func (s *Selection) isEditTarget(class, rowID int) bool {
	return s.origin != nil && s.origin.class == class && s.origin.row == rowID
}

func parseOptionalDate(value string) (*Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	d, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func sameDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
