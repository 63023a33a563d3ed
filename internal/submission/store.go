package submission

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

// ScheduledTest is a single stored test.
type ScheduledTest struct {
	ID       string
	BatchID  string
	Class    int
	Subject  string
	Kind     schedule.TestKind
	Tag      string
	Name     string
	TestDate schedule.Date
	Deadline schedule.Date
	MaxScore *int
}

// MemoryStore keeps submitted tests in memory. It is used in development and
// tests.
type MemoryStore struct {
	mu       sync.RWMutex
	tests    map[string]*ScheduledTest
	requests []schedule.Request

	// Reject makes Submit report a rejection, as the remote service would.
	Reject bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tests: make(map[string]*ScheduledTest),
	}
}

func (s *MemoryStore) Submit(_ context.Context, req schedule.Request) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if s.Reject {
		return false, nil
	}

	switch req.Mode {
	case schedule.ModeCreate:
		for _, t := range expandCreate(req.Create, uuid.NewString()) {
			t.ID = uuid.NewString()
			s.tests[t.ID] = &t
		}
	case schedule.ModeEditSingle:
		t, ok := s.tests[req.TestID]
		if !ok {
			return false, nil
		}
		applyEdit(t, req.Edit)
	default:
		return false, fmt.Errorf("unknown request mode %d", req.Mode)
	}
	return true, nil
}

// Put stores a test directly, e.g. to seed an edit.
func (s *MemoryStore) Put(t ScheduledTest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tests[t.ID] = &t
}

// Get returns a stored test.
func (s *MemoryStore) Get(id string) (ScheduledTest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tests[id]
	if !ok {
		return ScheduledTest{}, false
	}
	return *t, true
}

// Len returns the number of stored tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tests)
}

// Requests returns every request received, accepted or not.
func (s *MemoryStore) Requests() []schedule.Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Request{}, s.requests...)
}

// expandCreate flattens a batch into one test per class and subject.
func expandCreate(p *schedule.CreatePayload, batchID string) []ScheduledTest {
	_, month := schedule.SplitTag(p.Tag)
	var tests []ScheduledTest
	for _, c := range p.Classes {
		for _, subj := range c.Subjects {
			tests = append(tests, ScheduledTest{
				BatchID:  batchID,
				Class:    c.Class,
				Subject:  subj.Subject,
				Kind:     p.TestKind,
				Tag:      p.Tag,
				Name:     schedule.TestName(subj.Subject, p.TestKind, c.Class, month),
				TestDate: subj.TestDate,
				Deadline: subj.Deadline,
				MaxScore: subj.MaxScore,
			})
		}
	}
	return tests
}

func applyEdit(t *ScheduledTest, p *schedule.EditPayload) {
	_, month := schedule.SplitTag(p.Tag)
	t.Kind = p.TestKind
	t.Tag = p.Tag
	t.TestDate = p.TestDate
	t.Deadline = p.Deadline
	t.Name = schedule.TestName(t.Subject, t.Kind, t.Class, month)
}
