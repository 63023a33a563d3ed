package submission

import (
	"testing"

	"github.com/p-n-ai/pai-assess/internal/schedule"
)

func TestMemoryStore_Create(t *testing.T) {
	store := NewMemoryStore()
	req := createRequest()
	req.Create.Classes[0].Subjects = append(req.Create.Classes[0].Subjects, schedule.SubjectPayload{
		Subject:  "Hindi",
		TestDate: schedule.MustParseDate("2025-03-02"),
		Deadline: schedule.MustParseDate("2025-03-12"),
		MaxScore: intPtr(100),
	})

	ok, err := store.Submit(t.Context(), req)
	if err != nil || !ok {
		t.Fatalf("Submit() = %v, %v", ok, err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	var batch string
	for _, r := range store.Requests() {
		if r.Mode != schedule.ModeCreate {
			t.Errorf("Mode = %v, want create", r.Mode)
		}
	}
	for id := range store.tests {
		test, _ := store.Get(id)
		if batch == "" {
			batch = test.BatchID
		}
		if test.BatchID != batch {
			t.Error("tests of one request should share a batch id")
		}
		if test.Subject == "Mathematics" && test.Name != "Mathematics_Syllabus_Class 3_March" {
			t.Errorf("Name = %q", test.Name)
		}
	}
}

func TestMemoryStore_Edit(t *testing.T) {
	store := NewMemoryStore()
	store.Put(ScheduledTest{
		ID:       "test-1",
		Class:    4,
		Subject:  "English",
		Kind:     schedule.KindSyllabus,
		Tag:      "Annual",
		TestDate: schedule.MustParseDate("2025-03-01"),
		Deadline: schedule.MustParseDate("2025-03-10"),
	})

	ok, err := store.Submit(t.Context(), editRequest("test-1"))
	if err != nil || !ok {
		t.Fatalf("Submit() = %v, %v", ok, err)
	}
	got, _ := store.Get("test-1")
	if got.Tag != "Baseline" || got.Kind != schedule.KindRemedial {
		t.Errorf("test = %+v", got)
	}
	if got.Name != "English_Remedial_Class 4" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Deadline.String() != "2025-04-20" {
		t.Errorf("Deadline = %s", got.Deadline)
	}

	ok, err = store.Submit(t.Context(), editRequest("missing"))
	if err != nil || ok {
		t.Errorf("Submit(missing) = %v, %v, want false, nil", ok, err)
	}
}

func TestMemoryStore_Reject(t *testing.T) {
	store := NewMemoryStore()
	store.Reject = true

	ok, err := store.Submit(t.Context(), createRequest())
	if err != nil || ok {
		t.Fatalf("Submit() = %v, %v, want false, nil", ok, err)
	}
	if store.Len() != 0 {
		t.Error("rejected request should not be stored")
	}
	if len(store.Requests()) != 1 {
		t.Error("rejected request should still be recorded")
	}
}
