package catalog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/curriculum/subjects" {
			t.Errorf("path = %s, want /v1/curriculum/subjects", r.URL.Path)
		}
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"classes":[
			{"class":3,"academicSubjects":["Maths","EVS"]},
			{"class":9,"academicSubjects":["Science"],"vocationalSubjects":["Retail"],"remedialSubjects":["Reading"]}
		]}`))
	}))
	defer srv.Close()

	table, err := NewHTTPSource(srv.URL + "/").Fetch(t.Context())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Maths", "EVS"}, table.Syllabus(3)); diff != "" {
		t.Errorf("Syllabus(3) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultRemedial, table.Remedial(3)); diff != "" {
		t.Errorf("Remedial(3) mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Science", "Retail"}, table.Syllabus(9)); diff != "" {
		t.Errorf("Syllabus(9) mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"down"}`, "status 500"},
		{"missing classes", http.StatusOK, `{"subjects":[]}`, "schema"},
		{"class is a string", http.StatusOK, `{"classes":[{"class":"three","academicSubjects":[]}]}`, "schema"},
		{"not json", http.StatusOK, `<html>`, "validate response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPSource(srv.URL).Fetch(t.Context())
			if err == nil {
				t.Fatal("Fetch() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := NewHTTPSource(url, WithHTTPClient(http.DefaultClient)).Fetch(t.Context()); err == nil {
		t.Error("Fetch() should fail when the service is down")
	}
}
