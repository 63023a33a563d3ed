package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-01")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if !d.Equal(NewDate(2025, time.March, 1)) {
		t.Errorf("ParseDate() = %s, want 2025-03-01", d)
	}

	for _, bad := range []string{"", "2025-3-1", "01/03/2025", "2025-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestDateOf_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	morning := DateOf(time.Date(2025, 3, 1, 6, 0, 0, 0, loc))
	evening := DateOf(time.Date(2025, 3, 1, 23, 0, 0, 0, loc))
	if !morning.Equal(evening) {
		t.Errorf("%s != %s", morning, evening)
	}
	if morning.String() != "2025-03-01" {
		t.Errorf("String() = %q, want 2025-03-01", morning.String())
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-04-15"}`), &v); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"d":"2025-04-15"}` {
		t.Errorf("Marshal() = %s", out)
	}

	if err := json.Unmarshal([]byte(`{"d":""}`), &v); err != nil || !v.D.IsZero() {
		t.Errorf("empty string: D = %s, err = %v, want zero", v.D, err)
	}
	if err := json.Unmarshal([]byte(`{"d":"15/04/2025"}`), &v); err == nil {
		t.Error("malformed date should fail to unmarshal")
	}
}

func TestDeadlineAfter(t *testing.T) {
	a := MustParseDate("2025-03-01")
	b := MustParseDate("2025-03-02")

	tests := []struct {
		name     string
		testDate *Date
		deadline *Date
		want     bool
	}{
		{"both unset", nil, nil, true},
		{"only test date", &a, nil, true},
		{"only deadline", nil, &a, true},
		{"deadline after", &a, &b, true},
		{"same day", &a, &a, false},
		{"deadline before", &b, &a, false},
	}

	for _, tt := range tests {
		if got := deadlineAfter(tt.testDate, tt.deadline); got != tt.want {
			t.Errorf("%s: deadlineAfter() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
