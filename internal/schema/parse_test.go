package schema

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC) // a Wednesday

func TestParseIDSet(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "5", want: []int{5}},
		{in: "2,4-6,4", want: []int{2, 4, 5, 6}},
		{in: "7-5", want: []int{7, 6, 5}},
		{in: "1,1,1", want: []int{1}},
		{in: "3-3", want: []int{3}},
		{in: "", wantErr: true},
		{in: "a,b", wantErr: true},
		{in: "1-x", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseIDSet(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseIDSet(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseIDSet(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseIDSet(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestParseDateLiteral(t *testing.T) {
	today := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "today", want: today},
		{in: "Tomorrow", want: today.AddDate(0, 0, 1)},
		{in: "yesterday", want: today.AddDate(0, 0, -1)},
		{in: "2026-09-01", want: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{in: "+3d", want: today.AddDate(0, 0, 3)},
		{in: "friday", want: today.AddDate(0, 0, 2)},
		// weekday names mean the next occurrence, never today
		{in: "wednesday", want: today.AddDate(0, 0, 7)},
		{in: "", wantErr: true},
		{in: "not-a-date", wantErr: true},
		{in: "2026-13-40", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDateLiteral(tt.in, testNow)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDateLiteral(%q): expected error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDateLiteral(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseDateLiteral(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateRange(t *testing.T) {
	start, end, err := ParseDateRange("2026-08-01..2026-08-31", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Day() != 1 || end.Day() != 31 {
		t.Errorf("range = %v..%v", start, end)
	}

	// bare literal is a single-day range
	start, end, err = ParseDateRange("today", testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(end) {
		t.Errorf("single-day range not collapsed: %v..%v", start, end)
	}

	if _, _, err := ParseDateRange("2026-08-31..2026-08-01", testNow); err == nil {
		t.Error("expected error for inverted range")
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "90", want: 90},
		{in: "2h", want: 120},
		{in: "45m", want: 45},
		{in: "1h30m", want: 90},
		{in: "0", wantErr: true},
		{in: "", wantErr: true},
		{in: "h", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDurationMinutes(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDurationMinutes(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDurationMinutes(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	for in, want := range map[string]int{"p1": 1, "p2": 2, "P3": 3, "2": 2} {
		got, err := ParsePriority(in)
		if err != nil {
			t.Errorf("ParsePriority(%q): unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParsePriority(%q) = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"p0", "p4", "high", ""} {
		if _, err := ParsePriority(in); err == nil {
			t.Errorf("ParsePriority(%q): expected error", in)
		}
	}
}

func TestIDSetLike(t *testing.T) {
	for _, in := range []string{"5", "2,4-6", "7-5"} {
		if !IDSetLike(in) {
			t.Errorf("IDSetLike(%q) = false, want true", in)
		}
	}
	for _, in := range []string{"", "abc", "1,", "-5", "due:today"} {
		if IDSetLike(in) {
			t.Errorf("IDSetLike(%q) = true, want false", in)
		}
	}
}
