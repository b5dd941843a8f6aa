package utils_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
)

func TestGetDayRange(t *testing.T) {
	day := time.Date(2026, 3, 15, 13, 45, 12, 0, time.UTC)
	start, end := utils.GetDayRange(day)

	if !start.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}
}

func TestTruncateToDate(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	got := utils.TruncateToDate(time.Date(2026, 1, 2, 23, 59, 59, 1, loc))
	want := time.Date(2026, 1, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("TruncateToDate = %s, want %s", got, want)
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := utils.ParseDecimal(" 12.50 ")
	if err != nil {
		t.Fatalf("ParseDecimal: %v", err)
	}
	if d.String() != "12.5" {
		t.Errorf("ParseDecimal = %s, want 12.5", d)
	}
	if _, err := utils.ParseDecimal(""); err == nil {
		t.Error("empty string should fail")
	}
	if _, err := utils.ParseDecimal("abc"); err == nil {
		t.Error("garbage should fail")
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 7
	if got := utils.DereferencePtr(&v); got != 7 {
		t.Errorf("DereferencePtr(&7) = %d", got)
	}
	if got := utils.DereferencePtr[int](nil, 3); got != 3 {
		t.Errorf("DereferencePtr(nil, 3) = %d", got)
	}
	if got := utils.DereferencePtr[string](nil); got != "" {
		t.Errorf("DereferencePtr(nil) = %q", got)
	}
}
