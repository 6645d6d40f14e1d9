package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestParseTimeDate(t *testing.T) {
	got, ok := ParseTime("2024-03-01")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestNextDatesCrossesMonthEnd(t *testing.T) {
	last := time.Date(2024, 2, 27, 15, 30, 0, 0, time.UTC)
	got := NextDates(last, 7)
	if len(got) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(got))
	}
	want := []string{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}
	for i, d := range got {
		if d.Format(DateLayout) != want[i] {
			t.Fatalf("date %d: got %s want %s", i, d.Format(DateLayout), want[i])
		}
	}
}

func TestSameDate(t *testing.T) {
	a := time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC)
	if !SameDate(a, a.Add(30*time.Second)) {
		t.Fatalf("expected same date")
	}
	if SameDate(a, a.Add(2*time.Minute)) {
		t.Fatalf("expected different date")
	}
}
