package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestParseMeetingTime(t *testing.T) {
	start, end, err := ParseMeetingTime("2024-05-01", "14:00:00")
	if err != nil {
		t.Fatalf("ParseMeetingTime: %v", err)
	}
	if got := start.Format("2006-01-02T15:04:05"); got != "2024-05-01T14:00:00" {
		t.Errorf("unexpected start: %s", got)
	}
	if end.Sub(start) != 30*time.Minute {
		t.Errorf("expected 30 minute duration, got %s", end.Sub(start))
	}
}

func TestParseMeetingTime_EndCrossesMidnight(t *testing.T) {
	start, end, err := ParseMeetingTime("2024-05-01", "23:45:00")
	if err != nil {
		t.Fatalf("ParseMeetingTime: %v", err)
	}
	if end.Day() != start.Day()+1 {
		t.Errorf("expected end on next day, got %s", end)
	}
	if got := end.Format("15:04:05"); got != "00:15:00" {
		t.Errorf("unexpected end time: %s", got)
	}
}

func TestParseMeetingTime_InvalidInput(t *testing.T) {
	cases := []struct {
		name  string
		date  string
		clock string
	}{
		{"bad date format", "01-05-2024", "14:00:00"},
		{"not a date", "someday", "14:00:00"},
		{"bad time format", "2024-05-01", "2pm"},
		{"missing seconds", "2024-05-01", "14:00"},
		{"empty date", "", "14:00:00"},
		{"empty time", "2024-05-01", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseMeetingTime(tc.date, tc.clock)
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindInvalidFormat {
				t.Errorf("expected invalid_format kind, got %q", KindOf(err))
			}
		})
	}
}

func TestNewCalendarEvent(t *testing.T) {
	start, end, err := ParseMeetingTime("2024-05-01", "14:00:00")
	if err != nil {
		t.Fatalf("ParseMeetingTime: %v", err)
	}

	ev := NewCalendarEvent("P1", start, end, "IST")
	if ev.Summary != "Meeting with P1" {
		t.Errorf("unexpected summary: %q", ev.Summary)
	}
	if ev.Description != "Follow-up meeting for mental health check-in." {
		t.Errorf("unexpected description: %q", ev.Description)
	}
	if ev.Start.DateTime != "2024-05-01T14:00:00" || ev.Start.TimeZone != "IST" {
		t.Errorf("unexpected start: %+v", ev.Start)
	}
	if ev.End.DateTime != "2024-05-01T14:30:00" || ev.End.TimeZone != "IST" {
		t.Errorf("unexpected end: %+v", ev.End)
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(invalidFormat("bad", nil)); got != KindInvalidFormat {
		t.Errorf("expected invalid_format, got %q", got)
	}
	if got := KindOf(externalService("down", errors.New("503"))); got != KindExternalService {
		t.Errorf("expected external_service, got %q", got)
	}
	if got := KindOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty kind for foreign error, got %q", got)
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := externalService("calendar rejected event", cause)
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}
