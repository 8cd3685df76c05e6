package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

var errBackendDown = errors.New("503 backend unavailable")

type fakeInserter struct {
	lastEvent *CalendarEvent
	calls     int
	err       error
}

func (f *fakeInserter) Insert(_ context.Context, ev *CalendarEvent) (*InsertedEvent, error) {
	f.calls++
	f.lastEvent = ev
	if f.err != nil {
		return nil, f.err
	}
	return &InsertedEvent{ID: "evt-1", Status: "confirmed", HTMLLink: "https://calendar.example/evt-1"}, nil
}

func newTestService(inserter *fakeInserter) (*Service, *InMemoryAttemptRepo) {
	repo := NewInMemoryAttemptRepo()
	return NewService(inserter, repo, "IST", zerolog.Nop()), repo
}

func TestService_Schedule(t *testing.T) {
	ins := &fakeInserter{}
	svc, repo := newTestService(ins)

	conf, err := svc.Schedule(context.Background(), MeetingRequest{
		PatientID: "P1", Date: "2024-05-01", Time: "14:00:00",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if ins.calls != 1 {
		t.Fatalf("expected exactly one insert, got %d", ins.calls)
	}
	if ins.lastEvent.Summary != "Meeting with P1" {
		t.Errorf("unexpected summary: %q", ins.lastEvent.Summary)
	}
	if ins.lastEvent.Start.DateTime != "2024-05-01T14:00:00" || ins.lastEvent.End.DateTime != "2024-05-01T14:30:00" {
		t.Errorf("unexpected event window: %+v .. %+v", ins.lastEvent.Start, ins.lastEvent.End)
	}
	if ins.lastEvent.Start.TimeZone != "IST" {
		t.Errorf("expected IST time zone, got %q", ins.lastEvent.Start.TimeZone)
	}

	if conf.Event.ID != "evt-1" {
		t.Errorf("unexpected confirmation: %+v", conf)
	}

	attempts, total, err := repo.List(context.Background(), "", 10, 0)
	if err != nil {
		t.Fatalf("List attempts: %v", err)
	}
	if total != 1 || !attempts[0].Succeeded {
		t.Errorf("expected one successful attempt, got %+v", attempts)
	}
	if attempts[0].EventID != "evt-1" {
		t.Errorf("expected attempt to carry event id, got %q", attempts[0].EventID)
	}
}

func TestService_ScheduleInvalidDate(t *testing.T) {
	ins := &fakeInserter{}
	svc, repo := newTestService(ins)

	_, err := svc.Schedule(context.Background(), MeetingRequest{
		PatientID: "P1", Date: "05/01/2024", Time: "14:00:00",
	})
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	if KindOf(err) != KindInvalidFormat {
		t.Errorf("expected invalid_format, got %q", KindOf(err))
	}
	if ins.calls != 0 {
		t.Errorf("calendar must not be called on invalid input, got %d calls", ins.calls)
	}

	attempts, _, _ := repo.List(context.Background(), "P1", 10, 0)
	if len(attempts) != 1 || attempts[0].Succeeded {
		t.Fatalf("expected one failed attempt, got %+v", attempts)
	}
	if attempts[0].ErrorKind != KindInvalidFormat {
		t.Errorf("expected invalid_format recorded, got %q", attempts[0].ErrorKind)
	}
}

func TestService_ScheduleMissingPatient(t *testing.T) {
	ins := &fakeInserter{}
	svc, _ := newTestService(ins)

	_, err := svc.Schedule(context.Background(), MeetingRequest{Date: "2024-05-01", Time: "14:00:00"})
	if KindOf(err) != KindInvalidFormat {
		t.Fatalf("expected invalid_format for missing patient_id, got %v", err)
	}
	if ins.calls != 0 {
		t.Errorf("calendar must not be called, got %d calls", ins.calls)
	}
}

func TestService_ScheduleCalendarFailureNoRetry(t *testing.T) {
	ins := &fakeInserter{err: errBackendDown}
	svc, repo := newTestService(ins)

	_, err := svc.Schedule(context.Background(), MeetingRequest{
		PatientID: "P1", Date: "2024-05-01", Time: "14:00:00",
	})
	if err == nil {
		t.Fatal("expected error when calendar rejects the event")
	}
	if KindOf(err) != KindExternalService {
		t.Errorf("expected external_service, got %q", KindOf(err))
	}
	if ins.calls != 1 {
		t.Errorf("failed submission must not be retried, got %d calls", ins.calls)
	}

	attempts, _, _ := repo.List(context.Background(), "P1", 10, 0)
	if len(attempts) != 1 || attempts[0].Succeeded {
		t.Fatalf("expected one failed attempt, got %+v", attempts)
	}
	if attempts[0].ErrorKind != KindExternalService {
		t.Errorf("expected external_service recorded, got %q", attempts[0].ErrorKind)
	}
}

func TestService_ListAttemptsFilterAndOrder(t *testing.T) {
	ins := &fakeInserter{}
	svc, _ := newTestService(ins)

	for _, req := range []MeetingRequest{
		{PatientID: "P1", Date: "2024-05-01", Time: "09:00:00"},
		{PatientID: "P2", Date: "2024-05-01", Time: "10:00:00"},
		{PatientID: "P1", Date: "2024-05-02", Time: "11:00:00"},
	} {
		if _, err := svc.Schedule(context.Background(), req); err != nil {
			t.Fatalf("Schedule: %v", err)
		}
	}

	attempts, total, err := svc.ListAttempts(context.Background(), "P1", 10, 0)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if total != 2 || len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for P1, got %d", total)
	}
	// newest first
	if attempts[0].Date != "2024-05-02" || attempts[1].Date != "2024-05-01" {
		t.Errorf("expected newest-first ordering, got %s then %s", attempts[0].Date, attempts[1].Date)
	}
}

func TestService_GetAttempt(t *testing.T) {
	ins := &fakeInserter{}
	svc, _ := newTestService(ins)

	if _, err := svc.Schedule(context.Background(), MeetingRequest{
		PatientID: "P1", Date: "2024-05-01", Time: "09:00:00",
	}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	attempts, _, err := svc.ListAttempts(context.Background(), "", 1, 0)
	if err != nil || len(attempts) != 1 {
		t.Fatalf("ListAttempts: %v (%d)", err, len(attempts))
	}

	got, err := svc.GetAttempt(context.Background(), attempts[0].ID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if got.PatientID != "P1" {
		t.Errorf("unexpected attempt: %+v", got)
	}
}
