package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventInserter submits a single event to an external calendar. The HTTP
// client in internal/platform/calendar implements it; tests substitute fakes.
type EventInserter interface {
	Insert(ctx context.Context, ev *CalendarEvent) (*InsertedEvent, error)
}

type Service struct {
	inserter EventInserter
	attempts AttemptRepository
	timeZone string
	log      zerolog.Logger
}

func NewService(inserter EventInserter, attempts AttemptRepository, timeZone string, log zerolog.Logger) *Service {
	return &Service{inserter: inserter, attempts: attempts, timeZone: timeZone, log: log}
}

// Schedule books a 30-minute follow-up meeting for a patient. Input
// validation failures report KindInvalidFormat; calendar failures report
// KindExternalService. A failed submission is not retried. Every try,
// successful or not, lands in the attempt log.
func (s *Service) Schedule(ctx context.Context, req MeetingRequest) (*Confirmation, error) {
	if req.PatientID == "" {
		err := invalidFormat("patient_id is required", nil)
		s.recordAttempt(ctx, req, nil, err)
		return nil, err
	}

	start, end, err := ParseMeetingTime(req.Date, req.Time)
	if err != nil {
		var serr *Error
		errors.As(err, &serr)
		s.recordAttempt(ctx, req, nil, serr)
		return nil, err
	}

	event := NewCalendarEvent(req.PatientID, start, end, s.timeZone)

	// Log the exact payload before submission so a rejected event can be
	// diagnosed from the server log alone.
	s.log.Info().
		Str("patient_id", req.PatientID).
		Str("summary", event.Summary).
		Str("start", event.Start.DateTime).
		Str("end", event.End.DateTime).
		Str("time_zone", s.timeZone).
		Msg("submitting calendar event")

	inserted, err := s.inserter.Insert(ctx, event)
	if err != nil {
		serr := externalService("calendar rejected event", err)
		s.log.Error().Err(err).Str("patient_id", req.PatientID).Msg("calendar submission failed")
		s.recordAttempt(ctx, req, nil, serr)
		return nil, serr
	}

	s.log.Info().
		Str("patient_id", req.PatientID).
		Str("event_id", inserted.ID).
		Msg("meeting scheduled")
	s.recordAttempt(ctx, req, inserted, nil)

	return &Confirmation{
		PatientID: req.PatientID,
		Start:     event.Start,
		End:       event.End,
		Event:     *inserted,
	}, nil
}

// GetAttempt returns one diagnostic record.
func (s *Service) GetAttempt(ctx context.Context, id uuid.UUID) (*Attempt, error) {
	return s.attempts.GetByID(ctx, id)
}

// ListAttempts returns the diagnostic trail, newest first, optionally
// narrowed to one patient.
func (s *Service) ListAttempts(ctx context.Context, patientID string, limit, offset int) ([]*Attempt, int, error) {
	return s.attempts.List(ctx, patientID, limit, offset)
}

func (s *Service) recordAttempt(ctx context.Context, req MeetingRequest, inserted *InsertedEvent, serr *Error) {
	a := &Attempt{
		ID:        uuid.New(),
		PatientID: req.PatientID,
		Date:      req.Date,
		Time:      req.Time,
		Succeeded: serr == nil,
		CreatedAt: time.Now(),
	}
	if serr != nil {
		a.ErrorKind = serr.Kind
		a.Error = serr.Error()
	}
	if inserted != nil {
		a.EventID = inserted.ID
	}
	if err := s.attempts.Create(ctx, a); err != nil {
		// The attempt log is diagnostics, never a reason to fail a booking.
		s.log.Error().Err(err).Str("patient_id", req.PatientID).Msg("record scheduling attempt")
	}
}
