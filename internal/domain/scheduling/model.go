package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"

	// Follow-up meetings are a fixed half hour.
	meetingDuration = 30 * time.Minute

	eventDescription = "Follow-up meeting for mental health check-in."
)

// MeetingRequest is the operator's input for booking a follow-up meeting.
// Date and Time arrive as strings straight from the dashboard controls.
type MeetingRequest struct {
	PatientID string `json:"patient_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// EventTime is one boundary of a calendar event: a wall-clock timestamp with
// no UTC offset, paired with a named time zone the calendar backend resolves.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CalendarEvent is the payload submitted to the external calendar.
type CalendarEvent struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       EventTime `json:"start"`
	End         EventTime `json:"end"`
}

// InsertedEvent is what the calendar backend reports for a created event.
type InsertedEvent struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	HTMLLink string `json:"htmlLink"`
}

// Confirmation is returned to the operator after a successful booking.
type Confirmation struct {
	PatientID string        `json:"patient_id"`
	Start     EventTime     `json:"start"`
	End       EventTime     `json:"end"`
	Event     InsertedEvent `json:"event"`
}

// Attempt is the diagnostic record of one scheduling try, successful or not.
type Attempt struct {
	ID        uuid.UUID `json:"id"`
	PatientID string    `json:"patient_id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Succeeded bool      `json:"succeeded"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`
	EventID   string    `json:"event_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorKind distinguishes operator mistakes from backend failures.
type ErrorKind string

const (
	KindInvalidFormat   ErrorKind = "invalid_format"
	KindExternalService ErrorKind = "external_service"
)

// Error is a classified scheduling failure. Handlers map the kind onto an
// HTTP status; everything else about the failure lives in the wrapped cause.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func invalidFormat(msg string, cause error) *Error {
	return &Error{Kind: KindInvalidFormat, Message: msg, cause: cause}
}

func externalService(msg string, cause error) *Error {
	return &Error{Kind: KindExternalService, Message: msg, cause: cause}
}

// KindOf classifies an error returned by the scheduling service. Errors that
// did not originate here report an empty kind.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// ParseMeetingTime validates the raw date and time strings and combines them
// into the meeting's start and end wall-clock timestamps.
func ParseMeetingTime(date, clock string) (start, end time.Time, err error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, invalidFormat(fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date), err)
	}
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, time.Time{}, invalidFormat(fmt.Sprintf("invalid time %q, want HH:MM:SS", clock), err)
	}

	start = time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	return start, start.Add(meetingDuration), nil
}

// NewCalendarEvent builds the event payload for a patient follow-up. The
// timestamps render without an offset so the named zone alone places them.
func NewCalendarEvent(patientID string, start, end time.Time, timeZone string) *CalendarEvent {
	return &CalendarEvent{
		Summary:     fmt.Sprintf("Meeting with %s", patientID),
		Description: eventDescription,
		Start:       EventTime{DateTime: start.Format("2006-01-02T15:04:05"), TimeZone: timeZone},
		End:         EventTime{DateTime: end.Format("2006-01-02T15:04:05"), TimeZone: timeZone},
	}
}
