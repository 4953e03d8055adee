package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"omtours/models"
)

// View is which page the dashboard shows.
type View string

const (
	ViewForm      View = "form"
	ViewSubmitted View = "submitted"
)

// ErrSubmissionInFlight is returned when a submit arrives while the previous one has not settled.
var ErrSubmissionInFlight = errors.New("an itinerary request is already in progress")

// ErrNotSaved wraps a checkpoint failure during Submit.
var ErrNotSaved = errors.New("dashboard session not saved")

// Generator produces an itinerary for a validated trip request.
type Generator interface {
	Generate(ctx context.Context, trip models.TripRequest) (*models.ItineraryResponse, error)
}

// Session is one browser's dashboard state.
type Session struct {
	ID        string                    `json:"id"`
	Request   models.TripRequest        `json:"request"`
	Itinerary *models.ItineraryResponse `json:"itinerary,omitempty"`
	Submitted bool                      `json:"submitted"`
	Loading   bool                      `json:"loading"`
	Error     string                    `json:"error,omitempty"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.New().String(),
		Request:   models.NewTripRequest(),
		UpdatedAt: time.Now(),
	}
}

func (s *Session) View() View {
	if s.Submitted && s.Itinerary != nil {
		return ViewSubmitted
	}
	return ViewForm
}

// Edit replaces the form values and clears any error shown for the previous values.
func (s *Session) Edit(req models.TripRequest) {
	s.Request = req
	s.Error = ""
	s.touch()
}

// Validate checks the current form values. A failure becomes the session error.
func (s *Session) Validate() error {
	if err := s.Request.Validate(); err != nil {
		s.Error = err.Error()
		s.touch()
		return err
	}
	return nil
}

// Begin marks the session as waiting on the itinerary service. It fails while a previous
// request is still in flight or when the form is incomplete; neither case calls the service.
func (s *Session) Begin() error {
	if s.Loading {
		return ErrSubmissionInFlight
	}
	if err := s.Validate(); err != nil {
		return err
	}
	s.Loading = true
	s.Error = ""
	s.touch()
	return nil
}

// Settle records the outcome of the request started by Begin. On failure the previous
// itinerary and view are left untouched.
func (s *Session) Settle(itinerary *models.ItineraryResponse, err error) {
	s.Loading = false
	if err != nil {
		s.Error = err.Error()
	} else {
		s.Itinerary = itinerary
		s.Submitted = true
		s.Error = ""
	}
	s.touch()
}

// Checkpoint persists a session. Submit calls it once the session is marked as loading.
type Checkpoint func(s *Session) error

// Submit runs Begin, the generator and Settle in one step. A non-nil checkpoint runs between
// Begin and the generator; if it fails the generator is not called, the loading flag is
// cleared and the error is returned wrapped in ErrNotSaved.
func (s *Session) Submit(ctx context.Context, gen Generator, checkpoint Checkpoint) error {
	if err := s.Begin(); err != nil {
		return err
	}
	if checkpoint != nil {
		if err := checkpoint(s); err != nil {
			s.Loading = false
			return fmt.Errorf("%w: %w", ErrNotSaved, err)
		}
	}
	itinerary, err := gen.Generate(ctx, s.Request)
	s.Settle(itinerary, err)
	return err
}

// Reset discards the itinerary and returns to the form. Form values are kept.
func (s *Session) Reset() {
	s.Itinerary = nil
	s.Submitted = false
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}
