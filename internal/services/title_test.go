package services

import (
	"context"
	"errors"
	"testing"

	"campus-backend/internal/models"
)

type stubTitleGen struct {
	title string
	err   error
	calls int
}

func (s *stubTitleGen) GenerateTitle(ctx context.Context, requestType, description string) (string, error) {
	s.calls++
	return s.title, s.err
}

func TestDeriveTitle(t *testing.T) {
	ctx := context.Background()
	const requestID = "REQ-ABCDEFGHJK"

	t.Run("uses generated title", func(t *testing.T) {
		gen := &stubTitleGen{title: "Projector repair in room 204"}
		got := deriveTitle(ctx, gen, models.RequestTypeJob, "the projector is broken", requestID)
		if got != "Projector repair in room 204" {
			t.Errorf("deriveTitle() = %q, want the generated title", got)
		}
	})

	t.Run("generator failure falls back to request id", func(t *testing.T) {
		gen := &stubTitleGen{err: errors.New("connection refused")}
		got := deriveTitle(ctx, gen, models.RequestTypeJob, "the projector is broken", requestID)
		if got != requestID {
			t.Errorf("deriveTitle() = %q, want fallback %q", got, requestID)
		}
	})

	t.Run("empty generated title falls back", func(t *testing.T) {
		gen := &stubTitleGen{title: ""}
		if got := deriveTitle(ctx, gen, models.RequestTypeVenue, "seminar", requestID); got != requestID {
			t.Errorf("deriveTitle() = %q, want fallback %q", got, requestID)
		}
	})

	t.Run("nil generator falls back without panicking", func(t *testing.T) {
		if got := deriveTitle(ctx, nil, models.RequestTypeVenue, "seminar", requestID); got != requestID {
			t.Errorf("deriveTitle() = %q, want fallback %q", got, requestID)
		}
	})

	t.Run("blank description skips the generator", func(t *testing.T) {
		gen := &stubTitleGen{title: "should not be used"}
		if got := deriveTitle(ctx, gen, models.RequestTypeVenue, "   ", requestID); got != requestID {
			t.Errorf("deriveTitle() = %q, want fallback %q", got, requestID)
		}
		if gen.calls != 0 {
			t.Errorf("generator called %d times for blank description, want 0", gen.calls)
		}
	})
}
