package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/youyoumu/hanayomi/internal/domain"
)

func TestMapError_Nil(t *testing.T) {
	t.Parallel()

	if got := MapError(nil, "dictionary", 1); got != nil {
		t.Errorf("MapError(nil) = %v, want nil", got)
	}
}

func TestMapError_NoRows(t *testing.T) {
	t.Parallel()

	got := MapError(fmt.Errorf("scan row: %w", pgx.ErrNoRows), "dictionary", 7)

	if !errors.Is(got, domain.ErrNotFound) {
		t.Errorf("MapError(ErrNoRows) does not wrap domain.ErrNotFound: %v", got)
	}
	if want := "dictionary 7: not found"; got.Error() != want {
		t.Errorf("MapError(ErrNoRows).Error() = %q, want %q", got.Error(), want)
	}
}

func TestMapError_PgCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want error
	}{
		{"23503", domain.ErrNotFound},
		{"23502", domain.ErrValidation},
		{"23514", domain.ErrValidation},
		{"22P02", domain.ErrValidation},
		{"40P01", domain.ErrStore},
		{"08006", domain.ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			t.Parallel()

			pgErr := &pgconn.PgError{Code: tt.code, Message: "boom"}
			got := MapError(pgErr, "dictionary_entry", 3)

			if !errors.Is(got, tt.want) {
				t.Errorf("MapError(%s) does not wrap %v: %v", tt.code, tt.want, got)
			}
			var unwrapped *pgconn.PgError
			if !errors.As(got, &unwrapped) {
				t.Errorf("MapError(%s) lost the PgError cause", tt.code)
			}
		})
	}
}

func TestMapError_ContextPassThrough(t *testing.T) {
	t.Parallel()

	for _, cause := range []error{context.Canceled, context.DeadlineExceeded} {
		got := MapError(cause, "dictionary", 1)
		if !errors.Is(got, cause) {
			t.Errorf("MapError(%v) should pass the context error through: %v", cause, got)
		}
		if errors.Is(got, domain.ErrStore) {
			t.Errorf("MapError(%v) must not be reported as a store error", cause)
		}
	}
}

func TestMapError_Unknown(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	got := MapError(cause, "definition_tag", 2)

	if !errors.Is(got, domain.ErrStore) || !errors.Is(got, cause) {
		t.Errorf("MapError(unknown) = %v, want ErrStore wrapping the cause", got)
	}
}
