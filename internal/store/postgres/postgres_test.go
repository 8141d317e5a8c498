package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/notekeeper/backend/internal/store"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "duplicate_email_exact",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"},
			want: store.ErrEmailTaken,
		},
		{
			name: "duplicate_email_case_variant",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email_lower"},
			want: store.ErrEmailTaken,
		},
		{
			name: "duplicate_note_id",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "notes_pkey"},
			want: store.ErrConflict,
		},
		{
			name: "missing_owner",
			err:  &pgconn.PgError{Code: "23503", ConstraintName: "notes_user_id_fkey"},
			want: store.ErrNotFound,
		},
		{
			name: "connectivity_failure",
			err:  errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			want: store.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)

			if !errors.Is(got, tt.want) {
				t.Fatalf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
