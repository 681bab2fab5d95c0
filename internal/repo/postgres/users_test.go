package postgres

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"accounthub/internal/domain/user"

	"github.com/jackc/pgx/v5/pgconn"
)

func strPtr(s string) *string {
	return &s
}

func TestBuildUserUpdate(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		id        int64
		req       user.UpdateRequest
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "name_only",
			id:        7,
			req:       user.UpdateRequest{Name: strPtr("Ann")},
			wantQuery: `UPDATE users SET name = $1, updated_at = $2 WHERE id = $3 RETURNING ` + userColumns,
			wantArgs:  []interface{}{"Ann", now, int64(7)},
		},
		{
			name:      "email_only",
			id:        7,
			req:       user.UpdateRequest{Email: strPtr("ann@x.com")},
			wantQuery: `UPDATE users SET email = $1, updated_at = $2 WHERE id = $3 RETURNING ` + userColumns,
			wantArgs:  []interface{}{"ann@x.com", now, int64(7)},
		},
		{
			name:      "role_only",
			id:        9,
			req:       user.UpdateRequest{Role: strPtr(user.RoleAdmin)},
			wantQuery: `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3 RETURNING ` + userColumns,
			wantArgs:  []interface{}{user.RoleAdmin, now, int64(9)},
		},
		{
			name:      "name_and_role",
			id:        3,
			req:       user.UpdateRequest{Name: strPtr("Bob"), Role: strPtr(user.RoleUser)},
			wantQuery: `UPDATE users SET name = $1, role = $2, updated_at = $3 WHERE id = $4 RETURNING ` + userColumns,
			wantArgs:  []interface{}{"Bob", user.RoleUser, now, int64(3)},
		},
		{
			name: "all_fields",
			id:   42,
			req: user.UpdateRequest{
				Name:  strPtr("Carol"),
				Email: strPtr("carol@x.com"),
				Role:  strPtr(user.RoleAdmin),
			},
			wantQuery: `UPDATE users SET name = $1, email = $2, role = $3, updated_at = $4 WHERE id = $5 RETURNING ` + userColumns,
			wantArgs:  []interface{}{"Carol", "carol@x.com", user.RoleAdmin, now, int64(42)},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			query, args := buildUserUpdate(tt.id, tt.req, now)

			if query != tt.wantQuery {
				t.Fatalf("query mismatch:\n got  %s\n want %s", query, tt.wantQuery)
			}

			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("args mismatch:\n got  %#v\n want %#v", args, tt.wantArgs)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unique_violation",
			err:  &pgconn.PgError{Code: "23505"},
			want: true,
		},
		{
			name: "wrapped_unique_violation",
			err:  fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "other_pg_error",
			err:  &pgconn.PgError{Code: "40001"},
			want: false,
		},
		{
			name: "plain_error",
			err:  fmt.Errorf("connection refused"),
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}
