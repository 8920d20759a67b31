package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestDescribeNil(t *testing.T) {
	assert.Equal(t, Trace{}, Describe(nil))
}

func TestDescribePostgresError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "idx_orders_sln", TableName: "orders"}
	err := Classify(fmt.Errorf("insert: %w", pgErr), "create order")

	trace := Describe(err)
	assert.Equal(t, CodeConflict, trace.Code)
	assert.Equal(t, "postgres", trace.Backend)

	fields := trace.Fields()
	assert.Equal(t, "CONFLICT", fields["error_code"])
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "idx_orders_sln", fields["pg_constraint"])
	assert.NotContains(t, fields, "pg_detail")
	assert.NotContains(t, fields, "grpc_code")
}

func TestDescribeGRPCError(t *testing.T) {
	err := Classify(status.Error(codes.Unavailable, "firestore down"), "list orders")

	fields := Describe(err).Fields()
	assert.Equal(t, "Unavailable", fields["grpc_code"])
	assert.Equal(t, "DEPENDENCY_ERROR", fields["error_code"])
	assert.NotContains(t, fields, "pg_code")
}

func TestDescribeUntypedError(t *testing.T) {
	fields := Describe(fmt.Errorf("plain")).Fields()
	assert.Equal(t, map[string]any{"error": "plain"}, fields)
}
