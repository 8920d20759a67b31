package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Trace is the loggable anatomy of an error: its typed code, the wrap chain
// and, when a store produced it, the backend's own diagnostics.
type Trace struct {
	Message string
	Code    Code
	Chain   []string

	// Backend is "grpc" or "postgres" when a store error sits in the chain.
	Backend    string
	Status     string
	Constraint string
	Table      string
	Detail     string
}

// Describe walks err and collects its Trace. A nil error yields the zero Trace.
func Describe(err error) Trace {
	if err == nil {
		return Trace{}
	}

	t := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		t.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		t.Chain = append(t.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	if code, ok := grpcCode(err); ok {
		t.Backend = "grpc"
		t.Status = code.String()
		return t
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		t.Backend = "postgres"
		t.Status, t.Constraint, t.Table, t.Detail = pgErr.Code, pgErr.ConstraintName, pgErr.TableName, pgErr.Detail
		return t
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		t.Backend = "postgres"
		t.Status, t.Constraint, t.Table, t.Detail = string(pqErr.Code), pqErr.Constraint, pqErr.Table, pqErr.Detail
	}
	return t
}

// Fields flattens the trace into log fields, leaving out what is empty.
func (t Trace) Fields() map[string]any {
	fields := map[string]any{"error": t.Message}
	if t.Code != "" {
		fields["error_code"] = string(t.Code)
	}
	if len(t.Chain) > 1 {
		fields["error_chain"] = t.Chain
	}
	if t.Backend == "" {
		return fields
	}
	prefix := "pg_"
	if t.Backend == "grpc" {
		prefix = "grpc_"
	}
	for key, value := range map[string]string{
		"code":       t.Status,
		"constraint": t.Constraint,
		"table":      t.Table,
		"detail":     t.Detail,
	} {
		if value != "" {
			fields[prefix+key] = value
		}
	}
	return fields
}
