package errors

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Classify converts a raw backend error into a typed Error, separating missing records,
// transient failures (CodeDependency) and permanent ones (CodeInternal).
// Errors that are already typed pass through unchanged.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}
	return Wrap(classifyCode(err), err, message)
}

func classifyCode(err error) Code {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CodeDependency
	}

	if code, ok := grpcCode(err); ok {
		switch code {
		case codes.NotFound:
			return CodeNotFound
		case codes.AlreadyExists:
			return CodeConflict
		case codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.ResourceExhausted, codes.Canceled:
			return CodeDependency
		default:
			return CodeInternal
		}
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return codeForSQLState(pgxErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return codeForSQLState(string(pqErr.Code))
	}
	if pgconn.SafeToRetry(err) {
		return CodeDependency
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeDependency
	}

	return CodeInternal
}

func grpcCode(err error) (codes.Code, bool) {
	st, ok := status.FromError(err)
	if !ok || st == nil {
		return codes.Unknown, false
	}
	return st.Code(), true
}

// codeForSQLState maps Postgres SQLSTATE values onto the error taxonomy.
func codeForSQLState(state string) Code {
	switch {
	case state == "23505":
		return CodeConflict
	case state == "40001", state == "40P01":
		return CodeDependency
	case strings.HasPrefix(state, "08"), strings.HasPrefix(state, "53"), strings.HasPrefix(state, "57P"):
		return CodeDependency
	default:
		return CodeInternal
	}
}
