package resilience

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Class determines how an error is handled by the retry loop.
type Class int

const (
	// ClassPermanent errors (constraint violations, not-found, validation)
	// propagate to the caller on first occurrence without delay.
	ClassPermanent Class = iota
	// ClassTransient errors (dropped connections, timeouts, pool exhaustion)
	// are expected to resolve by retrying.
	ClassTransient
)

func (c Class) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "permanent"
}

// SQLSTATEs that indicate a connection-level failure rather than a problem
// with the statement itself. Class 08 covers connection exceptions; the rest
// are the shutdown/saturation codes managed Postgres providers emit when
// they recycle backends.
var transientPgCodes = map[string]bool{
	"57P01": true, // admin_shutdown
	"57P02": true, // crash_shutdown
	"57P03": true, // cannot_connect_now
	"53300": true, // too_many_connections
}

// ErrAttemptTimeout marks an attempt that blew its per-attempt budget while
// the caller's context remained live. The executor wraps such failures so
// they classify as transient rather than as caller cancellation.
var ErrAttemptTimeout = errors.New("attempt timed out")

// Classify determines whether an error is worth retrying.
func Classify(err error) Class {
	if err == nil {
		return ClassPermanent // Should not happen
	}

	if errors.Is(err, ErrAttemptTimeout) {
		return ClassTransient
	}

	// A dead caller context makes retrying pointless.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassPermanent
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassTransient
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") || transientPgCodes[pgErr.Code] {
			return ClassTransient
		}
		return ClassPermanent
	}

	// Drivers and poolers flatten some connection failures into plain strings.
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection reset") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection closed") ||
		strings.Contains(s, "conn closed") ||
		strings.Contains(s, "broken pipe") ||
		strings.Contains(s, "bad connection") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "connection pool exhausted") ||
		strings.Contains(s, "server closed the connection unexpectedly") ||
		strings.Contains(s, "unexpected eof") {
		return ClassTransient
	}

	return ClassPermanent
}
