package hotel

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsStayConflictMatchesUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "uq_hotel_bookings_stay"}
	require.True(t, isStayConflict(err))
}

func TestIsStayConflictMatchesWrappedError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "uq_hotel_bookings_stay"}
	require.True(t, isStayConflict(fmt.Errorf("insert booking: %w", pgErr)))
}

func TestIsStayConflictIgnoresOtherConstraints(t *testing.T) {
	require.False(t, isStayConflict(&pgconn.PgError{Code: "23505", ConstraintName: "hotel_bookings_pkey"}))
	require.False(t, isStayConflict(fmt.Errorf("connection reset")))
	require.False(t, isStayConflict(nil))
}
