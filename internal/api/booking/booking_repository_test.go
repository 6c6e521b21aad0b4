package booking

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/agent-service/internal/types"
)

func newMockRepo(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepositoryImpl(mockPool, slog.Default()), mockPool
}

func bookingDetailColumns() []string {
	return []string{
		"id", "check_in", "check_out", "number_of_guests", "party_type", "status",
		"property_name", "city", "state", "address", "bedrooms", "bathrooms",
		"amenities", "property_type",
	}
}

func TestGetBookingDetails(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("FROM bookings b").
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(bookingDetailColumns()).AddRow(
				int64(42), checkIn, checkOut, 2, "couple", "ACCEPTED",
				"Lakeview Loft", "Austin", "TX", "101 Lake Dr", 2, 1,
				[]byte(`["wifi","pool"]`), "house",
			))

		booking, err := repo.GetBookingDetails(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, int64(42), booking.BookingID)
		assert.Equal(t, "2026-03-10", booking.CheckIn)
		assert.Equal(t, "2026-03-13", booking.CheckOut)
		assert.Equal(t, "Austin, TX", booking.Destination())
		assert.Equal(t, []string{"wifi", "pool"}, booking.Amenities)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("FROM bookings b").
			WithArgs(int64(999)).
			WillReturnError(pgx.ErrNoRows)

		booking, err := repo.GetBookingDetails(context.Background(), 999)

		assert.Nil(t, booking)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("MalformedAmenitiesTolerated", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("FROM bookings b").
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows(bookingDetailColumns()).AddRow(
				int64(42), checkIn, checkOut, 2, "couple", "ACCEPTED",
				"Lakeview Loft", "Austin", "TX", "", 0, 0,
				[]byte(`not json`), "",
			))

		booking, err := repo.GetBookingDetails(context.Background(), 42)

		require.NoError(t, err)
		assert.Empty(t, booking.Amenities)
	})
}

func summaryColumns() []string {
	return []string{
		"id", "check_in", "check_out", "party_type", "status",
		"property_name", "city", "state", "property_type",
	}
}

func TestGetUserBookings(t *testing.T) {
	repo, mockPool := newMockRepo(t)
	mockPool.ExpectQuery("WHERE b.traveler_id").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(summaryColumns()).
			AddRow(int64(2), time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
				"family", "PENDING", "Hill Cabin", "Fredericksburg", "TX", "cabin").
			AddRow(int64(1), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC),
				"couple", "ACCEPTED", "Lakeview Loft", "Austin", "TX", "house"))

	summaries, err := repo.GetUserBookings(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, int64(2), summaries[0].ID)
	assert.Equal(t, "2026-06-01", summaries[0].CheckIn)
	assert.Equal(t, "Austin", summaries[1].City)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetUserBookingHistory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("check_out < CURRENT_DATE").
			WithArgs(int64(7), 3).
			WillReturnRows(pgxmock.NewRows(summaryColumns()).
				AddRow(int64(5), time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC),
					"couple", "ACCEPTED", "Beach House", "Galveston", "TX", "house"))

		history, err := repo.GetUserBookingHistory(context.Background(), 7, 3)

		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "2025-08-04", history[0].CheckOut)
	})

	t.Run("QueryError", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("check_out < CURRENT_DATE").
			WithArgs(int64(7), 3).
			WillReturnError(errors.New("connection reset"))

		history, err := repo.GetUserBookingHistory(context.Background(), 7, 3)

		assert.Nil(t, history)
		assert.Error(t, err)
	})
}

func TestSaveItinerary(t *testing.T) {
	itinerary := &types.GeneratedItinerary{WeatherSummary: "Sunny"}
	tableName := "itineraries"

	t.Run("TableMissingSkipsQuietly", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("to_regclass").
			WillReturnRows(pgxmock.NewRows([]string{"to_regclass"}).AddRow(nil))

		saved, err := repo.SaveItinerary(context.Background(), 42, 7, itinerary)

		assert.False(t, saved)
		assert.NoError(t, err)
	})

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("to_regclass").
			WillReturnRows(pgxmock.NewRows([]string{"to_regclass"}).AddRow(&tableName))
		mockPool.ExpectExec("INSERT INTO itineraries").
			WithArgs(pgxmock.AnyArg(), int64(42), int64(7), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		saved, err := repo.SaveItinerary(context.Background(), 42, 7, itinerary)

		assert.True(t, saved)
		assert.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("InsertError", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("to_regclass").
			WillReturnRows(pgxmock.NewRows([]string{"to_regclass"}).AddRow(&tableName))
		mockPool.ExpectExec("INSERT INTO itineraries").
			WithArgs(pgxmock.AnyArg(), int64(42), int64(7), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("insert failed"))

		saved, err := repo.SaveItinerary(context.Background(), 42, 7, itinerary)

		assert.False(t, saved)
		assert.Error(t, err)
	})
}

func TestConnectionProbe(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("SELECT 1").
			WillReturnRows(pgxmock.NewRows([]string{"?column?"}).AddRow(1))

		assert.True(t, repo.TestConnection(context.Background()))
	})

	t.Run("Down", func(t *testing.T) {
		repo, mockPool := newMockRepo(t)
		mockPool.ExpectQuery("SELECT 1").
			WillReturnError(errors.New("no connection"))

		assert.False(t, repo.TestConnection(context.Background()))
	})
}
