package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/internal/api"
	"github.com/wanderplan/agent-service/internal/types"
)

const dateLayout = "2006-01-02"

var _ Repository = (*RepositoryImpl)(nil)

// Repository reads booking and property data owned by the booking system,
// and optionally persists generated itineraries.
type Repository interface {
	GetBookingDetails(ctx context.Context, bookingID int64) (*types.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]types.BookingSummary, error)
	GetUserBookingHistory(ctx context.Context, userID int64, limit int) ([]types.BookingSummary, error)
	SaveItinerary(ctx context.Context, bookingID, userID int64, itinerary *types.GeneratedItinerary) (bool, error)
	TestConnection(ctx context.Context) bool
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool api.PGXPool
}

func NewRepositoryImpl(pgpool api.PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// GetBookingDetails fetches one booking joined with its property. Returns
// types.ErrNotFound when no such booking exists.
func (r *RepositoryImpl) GetBookingDetails(ctx context.Context, bookingID int64) (*types.Booking, error) {
	ctx, span := otel.Tracer("BookingRepo").Start(ctx, "GetBookingDetails", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
	))
	defer span.End()

	query := `
		SELECT
			b.id,
			b.check_in,
			b.check_out,
			b.number_of_guests,
			b.party_type,
			b.status,
			p.property_name,
			p.city,
			p.state,
			COALESCE(p.address, ''),
			COALESCE(p.bedrooms, 0),
			COALESCE(p.bathrooms, 0),
			COALESCE(p.amenities, '[]'::jsonb),
			COALESCE(p.property_type, '')
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE b.id = $1`

	var booking types.Booking
	var checkIn, checkOut time.Time
	var amenitiesJSON []byte
	err := r.pgpool.QueryRow(ctx, query, bookingID).Scan(
		&booking.BookingID,
		&checkIn,
		&checkOut,
		&booking.NumberOfGuests,
		&booking.PartyType,
		&booking.Status,
		&booking.PropertyName,
		&booking.City,
		&booking.State,
		&booking.Address,
		&booking.Bedrooms,
		&booking.Bathrooms,
		&amenitiesJSON,
		&booking.PropertyType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Booking not found", slog.Int64("booking_id", bookingID))
			return nil, fmt.Errorf("booking %d: %w", bookingID, types.ErrNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch booking %d: %w", bookingID, err)
	}

	booking.CheckIn = checkIn.Format(dateLayout)
	booking.CheckOut = checkOut.Format(dateLayout)
	if err := json.Unmarshal(amenitiesJSON, &booking.Amenities); err != nil {
		// Malformed amenities should not sink the whole booking.
		r.logger.WarnContext(ctx, "Could not decode amenities", slog.Any("error", err))
		booking.Amenities = []string{}
	}

	r.logger.InfoContext(ctx, "Booking fetched",
		slog.Int64("booking_id", bookingID),
		slog.String("city", booking.City),
		slog.String("state", booking.State),
	)
	span.SetStatus(codes.Ok, "Booking retrieved")
	return &booking, nil
}

// GetUserBookings lists all bookings for a traveler, newest check-in first.
func (r *RepositoryImpl) GetUserBookings(ctx context.Context, userID int64) ([]types.BookingSummary, error) {
	ctx, span := otel.Tracer("BookingRepo").Start(ctx, "GetUserBookings", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	query := `
		SELECT
			b.id,
			b.check_in,
			b.check_out,
			b.party_type,
			b.status,
			p.property_name,
			p.city,
			p.state,
			COALESCE(p.property_type, '')
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE b.traveler_id = $1
		ORDER BY b.check_in DESC`

	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch bookings for user %d: %w", userID, err)
	}
	defer rows.Close()

	summaries, err := scanBookingSummaries(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "User bookings fetched", slog.Int64("user_id", userID), slog.Int("count", len(summaries)))
	span.SetStatus(codes.Ok, "Bookings retrieved")
	return summaries, nil
}

// GetUserBookingHistory lists completed past stays, most recent first, for
// planning context.
func (r *RepositoryImpl) GetUserBookingHistory(ctx context.Context, userID int64, limit int) ([]types.BookingSummary, error) {
	ctx, span := otel.Tracer("BookingRepo").Start(ctx, "GetUserBookingHistory", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int("limit", limit),
	))
	defer span.End()

	query := `
		SELECT
			b.id,
			b.check_in,
			b.check_out,
			b.party_type,
			b.status,
			p.property_name,
			p.city,
			p.state,
			COALESCE(p.property_type, '')
		FROM bookings b
		JOIN properties p ON b.property_id = p.id
		WHERE b.traveler_id = $1
		  AND b.status = 'ACCEPTED'
		  AND b.check_out < CURRENT_DATE
		ORDER BY b.check_out DESC
		LIMIT $2`

	rows, err := r.pgpool.Query(ctx, query, userID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch booking history for user %d: %w", userID, err)
	}
	defer rows.Close()

	summaries, err := scanBookingSummaries(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	r.logger.InfoContext(ctx, "Booking history fetched", slog.Int64("user_id", userID), slog.Int("count", len(summaries)))
	span.SetStatus(codes.Ok, "Booking history retrieved")
	return summaries, nil
}

// SaveItinerary persists a generated plan when the itineraries table exists.
// The table is optional, so a missing table reports false without error.
func (r *RepositoryImpl) SaveItinerary(ctx context.Context, bookingID, userID int64, itinerary *types.GeneratedItinerary) (bool, error) {
	ctx, span := otel.Tracer("BookingRepo").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
	))
	defer span.End()

	var tableName *string
	err := r.pgpool.QueryRow(ctx, `SELECT to_regclass('public.itineraries')::text`).Scan(&tableName)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check itineraries table: %w", err)
	}
	if tableName == nil {
		r.logger.WarnContext(ctx, "itineraries table does not exist, skipping save")
		return false, nil
	}

	itineraryJSON, err := json.Marshal(itinerary)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to marshal itinerary: %w", err)
	}

	_, err = r.pgpool.Exec(ctx, `
		INSERT INTO itineraries (id, booking_id, user_id, itinerary_data, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), bookingID, userID, itineraryJSON, time.Now().UTC(),
	)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to save itinerary for booking %d: %w", bookingID, err)
	}

	r.logger.InfoContext(ctx, "Itinerary saved", slog.Int64("booking_id", bookingID))
	span.SetStatus(codes.Ok, "Itinerary saved")
	return true, nil
}

// TestConnection reports whether the database answers a trivial query.
func (r *RepositoryImpl) TestConnection(ctx context.Context) bool {
	var one int
	if err := r.pgpool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		r.logger.WarnContext(ctx, "Database connection test failed", slog.Any("error", err))
		return false
	}
	return true
}

func scanBookingSummaries(rows pgx.Rows) ([]types.BookingSummary, error) {
	var summaries []types.BookingSummary
	for rows.Next() {
		var s types.BookingSummary
		var checkIn, checkOut time.Time
		if err := rows.Scan(
			&s.ID,
			&checkIn,
			&checkOut,
			&s.PartyType,
			&s.Status,
			&s.PropertyName,
			&s.City,
			&s.State,
			&s.PropertyType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking summary: %w", err)
		}
		s.CheckIn = checkIn.Format(dateLayout)
		s.CheckOut = checkOut.Format(dateLayout)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking rows failed: %w", err)
	}
	return summaries, nil
}
