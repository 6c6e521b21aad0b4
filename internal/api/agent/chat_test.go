package agent

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/agent-service/internal/types"
)

func chatService(bookings *MockBookingRepo, ragSvc *MockRAGService, search *MockSearchService, policies *MockPolicyService) *ServiceImpl {
	return NewServiceImpl(bookings, ragSvc, search, policies, offlineAIClient(), slog.Default())
}

func TestHandleChat_Bookings(t *testing.T) {
	future := time.Now().AddDate(0, 2, 0).Format("2006-01-02")
	past := "2020-01-05"

	t.Run("ListsActiveBookings", func(t *testing.T) {
		ctx := context.Background()
		bookings := new(MockBookingRepo)
		bookings.On("GetUserBookings", mock.Anything, int64(7)).Return([]types.BookingSummary{
			{ID: 1, PropertyName: "Lakeview Loft", City: "Austin", State: "TX", Status: "ACCEPTED", CheckOut: future},
			{ID: 2, PropertyName: "Hill Cabin", City: "Fredericksburg", State: "TX", Status: "PENDING", CheckOut: future},
			{ID: 3, PropertyName: "Old Stay", City: "Dallas", State: "TX", Status: "ACCEPTED", CheckOut: past},
			{ID: 4, PropertyName: "Declined", City: "Houston", State: "TX", Status: "REJECTED", CheckOut: future},
		}, nil).Once()

		svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
		resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "What are my bookings?"})

		assert.Contains(t, resp.Message, "2 active booking(s)")
		assert.Contains(t, resp.Message, "Lakeview Loft in Austin, TX")
		assert.Contains(t, resp.Message, "Hill Cabin in Fredericksburg, TX")
		data, ok := resp.Data.([]types.BookingSummary)
		require.True(t, ok)
		assert.Len(t, data, 2)
		bookings.AssertExpectations(t)
	})

	t.Run("EnumeratesAtMostThree", func(t *testing.T) {
		ctx := context.Background()
		summaries := make([]types.BookingSummary, 5)
		for i := range summaries {
			summaries[i] = types.BookingSummary{
				ID: int64(i + 1), PropertyName: "Stay", City: "Austin", State: "TX",
				Status: "ACCEPTED", CheckOut: future,
			}
		}
		bookings := new(MockBookingRepo)
		bookings.On("GetUserBookings", mock.Anything, int64(7)).Return(summaries, nil).Once()

		svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
		resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "show my reservations"})

		assert.Contains(t, resp.Message, "5 active booking(s)")
		assert.Contains(t, resp.Message, "...and 2 more")
	})

	t.Run("NoActiveBookings", func(t *testing.T) {
		ctx := context.Background()
		bookings := new(MockBookingRepo)
		bookings.On("GetUserBookings", mock.Anything, int64(7)).Return([]types.BookingSummary{}, nil).Once()

		svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
		resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "any upcoming trip?"})

		assert.Contains(t, resp.Message, "don't have any active bookings")
		assert.Nil(t, resp.Data)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		ctx := context.Background()
		bookings := new(MockBookingRepo)
		bookings.On("GetUserBookings", mock.Anything, int64(7)).
			Return(nil, errors.New("database down")).Once()

		svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
		resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "my bookings"})

		assert.Equal(t, apologyMessage, resp.Message)
	})
}

func TestHandleChat_Clarify(t *testing.T) {
	ctx := context.Background()
	svc := chatService(new(MockBookingRepo), new(MockRAGService), new(MockSearchService), new(MockPolicyService))

	resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "Please plan something fun"})

	assert.Contains(t, resp.Message, "booking id")
}

func TestHandleChat_Plan(t *testing.T) {
	ctx := context.Background()
	bookingID := int64(42)

	bookings := new(MockBookingRepo)
	ragSvc := new(MockRAGService)
	search := new(MockSearchService)

	bookings.On("GetBookingDetails", mock.Anything, bookingID).Return(austinBooking(), nil).Once()
	bookings.On("GetUserBookingHistory", mock.Anything, int64(7), 3).Return(nil, nil).Once()
	ragSvc.On("RetrieveSimilarTrips", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(emptyRAGResult()).Once()
	search.On("SearchCombined", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.CombinedSearchResults{}).Once()
	ragSvc.On("AddGeneratedItinerary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	bookings.On("SaveItinerary", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()

	svc := chatService(bookings, ragSvc, search, new(MockPolicyService))
	resp := svc.HandleChat(ctx, &types.ChatRequest{
		UserID:    7,
		Message:   "plan my trip please",
		BookingID: &bookingID,
	})

	assert.Contains(t, resp.Message, "Austin, TX")
	plan, ok := resp.Data.(*types.PlanResponse)
	require.True(t, ok)
	assert.Len(t, plan.Itinerary, 3)
}

func TestHandleChat_PlanFailure(t *testing.T) {
	ctx := context.Background()
	bookingID := int64(999)

	bookings := new(MockBookingRepo)
	bookings.On("GetBookingDetails", mock.Anything, bookingID).
		Return(nil, types.ErrNotFound).Once()

	svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
	resp := svc.HandleChat(ctx, &types.ChatRequest{
		UserID:    7,
		Message:   "plan my trip",
		BookingID: &bookingID,
	})

	assert.Equal(t, apologyMessage, resp.Message)
}

func TestHandleChat_PolicyWithoutModel(t *testing.T) {
	// The policy branch retrieves chunks, then needs the model to compose an
	// answer; without a model it degrades to the apology.
	ctx := context.Background()
	policies := new(MockPolicyService)
	policies.On("SearchPolicies", mock.Anything, "What is the cancellation policy?", 3).
		Return([]types.PolicyMatch{
			{Content: "Full refund up to 14 days before check-in.", Metadata: map[string]string{"policy_type": "Cancellation Policy"}},
		}).Once()

	svc := chatService(new(MockBookingRepo), new(MockRAGService), new(MockSearchService), policies)
	resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "What is the cancellation policy?"})

	assert.Equal(t, apologyMessage, resp.Message)
	policies.AssertExpectations(t)
}

func TestHandleChat_GeneralWithoutModel(t *testing.T) {
	ctx := context.Background()
	svc := chatService(new(MockBookingRepo), new(MockRAGService), new(MockSearchService), new(MockPolicyService))

	resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "Hello!"})

	assert.Equal(t, apologyMessage, resp.Message)
}

func TestHandleChat_RecoversFromPanic(t *testing.T) {
	ctx := context.Background()
	bookings := new(MockBookingRepo)
	bookings.On("GetUserBookings", mock.Anything, int64(7)).
		Run(func(args mock.Arguments) { panic("boom") }).
		Return(nil, nil).Once()

	svc := chatService(bookings, new(MockRAGService), new(MockSearchService), new(MockPolicyService))
	resp := svc.HandleChat(ctx, &types.ChatRequest{UserID: 7, Message: "my bookings"})

	require.NotNil(t, resp)
	assert.Equal(t, apologyMessage, resp.Message)
}

func TestFilterActiveBookings(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	in := []types.BookingSummary{
		{ID: 1, Status: "ACCEPTED", CheckOut: "2026-03-20"},
		{ID: 2, Status: "ACCEPTED", CheckOut: "2026-03-15"}, // checkout today still counts
		{ID: 3, Status: "ACCEPTED", CheckOut: "2026-03-01"},
		{ID: 4, Status: "CANCELLED", CheckOut: "2026-03-20"},
		{ID: 5, Status: "PENDING", CheckOut: "2026-04-01"},
	}

	active := filterActiveBookings(in, now)

	require.Len(t, active, 3)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, int64(2), active[1].ID)
	assert.Equal(t, int64(5), active[2].ID)
}

func TestLastTurns(t *testing.T) {
	history := []types.ChatTurn{
		{Role: "user", Content: "a"},
		{Role: "assistant", Content: "b"},
		{Role: "user", Content: "c"},
	}

	assert.Len(t, lastTurns(history, 6), 3)
	got := lastTurns(history, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Content)
}
