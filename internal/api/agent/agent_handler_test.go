package agent

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/wanderplan/agent-service/app/middleware"
	"github.com/wanderplan/agent-service/internal/types"
)

// MockAgentService is a mock implementation of the Service interface
type MockAgentService struct {
	mock.Mock
}

func (m *MockAgentService) GeneratePlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlanResponse), args.Error(1)
}

func (m *MockAgentService) HandleChat(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(*types.ChatResponse)
}

func newHandler(svc Service) *AgentHandler {
	return NewAgentHandler(svc, appMiddleware.NewSecretVerifier("topsecret"), slog.Default())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateTravelPlan(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockAgentService)
		svc.On("GeneratePlan", mock.Anything, mock.MatchedBy(func(req *types.PlanRequest) bool {
			return req.BookingID == 42 && req.UserID == 7
		})).Return(&types.PlanResponse{BookingID: 42, Destination: "Austin, TX"}, nil).Once()

		rec := postJSON(t, newHandler(svc).CreateTravelPlan, "/agent/plan",
			`{"booking_id": 42, "user_id": 7, "secret": "topsecret"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp types.PlanResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Austin, TX", resp.Destination)
		svc.AssertExpectations(t)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		svc := new(MockAgentService)

		rec := postJSON(t, newHandler(svc).CreateTravelPlan, "/agent/plan",
			`{"booking_id": 42, "user_id": 7, "secret": "nope"}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid authentication token")
		svc.AssertNotCalled(t, "GeneratePlan", mock.Anything, mock.Anything)
	})

	t.Run("MissingBookingID", func(t *testing.T) {
		svc := new(MockAgentService)

		rec := postJSON(t, newHandler(svc).CreateTravelPlan, "/agent/plan",
			`{"user_id": 7, "secret": "topsecret"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		svc := new(MockAgentService)

		rec := postJSON(t, newHandler(svc).CreateTravelPlan, "/agent/plan", `{"booking_id":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BookingNotFound", func(t *testing.T) {
		svc := new(MockAgentService)
		svc.On("GeneratePlan", mock.Anything, mock.Anything).
			Return(nil, types.ErrNotFound).Once()

		rec := postJSON(t, newHandler(svc).CreateTravelPlan, "/agent/plan",
			`{"booking_id": 999, "user_id": 7, "secret": "topsecret"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Booking not found")
	})
}

func TestChatHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockAgentService)
		svc.On("HandleChat", mock.Anything, mock.MatchedBy(func(req *types.ChatRequest) bool {
			return req.Message == "hello"
		})).Return(&types.ChatResponse{Message: "Hi! How can I help with your trip?"}).Once()

		rec := postJSON(t, newHandler(svc).Chat, "/agent/chat",
			`{"user_id": 7, "message": "hello", "secret": "topsecret"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "How can I help")
	})

	t.Run("EmptyMessage", func(t *testing.T) {
		svc := new(MockAgentService)

		rec := postJSON(t, newHandler(svc).Chat, "/agent/chat",
			`{"user_id": 7, "message": "", "secret": "topsecret"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "HandleChat", mock.Anything, mock.Anything)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		svc := new(MockAgentService)

		rec := postJSON(t, newHandler(svc).Chat, "/agent/chat",
			`{"user_id": 7, "message": "hello", "secret": ""}`)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
