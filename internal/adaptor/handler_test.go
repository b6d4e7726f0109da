package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel-booking/internal/apperror"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/internal/inventory"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockBookingService struct {
	mock.Mock
}

func (m *mockBookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *mockBookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingResponse), args.Error(1)
}

func (m *mockBookingService) GetAllBookings(ctx context.Context) (*response.BookingListResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingListResponse), args.Error(1)
}

func (m *mockBookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingMutationResponse, error) {
	args := m.Called(ctx, bookingID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingMutationResponse), args.Error(1)
}

func (m *mockBookingService) DeleteBooking(ctx context.Context, bookingID string) (*response.BookingMutationResponse, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.BookingMutationResponse), args.Error(1)
}

type mockRoomService struct {
	mock.Mock
}

func (m *mockRoomService) ListRooms(ctx context.Context) ([]response.RoomResponse, error) {
	args := m.Called(ctx)
	rooms, _ := args.Get(0).([]response.RoomResponse)
	return rooms, args.Error(1)
}

func (m *mockRoomService) GetRoom(ctx context.Context, roomType string) (*response.RoomResponse, error) {
	args := m.Called(ctx, roomType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*response.RoomResponse), args.Error(1)
}

func (m *mockRoomService) SeedInventory(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRoomService) ReconcileRooms(ctx context.Context) ([]response.ReconcileResponse, error) {
	args := m.Called(ctx)
	results, _ := args.Get(0).([]response.ReconcileResponse)
	return results, args.Error(1)
}

func (m *mockRoomService) ListLedger(ctx context.Context, bookingID string) ([]response.LedgerEntryResponse, error) {
	args := m.Called(ctx, bookingID)
	entries, _ := args.Get(0).([]response.LedgerEntryResponse)
	return entries, args.Error(1)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newRouter(bookings *mockBookingService, rooms *mockRoomService) *chi.Mux {
	log := zap.NewNop()
	bh := NewBookingHandler(bookings, log)
	rh := NewRoomHandler(rooms, log)

	r := chi.NewRouter()
	r.Post("/api/bookings", bh.CreateBooking)
	r.Get("/api/bookings", bh.GetAllBookings)
	r.Get("/api/bookings/{id}", bh.GetBookingByID)
	r.Put("/api/bookings/{id}", bh.UpdateBooking)
	r.Delete("/api/bookings/{id}", bh.DeleteBooking)
	r.Get("/api/rooms", rh.ListRooms)
	r.Get("/api/rooms/{type}", rh.GetRoom)
	r.Post("/api/rooms/reconcile", rh.ReconcileRooms)
	r.Get("/api/ledger", rh.ListLedger)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

const validBooking = `{
	"guestName": "Astrid Lind",
	"guestEmail": "astrid@example.com",
	"guestCount": 2,
	"roomTypes": [{"type": "enkel", "rooms": 2, "guests": 2}],
	"checkIn": "2024-06-01",
	"checkOut": "2024-06-03"
}`

func TestCreateBooking_Created(t *testing.T) {
	bookings := new(mockBookingService)
	bookings.On("CreateBooking", mock.Anything, mock.MatchedBy(func(r *request.CreateBookingRequest) bool {
		return r.GuestName == "Astrid Lind" && len(r.RoomTypes) == 1 && r.RoomTypes[0].Rooms == 2
	})).Return(&response.BookingResponse{ID: "b-1", Nights: 2, TotalPrice: 2000}, nil)

	rec, env := do(t, newRouter(bookings, new(mockRoomService)), http.MethodPost, "/api/bookings", validBooking)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Booking created successfully", env.Message)

	var data response.BookingResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "b-1", data.ID)
	assert.Equal(t, 2000.0, data.TotalPrice)
	bookings.AssertExpectations(t)
}

func TestCreateBooking_BadBody(t *testing.T) {
	bookings := new(mockBookingService)
	router := newRouter(bookings, new(mockRoomService))

	rec, env := do(t, router, http.MethodPost, "/api/bookings", `{"guestName":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid request body", env.Message)

	rec, env = do(t, router, http.MethodPost, "/api/bookings", `{"guestEmail":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Errors, "guestName")
	assert.Contains(t, env.Errors, "guestEmail")

	bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestHandleServiceError_StatusByKind(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperror.Validation(nil, "Too many guests"), http.StatusBadRequest, "Too many guests"},
		{"availability", apperror.Availability("Not enough enkel rooms available"), http.StatusBadRequest, "Not enough enkel rooms available"},
		{"not found", apperror.NotFound(apperror.ErrRoomTypeNotFound, "Room type enkel not found"), http.StatusNotFound, "Room type enkel not found"},
		{"conflict", apperror.Conflict(nil, "Inventory for enkel is out of sync"), http.StatusConflict, "Inventory for enkel is out of sync"},
		{"storage", apperror.Storage(errors.New("dial tcp: refused"), "Failed to create booking"), http.StatusInternalServerError, "Failed to create booking"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := new(mockBookingService)
			bookings.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec, env := do(t, newRouter(bookings, new(mockRoomService)), http.MethodPost, "/api/bookings", validBooking)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.message, env.Message)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestUpdateBooking_PassesIDAndPartialBody(t *testing.T) {
	bookings := new(mockBookingService)
	bookings.On("UpdateBooking", mock.Anything, "b-1", mock.MatchedBy(func(r *request.UpdateBookingRequest) bool {
		return r.GuestName == nil && len(r.RoomTypes) == 1 && r.RoomTypes[0].Rooms == 1
	})).Return(&response.BookingMutationResponse{
		Booking: response.BookingResponse{ID: "b-1"},
		Deltas:  []inventory.Delta{{RoomType: "enkel", Rooms: -1}},
	}, nil)

	rec, env := do(t, newRouter(bookings, new(mockRoomService)), http.MethodPut, "/api/bookings/b-1",
		`{"roomTypes":[{"type":"enkel","rooms":1,"guests":1}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Booking updated successfully", env.Message)
	var data response.BookingMutationResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "b-1", data.Booking.ID)
	assert.Equal(t, []inventory.Delta{{RoomType: "enkel", Rooms: -1}}, data.Deltas)
	bookings.AssertExpectations(t)
}

func TestDeleteBooking_NotFound(t *testing.T) {
	bookings := new(mockBookingService)
	bookings.On("DeleteBooking", mock.Anything, "gone").
		Return(nil, apperror.NotFound(apperror.ErrBookingNotFound, "Booking not found"))

	rec, env := do(t, newRouter(bookings, new(mockRoomService)), http.MethodDelete, "/api/bookings/gone", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found", env.Message)
}

func TestRoomRoutes(t *testing.T) {
	rooms := new(mockRoomService)
	rooms.On("ListRooms", mock.Anything).Return([]response.RoomResponse{{RoomType: "enkel", TotalRooms: 5, AvailableRooms: 5}}, nil)
	rooms.On("GetRoom", mock.Anything, "svit").Return(&response.RoomResponse{RoomType: "svit"}, nil)
	rooms.On("ReconcileRooms", mock.Anything).Return([]response.ReconcileResponse{{RoomType: "enkel", Before: 3, After: 2, Delta: -1}}, nil)
	rooms.On("ListLedger", mock.Anything, "b-1").Return([]response.LedgerEntryResponse{{BookingID: "b-1", RoomType: "enkel", Delta: 2}}, nil)
	router := newRouter(new(mockBookingService), rooms)

	rec, env := do(t, router, http.MethodGet, "/api/rooms", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"availableRooms":5`)

	rec, _ = do(t, router, http.MethodGet, "/api/rooms/svit", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, router, http.MethodPost, "/api/rooms/reconcile", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"delta":-1`)

	rec, env = do(t, router, http.MethodGet, "/api/ledger?bookingId=b-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"bookingId":"b-1"`)

	rooms.AssertExpectations(t)
}
