package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/serializer"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/visibility"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

func TestBookingHandler_RequestBooking(t *testing.T) {
	spaceID := uuid.New()
	valid := map[string]any{
		"space_id":  spaceID.String(),
		"room_id":   "room_a101",
		"date":      "2024-06-10",
		"time_slot": "08:00 - 09:00",
		"reason":    "Aula",
	}
	matchInput := mock.MatchedBy(func(in service.RequestInput) bool {
		return in.SpaceID == spaceID && in.RoomID == "room_a101" && in.TimeSlot == "08:00 - 09:00" &&
			in.Reason == "Aula" && in.Date.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	})
	out := func(accepted bool) *service.RequestOutput {
		return &service.RequestOutput{
			Booking:  model.Booking{ID: uuid.New(), SpaceID: spaceID, RoomID: "room_a101", Status: model.StatusPending},
			Notice:   service.Notice{Title: "Solicitação Enviada!", Description: "Sua reserva para a sala foi enviada para aprovação."},
			Accepted: accepted,
		}
	}

	tests := []struct {
		name           string
		body           any
		setup          func(*MockReservationService)
		expectedStatus int
		expectedField  string
	}{
		{
			name: "awaited write",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).Return(out(false), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "background write",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).Return(out(true), nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "missing room",
			body:           map[string]any{"space_id": spaceID.String(), "date": "2024-06-10", "time_slot": "08:00 - 09:00"},
			setup:          func(svc *MockReservationService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "space id not a uuid",
			body:           map[string]any{"space_id": "bloco-a", "room_id": "room_a101", "date": "2024-06-10", "time_slot": "08:00 - 09:00"},
			setup:          func(svc *MockReservationService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed date",
			body:           map[string]any{"space_id": spaceID.String(), "room_id": "room_a101", "date": "10/06/2024", "time_slot": "08:00 - 09:00"},
			setup:          func(svc *MockReservationService) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "date",
		},
		{
			name: "reason too short",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).
					Return(nil, &workflow.ValidationError{Field: "reason", Message: "O motivo deve ter pelo menos 3 caracteres."})
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "reason",
		},
		{
			name: "slot already taken",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).Return(nil, service.ErrSlotNotFree)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unknown room",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).Return(nil, service.ErrRoomNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store failure",
			body: valid,
			setup: func(svc *MockReservationService) {
				svc.On("Request", mock.Anything, userViewer, matchInput).
					Return(nil, errors.New("create booking: connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservations := &MockReservationService{}
			tt.setup(reservations)

			h := NewBookingHandler(reservations, &MockBookingService{})
			router := setupRouter()
			router.POST("/bookings", as(userViewer, h.RequestBooking))

			w := doJSON(router, http.MethodPost, "/bookings", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedField != "" {
				var resp serializer.FieldErrorResponse
				require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedField, resp.Field)
			}
			reservations.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		target         string
		body           any
		setup          func(*MockBookingService)
		expectedStatus int
	}{
		{
			name:   "approve",
			target: "/bookings/" + id.String() + "/status",
			body:   map[string]any{"status": "approved"},
			setup: func(svc *MockBookingService) {
				svc.On("ChangeStatus", mock.Anything, adminViewer, id, model.StatusApproved).
					Return(&service.Notice{Title: "Status Atualizado!", Description: "A reserva foi aprovada."}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "already decided",
			target: "/bookings/" + id.String() + "/status",
			body:   map[string]any{"status": "rejected"},
			setup: func(svc *MockBookingService) {
				svc.On("ChangeStatus", mock.Anything, adminViewer, id, model.StatusRejected).Return(nil, service.ErrInvalidTransition)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "another write in flight",
			target: "/bookings/" + id.String() + "/status",
			body:   map[string]any{"status": "approved"},
			setup: func(svc *MockBookingService) {
				svc.On("ChangeStatus", mock.Anything, adminViewer, id, model.StatusApproved).Return(nil, service.ErrInFlight)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "back to pending",
			target: "/bookings/" + id.String() + "/status",
			body:   map[string]any{"status": "pending"},
			setup: func(svc *MockBookingService) {
				svc.On("ChangeStatus", mock.Anything, adminViewer, id, model.StatusPending).
					Return(nil, &workflow.ValidationError{Field: "status", Message: "invalid status"})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "missing booking",
			target: "/bookings/" + id.String() + "/status",
			body:   map[string]any{"status": "approved"},
			setup: func(svc *MockBookingService) {
				svc.On("ChangeStatus", mock.Anything, adminViewer, id, model.StatusApproved).Return(nil, service.ErrBookingNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad booking id",
			target:         "/bookings/not-a-uuid/status",
			body:           map[string]any{"status": "approved"},
			setup:          func(svc *MockBookingService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &MockBookingService{}
			tt.setup(bookings)

			h := NewBookingHandler(&MockReservationService{}, bookings)
			router := setupRouter()
			router.PUT("/bookings/:booking_id/status", as(adminViewer, h.UpdateStatus))

			w := doJSON(router, http.MethodPut, tt.target, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			bookings.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_DeleteBooking(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "owner deletes", expectedStatus: http.StatusOK},
		{name: "not the owner", err: service.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "already gone", err: service.ErrBookingNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &MockBookingService{}
			if tt.err != nil {
				bookings.On("Delete", mock.Anything, userViewer, id).Return(nil, tt.err)
			} else {
				bookings.On("Delete", mock.Anything, userViewer, id).
					Return(&service.Notice{Title: "Reserva Deletada", Description: "A reserva foi removida com sucesso."}, nil)
			}

			h := NewBookingHandler(&MockReservationService{}, bookings)
			router := setupRouter()
			router.DELETE("/bookings/:booking_id", as(userViewer, h.DeleteBooking))

			w := doJSON(router, http.MethodDelete, "/bookings/"+id.String(), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.err == nil {
				var resp serializer.Response
				require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "Reserva Deletada", resp.Msg)
			}
			bookings.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_Lists(t *testing.T) {
	views := []visibility.BookingView{
		{Booking: model.Booking{ID: uuid.New(), Status: model.StatusPending}, SpaceName: "Bloco A", RoomName: "A101", UserName: "Ana"},
	}

	bookings := &MockBookingService{}
	bookings.On("ListMine", mock.Anything, userViewer).Return(views, nil)
	bookings.On("ListAll", mock.Anything, userViewer).Return(nil, service.ErrForbidden)
	bookings.On("Actions", mock.Anything, userViewer, views[0].ID).Return([]workflow.Action{workflow.ActionDelete}, nil)

	h := NewBookingHandler(&MockReservationService{}, bookings)
	router := setupRouter()
	router.GET("/bookings/mine", as(userViewer, h.ListMyBookings))
	router.GET("/bookings", as(userViewer, h.ListBookings))
	router.GET("/bookings/:booking_id/actions", as(userViewer, h.GetActions))

	w := doJSON(router, http.MethodGet, "/bookings/mine", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine struct {
		Data []visibility.BookingView `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "A101", mine.Data[0].RoomName)

	w = doJSON(router, http.MethodGet, "/bookings", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(router, http.MethodGet, "/bookings/"+views[0].ID.String()+"/actions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var actions struct {
		Data []workflow.Action `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &actions))
	assert.Equal(t, []workflow.Action{workflow.ActionDelete}, actions.Data)

	bookings.AssertExpectations(t)
}
