package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/memodb-io/roombook/internal/modules/model"
	"github.com/memodb-io/roombook/internal/modules/service"
	"github.com/memodb-io/roombook/internal/pkg/workflow"
)

func TestSpaceHandler_ListSpaces(t *testing.T) {
	spaces := []model.Space{{
		ID:    uuid.New(),
		Name:  "Bloco A - Principal",
		Rooms: datatypes.NewJSONType([]model.Room{{ID: "room_a102", Name: "Sala A102 (Laboratório)"}}),
	}}
	svc := &MockSpaceService{}
	svc.On("Search", mock.Anything, "lab").Return(spaces)

	h := NewSpaceHandler(svc)
	router := setupRouter()
	router.GET("/spaces", as(userViewer, h.ListSpaces))

	w := doJSON(router, http.MethodGet, "/spaces?q=lab", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []model.Space `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Sala A102 (Laboratório)", resp.Data[0].RoomList()[0].Name)
	svc.AssertExpectations(t)
}

func TestSpaceHandler_CreateSpace(t *testing.T) {
	tests := []struct {
		name           string
		viewerIsAdmin  bool
		setup          func(*MockSpaceService)
		expectedStatus int
	}{
		{
			name:          "admin creates",
			viewerIsAdmin: true,
			setup: func(svc *MockSpaceService) {
				svc.On("Create", mock.Anything, adminViewer, "Bloco C").Return(&model.Space{ID: uuid.New(), Name: "Bloco C"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "users may not",
			setup: func(svc *MockSpaceService) {
				svc.On("Create", mock.Anything, userViewer, "Bloco C").Return(nil, service.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:          "blank name",
			viewerIsAdmin: true,
			setup: func(svc *MockSpaceService) {
				svc.On("Create", mock.Anything, adminViewer, "Bloco C").
					Return(nil, &workflow.ValidationError{Field: "name", Message: "O nome é obrigatório."})
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSpaceService{}
			tt.setup(svc)

			v := userViewer
			if tt.viewerIsAdmin {
				v = adminViewer
			}
			h := NewSpaceHandler(svc)
			router := setupRouter()
			router.POST("/spaces", as(v, h.CreateSpace))

			w := doJSON(router, http.MethodPost, "/spaces", map[string]any{"name": "Bloco C"})

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestSpaceHandler_Rooms(t *testing.T) {
	spaceID := uuid.New()

	svc := &MockSpaceService{}
	svc.On("AddRoom", mock.Anything, adminViewer, spaceID, "Sala B203").Return(&model.Room{ID: "room_b203", Name: "Sala B203"}, nil)
	svc.On("RenameRoom", mock.Anything, adminViewer, spaceID, "room_b203", "Sala B204").Return(nil)
	svc.On("RenameRoom", mock.Anything, adminViewer, spaceID, "room_gone", "Sala B204").Return(service.ErrRoomNotFound)
	svc.On("DeleteRoom", mock.Anything, adminViewer, spaceID, "room_b203").Return(int64(3), nil)

	h := NewSpaceHandler(svc)
	router := setupRouter()
	router.POST("/spaces/:space_id/rooms", as(adminViewer, h.AddRoom))
	router.PUT("/spaces/:space_id/rooms/:room_id", as(adminViewer, h.RenameRoom))
	router.DELETE("/spaces/:space_id/rooms/:room_id", as(adminViewer, h.DeleteRoom))

	base := "/spaces/" + spaceID.String() + "/rooms"
	assert.Equal(t, http.StatusCreated, doJSON(router, http.MethodPost, base, map[string]any{"name": "Sala B203"}).Code)
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodPut, base+"/room_b203", map[string]any{"name": "Sala B204"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodPut, base+"/room_gone", map[string]any{"name": "Sala B204"}).Code)

	w := doJSON(router, http.MethodDelete, base+"/room_b203", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data DeletedResp `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Data.RemovedBookings)

	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodPost, "/spaces/bloco-a/rooms", map[string]any{"name": "x"}).Code)
	svc.AssertExpectations(t)
}

func TestSpaceHandler_DeleteSpace(t *testing.T) {
	spaceID := uuid.New()

	tests := []struct {
		name           string
		n              int64
		err            error
		expectedStatus int
	}{
		{name: "cascade", n: 5, expectedStatus: http.StatusOK},
		{name: "missing", err: service.ErrSpaceNotFound, expectedStatus: http.StatusNotFound},
		{name: "archive failed", err: errors.New("archive cascade: upload failed"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSpaceService{}
			svc.On("Delete", mock.Anything, adminViewer, spaceID).Return(tt.n, tt.err)

			h := NewSpaceHandler(svc)
			router := setupRouter()
			router.DELETE("/spaces/:space_id", as(adminViewer, h.DeleteSpace))

			w := doJSON(router, http.MethodDelete, "/spaces/"+spaceID.String(), nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}
