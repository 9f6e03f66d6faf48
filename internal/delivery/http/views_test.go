package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/model"
	"playstore-predictor/pkg/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenView_LoadsHistory(t *testing.T) {
	s := newViewServer(t)
	for i := 0; i < 3; i++ {
		row := &model.PredictionHistory{
			Category:          "GAME",
			Size:              "10M",
			Type:              "Paid",
			Price:             utils.ToPointer("2.50"),
			ContentRating:     "Everyone",
			Genres:            "Puzzle",
			PredictedInstalls: "~1000",
			PredictedReviews:  "~10",
			PredictedRating:   "3.0 / 5.0",
			CreatedAt:         time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, s.repo.Create(context.Background(), row))
	}

	opened := s.open(t)

	assert.NotEmpty(t, opened.ID)
	require.Len(t, opened.State.History, 3)
	assert.Equal(t, 2.5, opened.State.History[0].Price)
	require.NotNil(t, opened.State.Latest)
	assert.Equal(t, *opened.State.History[0].ID, *opened.State.Latest.ID)
	assert.False(t, opened.State.HistoryLoading)
	assert.Equal(t, 1, s.hub.Subscribers())
}

func TestUpdateDraft(t *testing.T) {
	s := newViewServer(t)
	id := s.open(t).ID
	path := "/api/v1/views/" + id + "/draft"

	code, env := s.do(t, http.MethodPatch, path, `{"name":"category","value":"FAMILY"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "FAMILY", decodeState(t, env.Data).Draft.Category)

	code, _ = s.do(t, http.MethodPatch, path, `{"name":"app_type","value":"Paid"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = s.do(t, http.MethodPatch, path, `{"name":"price","value":"4.99"}`)
	require.Equal(t, http.StatusOK, code)
	code, env = s.do(t, http.MethodPatch, path, `{"name":"app_type","value":"Free"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, decodeState(t, env.Data).Draft.Price)

	tests := []struct {
		name string
		body string
	}{
		{name: "price while free", body: `{"name":"price","value":"3"}`},
		{name: "unknown field", body: `{"name":"installs","value":"3"}`},
		{name: "bad app type", body: `{"name":"app_type","value":"Trial"}`},
		{name: "missing name", body: `{"value":"3"}`},
		{name: "malformed body", body: `{"name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := s.do(t, http.MethodPatch, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
		})
	}
}

func TestSubmitView(t *testing.T) {
	s := newViewServer(t)
	id := s.open(t).ID

	code, env := s.do(t, http.MethodPost, "/api/v1/views/"+id+"/submit", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Message, "category is required")

	s.fill(t, id)
	code, env = s.do(t, http.MethodPost, "/api/v1/views/"+id+"/submit", "")
	require.Equal(t, http.StatusAccepted, code, env.Message)
	assert.True(t, decodeState(t, env.Data).Submitting)

	var state dto.ViewState
	require.Eventually(t, func() bool {
		_, env := s.do(t, http.MethodGet, "/api/v1/views/"+id, "")
		state = decodeState(t, env.Data)
		return !state.Submitting && !state.HistoryLoading && state.Latest != nil
	}, 2*time.Second, 10*time.Millisecond)

	require.Len(t, state.History, 1)
	assert.Equal(t, state.History[0], *state.Latest)
	assert.Equal(t, "4.2 / 5.0", state.Latest.PredictedRating)
	assert.Equal(t, dto.AppTypeFree, state.Latest.AppType)
	assert.Zero(t, state.Latest.Price)
	assert.Nil(t, state.Error)
}

func TestSubmitView_ConflictWhileSubmitting(t *testing.T) {
	s := newViewServer(t)
	s.api.block = make(chan struct{})
	id := s.open(t).ID
	s.fill(t, id)

	code, _ := s.do(t, http.MethodPost, "/api/v1/views/"+id+"/submit", "")
	require.Equal(t, http.StatusAccepted, code)

	code, env := s.do(t, http.MethodPost, "/api/v1/views/"+id+"/submit", "")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "a prediction is already being submitted", env.Message)

	close(s.api.block)
	assert.Eventually(t, func() bool {
		_, env := s.do(t, http.MethodGet, "/api/v1/views/"+id, "")
		return !decodeState(t, env.Data).Submitting
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseView(t *testing.T) {
	s := newViewServer(t)
	id := s.open(t).ID
	require.Equal(t, 1, s.hub.Subscribers())

	code, _ := s.do(t, http.MethodDelete, "/api/v1/views/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Zero(t, s.hub.Subscribers())

	code, _ = s.do(t, http.MethodGet, "/api/v1/views/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodDelete, "/api/v1/views/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(t, http.MethodPost, "/api/v1/views/"+id+"/submit", "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestChangeNotificationRefreshesOpenViews(t *testing.T) {
	s := newViewServer(t)
	first := s.open(t).ID
	second := s.open(t).ID

	row := &model.PredictionHistory{
		Category:          "TOOLS",
		Size:              "5M",
		Type:              "Free",
		Price:             utils.ToPointer("0"),
		ContentRating:     "Everyone",
		Genres:            "Tools",
		PredictedInstalls: "~700",
		PredictedReviews:  "~7",
		PredictedRating:   "2.5 / 5.0",
	}
	require.NoError(t, s.repo.Create(context.Background(), row))
	s.hub.Publish(dto.ChangeEvent{Op: "INSERT", ID: &row.ID})

	for _, id := range []string{first, second} {
		assert.Eventually(t, func() bool {
			_, env := s.do(t, http.MethodGet, "/api/v1/views/"+id, "")
			state := decodeState(t, env.Data)
			return len(state.History) == 1 && state.Latest != nil && state.Latest.Category == "TOOLS"
		}, 2*time.Second, 10*time.Millisecond)
	}
}

func TestIndexPage(t *testing.T) {
	s := newViewServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	body := rec.Body.String()
	assert.Contains(t, body, "Play Store App Metrics Predictor")
	assert.Contains(t, body, `<option value="Teen">Teen</option>`)
	assert.Contains(t, body, "/api/v1/views")
}
