package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"playstore-predictor/config"
	"playstore-predictor/internal/dto"
	"playstore-predictor/internal/model"
	"playstore-predictor/internal/realtime"
	"playstore-predictor/internal/repository"
	"playstore-predictor/internal/service"
	"playstore-predictor/pkg/logger"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.API{Port: 0, RateLimit: 1000, RateBurst: 1000},
		Predictor: config.Predictor{
			Timeout:      2 * time.Second,
			AllowOrigins: []string{"http://localhost:3000"},
		},
		View: config.View{
			HistoryLimit:    50,
			AckTimeout:      time.Second,
			IdleExpiration:  time.Hour,
			CleanupInterval: time.Minute,
		},
		Realtime: config.Realtime{
			Channel:           "prediction_history_changes",
			SubscriberBuffer:  16,
			HeartbeatInterval: 50 * time.Millisecond,
		},
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.PredictionHistory{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stubPredictionAPI stores what it predicts, like the predictor and uploader
// pair, and returns the stored row id.
type stubPredictionAPI struct {
	repo  repository.PredictionHistoryRepository
	block chan struct{}
}

func (s *stubPredictionAPI) Predict(ctx context.Context, input dto.PredictionInput) (*dto.PredictionResult, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	result := dto.PredictionResult{
		PredictionInput:   input,
		PredictedInstalls: "~5000",
		PredictedReviews:  "~50",
		PredictedRating:   "4.2 / 5.0",
	}
	row := model.NewPredictionHistory(result)
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	result.ID = &row.ID
	return &result, nil
}

func (s *stubPredictionAPI) Ping(ctx context.Context) error { return nil }

type viewServer struct {
	echo *echo.Echo
	repo repository.PredictionHistoryRepository
	api  *stubPredictionAPI
	hub  *realtime.Hub
}

func newViewServer(t *testing.T) *viewServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig()
	log := logger.NewNop()
	validator := service.NewValidator()

	repo := repository.NewPredictionHistoryRepository(newTestDB(t))
	api := &stubPredictionAPI{repo: repo}
	hub := realtime.NewHub(nil, cfg.Realtime.SubscriberBuffer, log)
	registry := service.NewViewRegistry(cfg, log, validator, repo, api, hub)

	e := echo.New()
	handler := NewHttpAPIHandler(ctx, e, validator, &service.Service{ViewRegistry: registry}, cfg, log)
	handler.SetupRoutes()

	t.Cleanup(func() {
		cancel()
		registry.CloseAll()
	})
	return &viewServer{echo: e, repo: repo, api: api, hub: hub}
}

func (s *viewServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decodeState(t *testing.T, raw json.RawMessage) dto.ViewState {
	t.Helper()
	var state dto.ViewState
	require.NoError(t, json.Unmarshal(raw, &state))
	return state
}

func (s *viewServer) open(t *testing.T) dto.OpenViewResponse {
	t.Helper()
	code, env := s.do(t, http.MethodPost, "/api/v1/views", "")
	require.Equal(t, http.StatusCreated, code, env.Message)
	var opened dto.OpenViewResponse
	require.NoError(t, json.Unmarshal(env.Data, &opened))
	return opened
}

func (s *viewServer) fill(t *testing.T, id string) {
	t.Helper()
	for name, value := range map[string]string{
		"category":       "GAME",
		"genres":         "Action;Adventure",
		"app_size":       "25M",
		"content_rating": "Teen",
	} {
		code, env := s.do(t, http.MethodPatch, "/api/v1/views/"+id+"/draft", fmt.Sprintf(`{"name":%q,"value":%q}`, name, value))
		require.Equal(t, http.StatusOK, code, env.Message)
	}
}
