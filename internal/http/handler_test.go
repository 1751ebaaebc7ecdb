package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/mineops-reports/internal/auth"
	"github.com/nurpe/mineops-reports/internal/config"
	"github.com/nurpe/mineops-reports/internal/http/middleware"
	"github.com/nurpe/mineops-reports/internal/logger"
	"github.com/nurpe/mineops-reports/internal/model"
	"github.com/nurpe/mineops-reports/internal/repository"
	"github.com/nurpe/mineops-reports/internal/service"
)

const testSecret = "test-secret"

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.AutoMigrate(
		&model.Vehicle{},
		&model.Person{},
		&model.Role{},
		&model.Report{},
		&model.HaulEntry{},
		&model.MaterialEntry{},
		&model.WaterEntry{},
		&model.MachineryEntry{},
		&model.MapPin{},
		&model.PersonnelAssignment{},
		&model.ModificationEntry{},
		&model.FieldChange{},
	))

	cfg := &config.Config{
		Environment: "test",
		Reports:     config.ReportsConfig{DefaultPageSize: 20, MaxPageSize: 200},
	}
	reportRepo := repository.NewReportRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	reports := service.NewReportService(
		reportRepo,
		service.NewLedger(vehicleRepo),
		service.NewRecorder(historyRepo),
		nil,
		cfg,
	)
	stats := service.NewStatsService(statsRepo, nil)

	log := logger.New("test")
	handler := NewHandler(reports, stats, log)
	authMiddleware := middleware.Auth(auth.NewParser(testSecret))
	return NewRouter(handler, authMiddleware, "test", nil), db
}

func signToken(t *testing.T, userID uuid.UUID, name string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   userID.String(),
		"full_name": name,
		"role":      "foreman",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestReportsRequireAuth(t *testing.T) {
	router, _ := setupServer(t)
	recorder := doJSON(t, router, http.MethodGet, "/reports", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateAndReadReportOverHTTP(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	body := map[string]interface{}{
		"project_id":    uuid.New().String(),
		"activity_date": "2026-03-12",
		"shift":         "day",
		"zone":          "north pit",
		"haul": []map[string]interface{}{
			{"material": "ore", "trip_number": 3, "loose_volume_m3": 36.0},
		},
	}
	recorder := doJSON(t, router, http.MethodPost, "/reports", token, body)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var created model.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	recorder = doJSON(t, router, http.MethodGet, fmt.Sprintf("/reports/%s", created.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var got model.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	assert.Equal(t, "north pit", got.Zone)
	require.Len(t, got.Haul, 1)
	assert.Equal(t, "ore", got.Haul[0].Material)
}

func TestCreateReportValidation(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	recorder := doJSON(t, router, http.MethodPost, "/reports", token, map[string]interface{}{
		"activity_date": "2026-03-12",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestUpdateReportNotFound(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	recorder := doJSON(t, router, http.MethodPatch, fmt.Sprintf("/reports/%s", uuid.New()), token, map[string]interface{}{
		"zone": "south pit",
	})
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateReplacesChildrenOverHTTP(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	recorder := doJSON(t, router, http.MethodPost, "/reports", token, map[string]interface{}{
		"project_id":    uuid.New().String(),
		"activity_date": "2026-03-12",
		"water": []map[string]interface{}{
			{"vehicle_tag": "WT-01", "trip_number": 2, "volume_m3": 40.0},
			{"vehicle_tag": "WT-02", "trip_number": 1, "volume_m3": 20.0},
		},
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created model.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/reports/%s", created.ID), token, map[string]interface{}{
		"water": []map[string]interface{}{
			{"vehicle_tag": "WT-03", "trip_number": 4, "volume_m3": 80.0},
		},
		"note": "single tanker after breakdown",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	recorder = doJSON(t, router, http.MethodGet, fmt.Sprintf("/reports/%s", created.ID), token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	var got model.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Len(t, got.Water, 1)
	assert.Equal(t, "WT-03", got.Water[0].VehicleTag)
	require.Len(t, got.History, 1)
	assert.Equal(t, "single tanker after breakdown", got.History[0].Note)
}

func TestStatsEndpointZeroShape(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	recorder := doJSON(t, router, http.MethodGet, "/stats?date_from=2030-01-01&date_to=2030-01-31", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var stats model.Stats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	assert.Zero(t, stats.ReportCount)
	assert.Equal(t, model.MostUsedNone, stats.Haul.MostUsed)
	assert.NotNil(t, stats.Haul.Groups)
}

func TestDeleteReportIdempotentOverHTTP(t *testing.T) {
	router, _ := setupServer(t)
	token := signToken(t, uuid.New(), "R. Quispe")

	recorder := doJSON(t, router, http.MethodPost, "/reports", token, map[string]interface{}{
		"project_id":    uuid.New().String(),
		"activity_date": "2026-03-12",
	})
	require.Equal(t, http.StatusCreated, recorder.Code)
	var created model.Report
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/reports/%s", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/reports/%s", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
