package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/pos-terminal/internal/config"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend/mocks"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type healthBody struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures"`
}

func checkHealth(t *testing.T, endpoints *Endpoints) (int, healthBody) {
	t.Helper()

	cfg := &config.Config{OTel: config.OTel{ServiceName: "pos-terminal"}}
	h, err := NewHealthHandler(cfg, endpoints)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body healthBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return rr.Code, body
}

func TestNewHealthHandler(t *testing.T) {
	t.Run("Success - backend reachable and no optional dependencies", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		client.On("Ping", mock.Anything).Return(nil)

		// Act
		code, body := checkHealth(t, &Endpoints{Backend: client})

		// Assert
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "OK", body.Status)
		client.AssertExpectations(t)
	})

	t.Run("Success - all dependencies healthy", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		client.On("Ping", mock.Anything).Return(nil)

		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()
		sqlMock.ExpectPing()

		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectPing().SetVal("PONG")

		// Act
		code, body := checkHealth(t, &Endpoints{Backend: client, DB: db, RedisClient: rdb})

		// Assert
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "OK", body.Status)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("Failure - redis down degrades without failing", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		client.On("Ping", mock.Anything).Return(nil)

		rdb, redisMock := redismock.NewClientMock()
		redisMock.ExpectPing().SetErr(errors.New("connection refused"))

		// Act
		code, body := checkHealth(t, &Endpoints{Backend: client, RedisClient: rdb})

		// Assert
		assert.Equal(t, http.StatusOK, code)
		assert.NotEqual(t, "OK", body.Status)
		assert.Contains(t, body.Failures, "redis")
	})

	t.Run("Failure - backend unreachable", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		client.On("Ping", mock.Anything).Return(errors.New("dial tcp: connection refused"))

		// Act
		code, body := checkHealth(t, &Endpoints{Backend: client})

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, body.Failures, "backend")
	})

	t.Run("Failure - backend client missing", func(t *testing.T) {
		// Act
		code, body := checkHealth(t, &Endpoints{})

		// Assert
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, body.Failures["backend"], "not initialized")
	})
}
