// nolint: funlen
package httpserver_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popmovies/errs"
	"popmovies/httpserver"
)

func TestDefault(t *testing.T) {
	server := httpserver.Default(testConfig())

	assert.NotNil(t, server.Router, "Router should be initialized")
	assert.Equal(t, ":8080", server.Addr)
	assert.Equal(t, []string{"*"}, server.AllowOrigins, "empty ALLOW_ORIGINS should allow all origins")
	assert.NotNil(t, server.Logger, "Logger should default to a no-op logger")
	assert.Nil(t, server.MovieService)
}

func TestDefault_UsesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 9191
	cfg.AllowOrigins = "https://movies.example"

	server := httpserver.Default(cfg)

	assert.Equal(t, ":9191", server.Addr)
	assert.Equal(t, []string{"https://movies.example"}, server.AllowOrigins)
}

func TestServerStartAndShutdown(t *testing.T) {
	server := httpserver.Default(testConfig())
	port := allocateRandomPort(t)
	server.Addr = fmt.Sprintf("127.0.0.1:%d", port)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/healthcheck", port))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx), "Shutdown should complete without error")

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("Unexpected error during shutdown: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Server did not stop within timeout")
	}
}

func TestRegisterGlobalMiddlewares(t *testing.T) {
	server := httpserver.Default(testConfig())
	server.Router.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})

	response := makeRequest(server, "/test", map[string]string{"Origin": "https://example.com"})

	assert.Equal(t, http.StatusOK, response.Code)
	assert.NotEmpty(t, response.Header().Get(echo.HeaderXRequestID), "Request ID middleware should add header")
	assert.NotEmpty(t, response.Header().Get(echo.HeaderXContentTypeOptions), "Secure middleware should add headers")
	assert.Equal(t, "*", response.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	cfg := testConfig()
	cfg.AllowOrigins = "https://movies.example"
	server := httpserver.Default(cfg)

	allowed := makeRequest(server, "/healthcheck", map[string]string{"Origin": "https://movies.example"})
	denied := makeRequest(server, "/healthcheck", map[string]string{"Origin": "https://evil.example"})

	assert.Equal(t, "https://movies.example", allowed.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Empty(t, denied.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMiddlewareRecoveryBehavior(t *testing.T) {
	server := httpserver.Default(testConfig())
	server.Router.GET("/panic", func(c echo.Context) error {
		panic("test panic")
	})

	response := makeRequest(server, "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, response.Code, "Should return 500 on panic")
}

func TestCustomErrorHandler(t *testing.T) {
	tests := []struct {
		name               string
		error              error
		expectedStatusCode int
		expectedCode       string
		expectedMessage    string
	}{
		{
			name:               "invalid error returns 400",
			error:              errs.Errorf(errs.EINVALID, "invalid input"),
			expectedStatusCode: http.StatusBadRequest,
			expectedCode:       "100010",
			expectedMessage:    "invalid input",
		},
		{
			name:               "not found error returns 404",
			error:              errs.Errorf(errs.ENOTFOUND, "tmdb: popular movies endpoint not found"),
			expectedStatusCode: http.StatusNotFound,
			expectedCode:       "100404",
			expectedMessage:    "tmdb: popular movies endpoint not found",
		},
		{
			name:               "unauthorized error returns 401",
			error:              errs.Errorf(errs.EUNAUTHORIZED, "tmdb: invalid api key"),
			expectedStatusCode: http.StatusUnauthorized,
			expectedCode:       "100401",
			expectedMessage:    "tmdb: invalid api key",
		},
		{
			name:               "unavailable error returns 502",
			error:              errs.Errorf(errs.EUNAVAILABLE, "tmdb: unexpected status: 503 Service Unavailable"),
			expectedStatusCode: http.StatusBadGateway,
			expectedCode:       "100502",
			expectedMessage:    "tmdb: unexpected status: 503 Service Unavailable",
		},
		{
			name:               "internal error hides its message",
			error:              errs.Errorf(errs.EINTERNAL, "state cell closed"),
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       "100500",
			expectedMessage:    "Internal server error",
		},
		{
			name:               "plain error returns 500",
			error:              fmt.Errorf("wrapped: %w", context.DeadlineExceeded),
			expectedStatusCode: http.StatusInternalServerError,
			expectedCode:       "100500",
			expectedMessage:    "Internal server error",
		},
		{
			name:               "echo http error preserves status code",
			error:              echo.NewHTTPError(http.StatusForbidden, "forbidden"),
			expectedStatusCode: http.StatusForbidden,
			expectedCode:       "100403",
			expectedMessage:    "forbidden",
		},
		{
			name:               "echo http error with non-string message",
			error:              echo.NewHTTPError(http.StatusTeapot, 418),
			expectedStatusCode: http.StatusTeapot,
			expectedCode:       "100418",
			expectedMessage:    "418",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httpserver.Default(testConfig())
			server.Router.GET("/error", func(c echo.Context) error {
				return tt.error
			})

			response := makeRequest(server, "/error", nil)

			assert.Equal(t, tt.expectedStatusCode, response.Code)
			resp := decodeAPIResponse(t, response)
			assert.Equal(t, tt.expectedCode, resp.Code)
			assert.Equal(t, tt.expectedMessage, resp.Message)
		})
	}
}

func allocateRandomPort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return port
}

func makeRequest(server *httpserver.Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}
