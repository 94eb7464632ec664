package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) lines(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(s.buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func findMsg(lines []map[string]any, msg string) map[string]any {
	for _, l := range lines {
		if l["msg"] == msg {
			return l
		}
	}
	return nil
}

func TestRequestLogger_Success(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&out, "debug", "")))
	e.GET("/tasks", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside handler")
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderResponseTime))
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	lines := out.lines(t)
	inside := findMsg(lines, "inside handler")
	require.NotNil(t, inside)
	assert.Equal(t, "rid-1", inside["request_id"])
	assert.Equal(t, "/tasks", inside["path"])

	done := findMsg(lines, "request completed")
	require.NotNil(t, done)
	assert.EqualValues(t, 200, done["status"])
	assert.Nil(t, findMsg(lines, "auth_failed"))
}

func TestRequestLogger_AuthFailureAndError(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&out, "debug", "")))
	e.GET("/admin/users", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied. Required roles: admin")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))

	require.Equal(t, http.StatusForbidden, rec.Code)
	lines := out.lines(t)

	failed := findMsg(lines, "auth_failed")
	require.NotNil(t, failed)
	assert.EqualValues(t, 403, failed["status"])

	done := findMsg(lines, "request completed")
	require.NotNil(t, done)
	assert.Equal(t, "WARN", done["level"])
}

func TestRequestLogger_RecordsIdentity(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	gate := &authmw.Gate{
		Codec:       auth.NewCodec([]byte("k"), time.Hour),
		Revocations: auth.NewMemoryRevocations(),
	}
	tok, _, err := gate.Codec.Issue(auth.Subject{ID: "2", Username: "user", Role: auth.RoleUser})
	require.NoError(t, err)

	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&out, "debug", "")))
	e.GET("/protected", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, gate.Required())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	done := findMsg(out.lines(t), "request completed")
	require.NotNil(t, done)
	assert.Equal(t, "user", done["username"])
	assert.Equal(t, "user", done["role"])
}

func TestRequestLogger_PlainErrorBecomes500(t *testing.T) {
	t.Parallel()

	var out syncBuffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewWithWriter(&out, "debug", "")))
	e.GET("/boom", func(c echo.Context) error { return errHandler })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	done := findMsg(out.lines(t), "request completed")
	require.NotNil(t, done)
	assert.Equal(t, "ERROR", done["level"])
}

var errHandler = &testError{}

type testError struct{}

func (*testError) Error() string { return "handler failed" }
