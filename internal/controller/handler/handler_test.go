package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"pageserve/internal/logger"
	"pageserve/internal/view"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type recordingRenderer struct {
	data map[string]any
	err  error
}

func (r *recordingRenderer) Render(name string, data any) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.data[name] = data
	return []byte(name), nil
}

func TestHealthReportsUTCTimestamp(t *testing.T) {
	t.Parallel()

	h := NewHandler(logger.NewWithWriter(io.Discard, logger.InfoLogLevel), &recordingRenderer{data: map[string]any{}})
	h.now = func() time.Time {
		return time.Date(2024, 1, 1, 2, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	h.Health(c)

	var got HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := HealthStatus{Status: "healthy", Timestamp: "2024-01-01T00:00:00Z"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestErrorViewsReceiveStatus(t *testing.T) {
	t.Parallel()

	views := &recordingRenderer{data: map[string]any{}}
	h := NewHandler(logger.NewWithWriter(io.Discard, logger.InfoLogLevel), views)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/gone", nil)
	h.NotFound(c)

	if rec.Code != http.StatusNotFound || rec.Body.String() != "404" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if !c.IsAborted() {
		t.Fatal("expected the error handler to abort the chain")
	}
	page, ok := views.data["404"].(view.ErrorPage)
	if !ok || page.Status != http.StatusNotFound || page.Text != "Not Found" {
		t.Fatalf("unexpected error page data %#v", views.data["404"])
	}
}

func TestRecoverLogsOnceAndHidesDetail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := NewHandler(logger.NewWithWriter(&buf, logger.InfoLogLevel), &recordingRenderer{data: map[string]any{}})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.Recover(c, "secret detail")

	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Fatalf("expected one log entry, got %d: %s", got, buf.String())
	}
	if !strings.Contains(buf.String(), "Internal server error: secret detail") {
		t.Fatalf("expected failure in log, got %s", buf.String())
	}
}
