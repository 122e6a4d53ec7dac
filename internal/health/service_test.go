package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandlerAlive(t *testing.T) {
	t.Parallel()
	h := Handler()

	for _, path := range []string{"/", "/healthz"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if string(body) != "alive" {
			t.Fatalf("GET %s body = %q, want %q", path, body, "alive")
		}
	}
}

func TestHandlerRejectsNonGet(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /healthz = %d, want 405", rec.Code)
	}
}
