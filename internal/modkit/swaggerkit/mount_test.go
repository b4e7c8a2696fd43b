package swaggerkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "genscan/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMount(t *testing.T) {
	get := func(m http.Handler, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	m := chi.NewRouter()
	Mount(phttp.AdaptChi(m), true)
	if rec := get(m, "/api/docs"); rec.Code != http.StatusPermanentRedirect || rec.Header().Get("Location") != "/api/docs/" {
		t.Fatalf("redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if rec := get(m, "/api/docs/doc.json"); rec.Code != http.StatusOK || rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("doc.json = %d", rec.Code)
	}
	if rec := get(m, "/api/docs/index.html"); rec.Code != http.StatusOK {
		t.Fatalf("ui = %d", rec.Code)
	}

	off := chi.NewRouter()
	Mount(phttp.AdaptChi(off), false)
	if len(off.Routes()) != 0 {
		t.Fatalf("disabled mount registered %v", off.Routes())
	}
}
