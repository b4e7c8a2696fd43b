package http

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"genscan/internal/core/signal"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/net/middleware"
	detsvc "genscan/internal/services/api/detection/service"
	scans "genscan/internal/services/scans/domain"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type stubText struct{}

func (stubText) Tier() signal.Method { return signal.MethodHeuristic }
func (stubText) Detect(context.Context, string) signal.Result {
	return signal.Result{AIProbability: 0.9, Confidence: 0.5, Analysis: signal.Analysis{"method": "heuristic"}}
}

type stubImage struct{}

func (stubImage) Tier() signal.Method { return signal.MethodAdvanced }
func (stubImage) Detect(context.Context, []byte) signal.Result {
	return signal.Result{AIProbability: 0.2, Confidence: 0.8, Analysis: signal.Analysis{"method": "advanced_cv"}}
}

type memScans struct{ rows []scans.Scan }

func (m *memScans) Record(_ context.Context, in scans.NewScan) (scans.Scan, error) {
	sc := scans.Scan{ID: "id-" + string(in.ContentType), ContentType: in.ContentType, URL: in.URL, FilePath: in.FilePath}
	m.rows = append([]scans.Scan{sc}, m.rows...)
	return sc, nil
}

func (m *memScans) History(_ context.Context, limit int) ([]scans.Scan, error) {
	if limit <= 0 || limit > len(m.rows) {
		limit = len(m.rows)
	}
	return m.rows[:limit], nil
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T, limits Limits, maxUpload int64) (http.Handler, *memScans) {
	t.Helper()
	st := &memScans{}
	svc := detsvc.New(stubText{}, stubImage{}, st, st, detsvc.Config{MaxUploadBytes: maxUpload})
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), svc, Config{Limits: limits, MaxUploadBytes: maxUpload})
	return mux, st
}

func do(t *testing.T, h http.Handler, req *http.Request) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v body=%s", req.URL.Path, err, rec.Body.String())
	}
	return rec.Code, env
}

func unlimited() Limits {
	off := middleware.RateLimitOptions{Disabled: true}
	return Limits{Text: off, Image: off, Social: off, History: off}
}

func upload(t *testing.T, ct string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="pic.png"`)
	if ct != "" {
		hdr.Set("Content-Type", ct)
	}
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("part: %v", err)
	}
	_, _ = part.Write(data)
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestText(t *testing.T) {
	h, _ := newServer(t, unlimited(), 0)

	req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader(`{"content":"hello world"}`))
	req.Header.Set("Content-Type", "application/json")
	code, env := do(t, h, req)
	if code != http.StatusOK {
		t.Fatalf("status = %d err = %s", code, env.Error)
	}
	var out struct {
		ScanID        string         `json:"scan_id"`
		ContentType   string         `json:"content_type"`
		AIProbability float64        `json:"ai_probability"`
		Analysis      map[string]any `json:"analysis"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("data: %v", err)
	}
	if out.ScanID != "id-text" || out.ContentType != "text" || out.AIProbability != 0.9 || out.Analysis["method"] != "heuristic" {
		t.Fatalf("out = %+v", out)
	}

	for _, body := range []string{`{"content":"   "}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/text", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if code, _ := do(t, h, req); code != http.StatusBadRequest {
			t.Fatalf("body %q status = %d", body, code)
		}
	}
}

func TestImage(t *testing.T) {
	data := pngBytes(t)

	tests := []struct {
		name string
		ct   string
		max  int64
		want int
	}{
		{"png", "image/png", 0, http.StatusOK},
		{"sniffed", "", 0, http.StatusOK},
		{"unsupported", "image/gif", 0, http.StatusBadRequest},
		{"too large", "image/png", 16, http.StatusRequestEntityTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, st := newServer(t, unlimited(), tc.max)
			code, env := do(t, h, upload(t, tc.ct, data))
			if code != tc.want {
				t.Fatalf("status = %d err = %s", code, env.Error)
			}
			if code == http.StatusOK && (len(st.rows) != 1 || st.rows[0].FilePath != "pic.png") {
				t.Fatalf("rows = %+v", st.rows)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		h, _ := newServer(t, unlimited(), 0)
		req := httptest.NewRequest(http.MethodPost, "/image", strings.NewReader("x"))
		req.Header.Set("Content-Type", "text/plain")
		if code, _ := do(t, h, req); code != http.StatusBadRequest {
			t.Fatalf("status = %d", code)
		}
	})
}

func TestSocialAndHistory(t *testing.T) {
	h, _ := newServer(t, unlimited(), 0)

	code, env := do(t, h, httptest.NewRequest(http.MethodPost, "/social?url=https://social.example/p/1", nil))
	if code != http.StatusOK {
		t.Fatalf("status = %d err = %s", code, env.Error)
	}
	var out struct {
		AIProbability float64        `json:"ai_probability"`
		Analysis      map[string]any `json:"analysis"`
	}
	_ = json.Unmarshal(env.Data, &out)
	if out.AIProbability != 0.4 || out.Analysis["method"] != "social_placeholder" {
		t.Fatalf("out = %+v", out)
	}

	for _, q := range []string{"", "?url=", "?url=not-a-url", "?url=ftp://x.example/a"} {
		if code, _ := do(t, h, httptest.NewRequest(http.MethodPost, "/social"+q, nil)); code != http.StatusBadRequest {
			t.Fatalf("query %q status = %d", q, code)
		}
	}

	code, env = do(t, h, httptest.NewRequest(http.MethodGet, "/history?limit=5", nil))
	if code != http.StatusOK {
		t.Fatalf("history status = %d", code)
	}
	var hist struct {
		Scans []map[string]any `json:"scans"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(env.Data, &hist); err != nil || hist.Count != 1 || hist.Scans[0]["url"] != "https://social.example/p/1" {
		t.Fatalf("history = %+v err = %v", hist, err)
	}

	if code, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil)); code != http.StatusBadRequest {
		t.Fatalf("bad limit status = %d", code)
	}
}

func TestRateLimits(t *testing.T) {
	limits := DefaultLimits()
	limits.Social = middleware.PerMinute(2)
	h, _ := newServer(t, limits, 0)

	codes := make([]int, 0, 3)
	for range 3 {
		code, _ := do(t, h, httptest.NewRequest(http.MethodPost, "/social?url=https://x.example/1", nil))
		codes = append(codes, code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	// other routes keep their own budget
	if code, _ := do(t, h, httptest.NewRequest(http.MethodGet, "/history", nil)); code != http.StatusOK {
		t.Fatalf("history status = %d", code)
	}
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.Text.Requests != 10 || l.Image.Requests != 5 || l.Social.Requests != 20 || l.History.Requests != 30 {
		t.Fatalf("limits = %+v", l)
	}
}
