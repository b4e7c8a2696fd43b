package module

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"genscan/internal/core/imagedetect"
	"genscan/internal/core/textdetect"
	"genscan/internal/modkit"
	"genscan/internal/platform/config"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/testkit"
	detsvc "genscan/internal/services/api/detection/service"

	"github.com/go-chi/chi/v5"
)

func TestFromConfig(t *testing.T) {
	o := FromConfig(config.New())
	if o.MaxUploadBytes != detsvc.DefaultMaxUploadBytes || o.Limits.Text.Requests != 10 || o.Limits.Image.Requests != 5 {
		t.Fatalf("defaults = %+v", o)
	}

	t.Setenv("GENSCAN_DETECT_MAX_UPLOAD_BYTES", "2048")
	t.Setenv("GENSCAN_DETECT_RATE_IMAGE", "2")
	t.Setenv("GENSCAN_DETECT_RATE_LIMIT_DISABLED", "true")
	o = FromConfig(config.New())
	if o.MaxUploadBytes != 2048 || o.Limits.Image.Requests != 2 || o.Limits.Image.Window != time.Minute {
		t.Fatalf("overrides = %+v", o)
	}
	if !o.Limits.Text.Disabled || !o.Limits.History.Disabled {
		t.Fatalf("limits not disabled: %+v", o.Limits)
	}
}

func TestNew_RequiresBothDetectors(t *testing.T) {
	text := textdetect.New()
	for name, opts := range map[string][]modkit.Option{
		"no ports":    nil,
		"wrong type":  {modkit.WithPorts(42)},
		"image unset": {modkit.WithPorts(Ports{Text: text})},
	} {
		v := testkit.MustPanic(t, func() { New(modkit.Deps{}, opts...) })
		if msg, _ := v.(string); !strings.Contains(msg, "both detectors") {
			t.Fatalf("%s: panic = %v", name, v)
		}
	}
}

func TestNew_MountsAndExposes(t *testing.T) {
	t.Setenv("GENSCAN_DETECT_RATE_LIMIT_DISABLED", "true")

	m := New(modkit.Deps{}, modkit.WithPorts(Ports{
		Text:  textdetect.New(),
		Image: imagedetect.NewWithOptions(imagedetect.Options{Decoder: imagedetect.Unavailable()}),
	}))
	if m.Name() != "detection" || m.Prefix() != "/detection" {
		t.Fatalf("name = %q prefix = %q", m.Name(), m.Prefix())
	}

	exp := modkit.MustPortsOf[Exposed](m)
	if exp.Service == nil || exp.Capabilities() == nil {
		t.Fatalf("exposed = %+v", exp)
	}

	mux := chi.NewRouter()
	m.MountRoutes(phttp.AdaptChi(mux))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/detection/text", strings.NewReader(`{"content":"The quick brown fox jumps over the lazy dog."}`))
	req.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("text = %d %s", rec.Code, rec.Body.String())
	}
}
