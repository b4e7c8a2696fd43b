package modkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"genscan/internal/modkit/httpkit"
	phttp "genscan/internal/platform/net/http"
	"genscan/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
)

type Recorder interface{ Record(string) }

type recorder struct{ seen []string }

func (r *recorder) Record(id string) { r.seen = append(r.seen, id) }

type scansPorts struct {
	Recorder Recorder
	limit    Recorder
}

type stub struct {
	Base
	ports any
}

func (s stub) Ports() any { return s.ports }

func TestBuild_LaterOptionsWin(t *testing.T) {
	b := Build(WithName("detection"), WithPrefix("/detection"), WithPrefix("/v2/detection"), WithPorts(42))
	if b.Name != "detection" || b.Prefix != "/v2/detection" || b.Ports != 42 {
		t.Fatalf("built = %+v", b)
	}
	if (Build() != Built{}) {
		t.Fatalf("empty build = %+v", Build())
	}
}

func TestBase_MountsUnderPrefix(t *testing.T) {
	routes := func(r httpkit.Router) {
		httpkit.Get(r, "/capabilities", func(*http.Request) (any, error) { return "caps", nil })
	}

	for _, tc := range []struct{ prefix, path string }{
		{"/meta", "/meta/capabilities"},
		{"", "/capabilities"},
		{"/", "/capabilities"},
	} {
		m := chi.NewRouter()
		NewBase(Build(WithName("meta"), WithPrefix(tc.prefix)), routes).MountRoutes(phttp.AdaptChi(m))
		rec := httptest.NewRecorder()
		m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != 200 {
			t.Fatalf("prefix %q: %s = %d", tc.prefix, tc.path, rec.Code)
		}
	}

	// a routeless module mounts nothing
	m := chi.NewRouter()
	NewBase(Build(WithName("scans")), nil).MountRoutes(phttp.AdaptChi(m))
	if len(m.Routes()) != 0 {
		t.Fatalf("routes = %v", m.Routes())
	}

	testkit.MustPanic(t, func() { NewBase(Build(WithPrefix("/x")), nil) })
}

func TestPortsOf(t *testing.T) {
	rec := &recorder{}
	base := NewBase(Build(WithName("scans")), nil)

	direct := stub{Base: base, ports: Recorder(rec)}
	if got, ok := PortsOf[Recorder](direct); !ok || got != rec {
		t.Fatalf("direct = %v, %v", got, ok)
	}

	bundle := stub{Base: base, ports: scansPorts{Recorder: rec}}
	if got, ok := PortsOf[Recorder](bundle); !ok || got != rec {
		t.Fatalf("bundle field = %v, %v", got, ok)
	}
	if got, ok := PortsOf[scansPorts](bundle); !ok || got.Recorder != rec {
		t.Fatalf("bundle itself = %v, %v", got, ok)
	}

	hidden := stub{Base: base, ports: scansPorts{limit: rec}}
	if _, ok := PortsOf[Recorder](hidden); ok {
		t.Fatalf("unexported field should be skipped")
	}
	if _, ok := PortsOf[Recorder](stub{Base: base}); ok {
		t.Fatalf("nil ports matched")
	}
	if _, ok := PortsOf[Recorder](stub{Base: base, ports: 7}); ok {
		t.Fatalf("scalar ports matched")
	}
}

func TestMustPortsOf_NamesModuleAndPort(t *testing.T) {
	m := stub{Base: NewBase(Build(WithName("scans")), nil)}
	v := testkit.MustPanic(t, func() { MustPortsOf[Recorder](m) })
	msg, _ := v.(string)
	if !strings.Contains(msg, "scans") || !strings.Contains(msg, "modkit.Recorder") {
		t.Fatalf("panic = %v", v)
	}
}
