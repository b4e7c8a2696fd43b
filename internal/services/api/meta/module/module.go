// Package module mounts the meta endpoints
package module

import (
	"reflect"
	"time"

	"genscan/internal/modkit"
	"genscan/internal/modkit/httpkit"
	metahttp "genscan/internal/services/api/meta/http"
)

// ServiceName is reported by the health and service endpoints
const ServiceName = "genscan-api"

// Ports lets other modules feed the meta endpoints
type Ports struct {
	Capabilities func() any
}

type Module struct{ modkit.Base }

func (Module) Ports() any { return nil }

// New mounts /meta; readiness pings whichever stores deps carries
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	p, _ := b.Ports.(Ports)

	d := metahttp.Deps{
		ServiceName:  ServiceName,
		StartedAt:    time.Now(),
		Capabilities: p.Capabilities,
		// clickhouse only mirrors scans, so postgres alone can fail readiness
		Checks: []metahttp.Check{
			{Name: "pg", Target: pingable(deps.PG), Required: true},
			{Name: "ch", Target: pingable(deps.CH)},
		},
	}
	return &Module{Base: modkit.NewBase(b, func(r httpkit.Router) { metahttp.Register(r, d) })}
}

// pingable collapses typed nils so readiness reports skipped instead of panicking
func pingable(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}
	return v
}
