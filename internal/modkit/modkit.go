// Package modkit wires genscan's service modules: shared deps, the module
// contract and typed port lookups between modules
package modkit

import (
	"reflect"

	"genscan/internal/modkit/httpkit"
	"genscan/internal/modkit/repokit"
	"genscan/internal/platform/config"
	"genscan/internal/platform/logger"
	"genscan/internal/platform/store"
)

// Deps are handed to every module; PG and CH are nil when storage is off
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Module is a unit that may mount routes and exposes ports to other modules
type Module interface {
	Name() string
	MountRoutes(r httpkit.Router)
	Ports() any
}

// Option adjusts a module at construction
type Option func(*Built)

// Built is the result of applying Options over a module's defaults
type Built struct {
	Name   string
	Prefix string
	Ports  any
}

func WithName(name string) Option     { return func(b *Built) { b.Name = name } }
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithPorts hands a module the collaborators it imports; the type is owned by that module
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// Build applies opts in order, so later options win over defaults placed first
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Base carries the name and prefix of a module and mounts its routes under the prefix.
// Modules embed it and add Ports
type Base struct {
	name   string
	prefix string
	routes func(httpkit.Router)
}

// NewBase panics on an empty name; a nil routes func mounts nothing
func NewBase(b Built, routes func(httpkit.Router)) Base {
	if b.Name == "" {
		panic("modkit: module without a name")
	}
	return Base{name: b.Name, prefix: b.Prefix, routes: routes}
}

func (b Base) Name() string   { return b.name }
func (b Base) Prefix() string { return b.prefix }

func (b Base) MountRoutes(r httpkit.Router) {
	if b.routes == nil {
		return
	}
	if b.prefix == "" || b.prefix == "/" {
		b.routes(r)
		return
	}
	r.Route(b.prefix, b.routes)
}

// PortsOf finds a T in m's ports: the ports value itself or one of its exported fields
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if !rv.Type().Field(i).IsExported() {
			continue
		}
		if v, ok := rv.Field(i).Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for boot wiring, where a missing port is a programming error
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("modkit: module " + m.Name() + " exposes no " + reflect.TypeFor[T]().String())
	}
	return v
}
