// Package module wires detection into the API
package module

import (
	"genscan/internal/modkit"
	"genscan/internal/modkit/httpkit"
	"genscan/internal/services/api/detection/domain"
	dethttp "genscan/internal/services/api/detection/http"
	detsvc "genscan/internal/services/api/detection/service"
	scans "genscan/internal/services/scans/domain"
)

// Ports are the collaborators the detection module needs, passed with modkit.WithPorts
type Ports struct {
	Text     domain.TextDetector
	Image    domain.ImageDetector
	Recorder scans.RecorderPort
	History  scans.HistoryPort
}

// Exposed is what the module offers other modules
type Exposed struct {
	Service domain.ServicePort
	// Capabilities feeds the meta module
	Capabilities func() any
}

type Module struct {
	modkit.Base
	ports Exposed
}

func (m *Module) Ports() any { return m.ports }

// New builds the detection service and mounts it under /detection.
// Both detectors are required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("detection"), modkit.WithPrefix("/detection")}, opts...)...)
	p, ok := b.Ports.(Ports)
	if !ok || p.Text == nil || p.Image == nil {
		panic("detection module requires modkit.WithPorts(detection.Ports{...}) with both detectors")
	}
	o := FromConfig(deps.Cfg)

	svc := detsvc.New(p.Text, p.Image, p.Recorder, p.History, detsvc.Config{MaxUploadBytes: o.MaxUploadBytes})
	hc := dethttp.Config{Limits: o.Limits, MaxUploadBytes: o.MaxUploadBytes}

	return &Module{
		Base: modkit.NewBase(b, func(r httpkit.Router) { dethttp.Register(r, svc, hc) }),
		ports: Exposed{
			Service:      svc,
			Capabilities: func() any { return svc.Capabilities() },
		},
	}
}
