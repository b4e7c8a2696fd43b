// Package http provides http transport for detection
package http

import (
	"errors"
	"io"
	stdhttp "net/http"

	"genscan/internal/modkit/httpkit"
	perr "genscan/internal/platform/errors"
	"genscan/internal/platform/net/middleware"
	"genscan/internal/services/api/detection/domain"
)

// multipartSlack covers boundaries and part headers around the file bytes
const multipartSlack = 64 << 10

// Limits are the per client budgets of each route
type Limits struct {
	Text    middleware.RateLimitOptions
	Image   middleware.RateLimitOptions
	Social  middleware.RateLimitOptions
	History middleware.RateLimitOptions
}

// DefaultLimits are the per minute budgets the routes ship with
func DefaultLimits() Limits {
	return Limits{
		Text:    middleware.PerMinute(10),
		Image:   middleware.PerMinute(5),
		Social:  middleware.PerMinute(20),
		History: middleware.PerMinute(30),
	}
}

// Config carries the transport knobs
type Config struct {
	Limits         Limits
	MaxUploadBytes int64
}

// Register mounts detection endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort, cfg Config) {
	h := &handlers{svc: s, maxUpload: cfg.MaxUploadBytes}

	httpkit.Limited(r, cfg.Limits.Text, func(r httpkit.Router) {
		httpkit.PostJSON[domain.TextRequest](r, "/text", h.text)
	})
	httpkit.Limited(r, cfg.Limits.Image, func(r httpkit.Router) {
		httpkit.Post(r, "/image", h.image)
	})
	httpkit.Limited(r, cfg.Limits.Social, func(r httpkit.Router) {
		httpkit.Post(r, "/social", h.social)
	})
	httpkit.Limited(r, cfg.Limits.History, func(r httpkit.Router) {
		httpkit.Get(r, "/history", h.history)
	})
}

type handlers struct {
	svc       domain.ServicePort
	maxUpload int64
}

// @Summary Score text
// @Tags Detection
// @Accept json
// @Produce json
// @Param payload body domain.TextRequest true "Text to score"
// @Success 200 {object} domain.DetectionResponse
// @Router /detection/text [post]
func (h *handlers) text(r *stdhttp.Request, in domain.TextRequest) (any, error) {
	return h.svc.Text(r.Context(), in.Content)
}

// @Summary Score an uploaded image
// @Tags Detection
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "jpeg, png or webp image"
// @Success 200 {object} domain.DetectionResponse
// @Router /detection/image [post]
func (h *handlers) image(r *stdhttp.Request) (any, error) {
	if h.maxUpload > 0 {
		r.Body = stdhttp.MaxBytesReader(nil, r.Body, h.maxUpload+multipartSlack)
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooBig *stdhttp.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, perr.TooLargef("file too large, limit is %d bytes", h.maxUpload)
		}
		return nil, perr.WithField(perr.Wrap(err, perr.ErrorCodeValidation, "expected a multipart form"), "file")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, perr.WithField(perr.Validationf("file is required"), "file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "read upload")
	}
	return h.svc.Image(r.Context(), domain.ImageUpload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	})
}

// @Summary Record a social post url
// @Tags Detection
// @Produce json
// @Param url query string true "absolute http or https url"
// @Success 200 {object} domain.DetectionResponse
// @Router /detection/social [post]
func (h *handlers) social(r *stdhttp.Request) (any, error) {
	u, err := httpkit.QueryString(r, "url", true)
	if err != nil {
		return nil, err
	}
	return h.svc.Social(r.Context(), u)
}

// @Summary Recent scans, newest first
// @Tags Detection
// @Produce json
// @Param limit query int false "1..200, default 50"
// @Success 200 {object} domain.HistoryResponse
// @Router /detection/history [get]
func (h *handlers) history(r *stdhttp.Request) (any, error) {
	limit, err := httpkit.QueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.History(r.Context(), limit)
}
