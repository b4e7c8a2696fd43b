// Package http holds the chi facade, the JSON envelope and the API server
package http

import (
	stdhttp "net/http"

	perr "genscan/internal/platform/errors"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
)

// Envelope wraps every API body, success or failure
type Envelope struct {
	StatusCode int             `json:"status_code"`
	Status     string          `json:"status"`
	Code       *perr.ErrorCode `json:"code,omitempty"`
	Error      string          `json:"error,omitempty"`
	Field      string          `json:"field,omitempty"`
	RequestID  string          `json:"request_id,omitempty"`
	Data       any             `json:"data,omitempty"`
}

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorEnvelope maps err onto its status and wire payload
func ErrorEnvelope(r *stdhttp.Request, err error) Envelope {
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       &wr.Code,
		Error:      wr.Message,
		Field:      wr.Field,
		RequestID:  chimw.GetReqID(r.Context()),
	}
}

// RespondError writes err as an envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	env := ErrorEnvelope(r, err)
	JSON(w, env.StatusCode, env)
}

// Response is what return style handlers produce
type Response struct {
	Status int
	Body   any
}

func OK(data any) Response     { return Response{Status: stdhttp.StatusOK, Body: data} }
func Error(err error) Response { return Response{Body: err} }

// Handle adapts a Response returning func to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		if err, ok := resp.Body.(error); ok && err != nil {
			RespondError(w, r, err)
			return
		}
		status := resp.Status
		if status == 0 {
			status = stdhttp.StatusOK
		}
		JSON(w, status, Envelope{
			StatusCode: status,
			Status:     stdhttp.StatusText(status),
			RequestID:  chimw.GetReqID(r.Context()),
			Data:       resp.Body,
		})
	}
}
