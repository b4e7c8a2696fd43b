package swaggerkit

import (
	_ "embed"
	"net/http"
	"strings"

	"genscan/internal/platform/config"
	perr "genscan/internal/platform/errors"

	"github.com/goccy/go-json"
)

//go:embed openapi.json
var openapiDoc string

// docReader is swapped by tests to feed a broken document
var docReader = func() string { return openapiDoc }

// fallbackResponses are attached to every operation that does not declare its own
var fallbackResponses = map[string]map[string]any{
	"400": {
		"status_code": 400,
		"status":      "Bad Request",
		"code":        perr.ErrorCodeValidation.String(),
		"error":       "content must not be blank",
		"field":       "content",
		"request_id":  "579f33bf50b1/abc-000001",
	},
	"500": {
		"status_code": 500,
		"status":      "Internal Server Error",
		"code":        perr.ErrorCodePanic.String(),
		"error":       "internal error",
		"request_id":  "579f33bf50b1/abc-000001",
	},
}

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		ensureServers(spec, "/api/v1")
		if v := config.New().Prefix("GENSCAN_API_").MayString("DOCS_TITLE_SUFFIX", ""); v != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + v
				}
			}
		}
		ensureErrorResponse(spec)
		addFallbackResponses(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers serves the document as OAS 3.0.3, which is what the bundled UI renders
func ensureServers(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// child returns m[key] as a map, creating it when absent
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}

// ensureErrorResponse describes the envelope RespondError writes
func ensureErrorResponse(spec map[string]any) {
	schemas := child(child(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	codes := make([]any, 0, len(perr.CodeNames()))
	for _, n := range perr.CodeNames() {
		codes = append(codes, n)
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Error envelope",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "string", "enum": codes},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string", "description": "offending request field, when known"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status", "code", "error"},
	}
}

func addFallbackResponses(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps := child(op, "responses")
			for status, example := range fallbackResponses {
				if _, exists := resps[status]; exists {
					continue
				}
				resps[status] = map[string]any{
					"description": http.StatusText(example["status_code"].(int)),
					"content": map[string]any{
						"application/json": map[string]any{
							"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
							"example": example,
						},
					},
				}
			}
		}
	}
}
