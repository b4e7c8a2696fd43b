// Package swaggerkit serves the OpenAPI document of the genscan API and a
// browsable UI for it under /api/docs
package swaggerkit

import (
	"net/http"

	phttp "genscan/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

const docsPath = "/api/docs"

// Mount is a no-op unless enabled (GENSCAN_API_SWAGGER)
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get(docsPath, http.RedirectHandler(docsPath+"/", http.StatusPermanentRedirect).ServeHTTP)
	r.Get(docsPath+"/doc.json", serveDocJSON())
	r.Handle(docsPath+"/*", httpSwagger.Handler(
		httpSwagger.InstanceName("genscan"),
		httpSwagger.URL(docsPath+"/doc.json"),
		httpSwagger.DocExpansion("list"),
	))
}
