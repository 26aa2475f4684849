// Package docs embeds the OpenAPI description of the HTTP API.
package docs

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml
var files embed.FS

// FileSystem serves openapi.yaml.
func FileSystem() http.FileSystem {
	return http.FS(files)
}
