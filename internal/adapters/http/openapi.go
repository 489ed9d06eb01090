package httpadapter

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var openAPIYAML []byte

var loadContract = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIYAML)
	if err != nil {
		return nil, fmt.Errorf("load openapi contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi contract: %w", err)
	}
	return doc, nil
})

// Contract returns the parsed and validated API contract.
func Contract() (*openapi3.T, error) {
	return loadContract()
}

func (rt *Router) openAPIContract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	doc, err := Contract()
	if err != nil {
		slog.Error("openapi_contract_unavailable", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "contract unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
