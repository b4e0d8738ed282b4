package portal

import (
	"fmt"
	"net/http"

	"github.com/medrex/onco-portal/pkg/interfaces"
	"github.com/medrex/onco-portal/pkg/logger"
	"github.com/medrex/onco-portal/pkg/types"
)

// JSONFallback answers a failed request with a generic JSON error so clients
// always receive a well formed body
type JSONFallback struct {
	logger *logger.Logger
}

var _ interfaces.FallbackRenderer = (*JSONFallback)(nil)

// NewJSONFallback creates a new JSON fallback renderer
func NewJSONFallback(log *logger.Logger) *JSONFallback {
	return &JSONFallback{logger: log}
}

// RenderFallback implements interfaces.FallbackRenderer
func (f *JSONFallback) RenderFallback(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	f.logger.WithContext(r.Context()).WithFields(map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"panic":  fmt.Sprint(recovered),
	}).Error("Handler panicked; rendering fallback")

	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error:  "Something went wrong while rendering this view",
		Status: http.StatusInternalServerError,
		Code:   types.ErrCodeInternalError,
		Details: map[string]interface{}{
			"request_id": logger.RequestIDFromContext(r.Context()),
		},
	})
}
