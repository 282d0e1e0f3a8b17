package handler

import (
	"net/http"

	"github.com/vidrate/vidrate/internal/model"
)

// CatalogHandler serves the in-memory codec catalog. The catalog is
// read-only input here; editing and importing belong to a separate
// administrative tool.
type CatalogHandler struct {
	catalog *model.CodecCatalog
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog *model.CodecCatalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Get returns the full catalog.
//
// GET /api/v1/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog)
}
