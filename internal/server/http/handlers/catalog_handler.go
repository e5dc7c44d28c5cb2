package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

// CatalogHandler serves the package catalog.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// List handles GET /api/packages.
func (h *CatalogHandler) List(c *gin.Context) {
	packages, err := h.facade.Packages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.PackageResponse, 0, len(packages))
	for _, p := range packages {
		resp = append(resp, toPackageResponse(p))
	}
	respond(c, http.StatusOK, resp)
}

// Get handles GET /api/packages/:id.
func (h *CatalogHandler) Get(c *gin.Context) {
	pkg, err := h.facade.Package(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toPackageResponse(*pkg))
}
