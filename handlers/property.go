package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viewingdesk/models"
	"viewingdesk/services/property"
)

type PropertyHandler struct {
	Service property.CatalogService
}

func NewPropertyHandler(svc property.CatalogService) *PropertyHandler {
	return &PropertyHandler{Service: svc}
}

// ListPropertiesHandler returns the current catalog snapshot; failures still carry an empty list.
func (h *PropertyHandler) ListPropertiesHandler(c *gin.Context) {
	props, err := h.Service.ListProperties(c.Request.Context())
	if err != nil {
		getLogger(c).Error("failed to fetch property catalog", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":      "物件データの取得に失敗しました。",
			"properties": []models.Property{},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props})
}
