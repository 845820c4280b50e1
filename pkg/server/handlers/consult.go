package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	concordia "github.com/lusotexts/concordia"
	"github.com/lusotexts/concordia/pkg/server/dto"
)

// ConsultHandler handles persona consultation requests.
type ConsultHandler struct {
	client concordia.Concordia
}

// NewConsultHandler creates a consult handler.
func NewConsultHandler(client concordia.Concordia) *ConsultHandler {
	return &ConsultHandler{client: client}
}

// Consult handles POST /api/v1/consult.
func (h *ConsultHandler) Consult(c *gin.Context) {
	var req dto.ConsultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.client.Consult(c.Request.Context(), req.BookID, req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
