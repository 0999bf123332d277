package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/app"
)

type AuditHandler struct {
	service *app.AuditService
}

func NewAuditHandler(service *app.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// History lists the recorded changes of a template, newest first. Entries
// recorded under an earlier name of a renamed template are included.
func (h *AuditHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		return
	}

	entries, err := h.service.History(c.Request.Context(), c.Param("name"), limit)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, NewAuditEntryResponses(entries))
}
