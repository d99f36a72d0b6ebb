package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/config"
)

type languageRequest struct {
	Language config.Language `json:"language"`
}

func (h *Handler) getLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"language": h.language()})
}

func (h *Handler) putLanguage(c *gin.Context) {
	var req languageRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Language.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language", "supported": config.AllLanguage})
		return
	}
	if err := h.Settings.SaveLanguageUsed(req.Language); err != nil {
		respondError(c, "putLanguage", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language})
}
