package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/dashboard"
	"github.com/mmdatafocus/ledger_backend/display"
)

func (h *Handler) getDashboard(c *gin.Context) {
	r := display.DateRangeAllTime
	if v := c.Query("range"); v != "" {
		if err := r.UnmarshalText([]byte(v)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var start, end *time.Time
	if r == display.DateRangeCustom {
		loc := h.Now().Location()
		if t, ok := parseTime(c.Query("start"), loc, false); ok {
			start = &t
		}
		if t, ok := parseTime(c.Query("end"), loc, true); ok {
			end = &t
		}
	}
	date, ok := h.resolveDate(c, r, start, end)
	if !ok {
		return
	}

	result, err := dashboard.Load(c.Request.Context(), h.Queues, h.Customers, date)
	if err != nil {
		respondError(c, "getDashboard", err)
		return
	}
	c.JSON(http.StatusOK, result.ToMap())
}
