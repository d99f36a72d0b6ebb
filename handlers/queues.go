package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/mmdatafocus/ledger_backend/workflow"
)

const dateLayout = "2006-01-02"

// parseTime accepts RFC3339 or a bare date, read in loc. A bare end date
// covers the whole day.
func parseTime(value string, loc *time.Location, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true
}

func (h *Handler) listQueues(c *gin.Context) {
	ctx := c.Request.Context()
	startParam, endParam := c.Query("start"), c.Query("end")
	if startParam == "" && endParam == "" {
		queues, err := h.Queues.SelectAll(ctx)
		if err != nil {
			respondError(c, "listQueues", err)
			return
		}
		c.JSON(http.StatusOK, queues)
		return
	}

	loc := h.Now().Location()
	start, okStart := parseTime(startParam, loc, false)
	end, okEnd := parseTime(endParam, loc, true)
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must both be dates"})
		return
	}
	queues, err := h.Queues.SelectAllInRange(ctx, start, end)
	if err != nil {
		respondError(c, "listQueues", err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

func (h *Handler) getQueue(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	queue, err := h.Queues.SelectById(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getQueue", err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *Handler) addQueue(c *gin.Context) {
	var input models.NewQueue
	if !bindJSON(c, &input) {
		return
	}
	queue, err := h.Queues.Add(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "addQueue", err)
		return
	}
	c.JSON(http.StatusCreated, queue)
}

func (h *Handler) updateQueue(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewQueue
	if !bindJSON(c, &input) {
		return
	}
	queue, err := h.Queues.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateQueue", err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *Handler) deleteQueue(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	queue, err := h.Queues.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteQueue", err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *Handler) searchQueues(c *gin.Context) {
	queues, err := h.Queues.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "searchQueues", err)
		return
	}
	c.JSON(http.StatusOK, queues)
}

type previewRequest struct {
	// QueueId is the saved queue being edited, zero for a new one.
	QueueId int64           `json:"queue_id"`
	Queue   models.NewQueue `json:"queue"`
}

type previewResponse struct {
	CustomerId *int64               `json:"customer_id"`
	Preview    models.LedgerPreview `json:"preview"`
}

func (h *Handler) previewQueue(c *gin.Context) {
	ctx := c.Request.Context()
	var req previewRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := utils.ValidateStruct(&req.Queue); err != nil {
		respondError(c, "previewQueue", err)
		return
	}

	var old *models.Queue
	date := h.Now()
	if req.QueueId != 0 {
		q, err := h.Queues.SelectById(ctx, req.QueueId)
		if err != nil {
			respondError(c, "previewQueue", err)
			return
		}
		old, date = q, q.Date
	}
	updated := req.Queue.ToQueue(req.QueueId, date)

	var customer models.Customer
	if updated.CustomerId != nil {
		selected, err := h.Customers.SelectById(ctx, *updated.CustomerId)
		if err != nil {
			respondError(c, "previewQueue", err)
			return
		}
		customer = *selected
	}
	c.JSON(http.StatusOK, previewResponse{
		CustomerId: updated.CustomerId,
		Preview:    customer.Preview(old, updated),
	})
}

type exportRequest struct {
	Range display.DateRange `json:"range"`
	Start *time.Time        `json:"start"`
	End   *time.Time        `json:"end"`
}

func (h *Handler) exportQueues(c *gin.Context) {
	ctx := c.Request.Context()
	req := exportRequest{Range: display.DateRangeAllTime}
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	date, ok := h.resolveDate(c, req.Range, req.Start, req.End)
	if !ok {
		return
	}
	queues, err := h.Queues.SelectAllInRange(ctx, date.Start, date.End)
	if err != nil {
		respondError(c, "exportQueues", err)
		return
	}
	export, err := workflow.ExportQueues(ctx, queues, date.Start.Location(), h.UploadExports)
	if err != nil {
		respondError(c, "exportQueues", err)
		return
	}
	if export.Url != "" {
		c.JSON(http.StatusOK, export)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+export.FileName)
	c.Data(http.StatusOK, utils.ContentTypeXlsx, export.Data)
}

// resolveDate needs start and end only for CUSTOM.
func (h *Handler) resolveDate(c *gin.Context, r display.DateRange, start *time.Time, end *time.Time) (display.QueueDate, bool) {
	if r != display.DateRangeCustom {
		return display.QueueDateWithRange(r, h.Now()), true
	}
	if start == nil || end == nil || end.Before(*start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CUSTOM range needs start <= end"})
		return display.QueueDate{}, false
	}
	return display.QueueDateWithCustomRange(*start, *end), true
}
