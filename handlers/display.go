package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
)

// Fields absent from a display request keep their defaults. The *_input
// ranges hold bounds as typed, parsed in the saved language, and replace the
// numeric range they name.
type customerDisplayRequest struct {
	Filters      display.CustomerFilters                    `json:"filters"`
	SortMethod   display.SortMethod[display.CustomerSortBy] `json:"sort_method"`
	BalanceInput *display.TextRange                         `json:"balance_input"`
	DebtInput    *display.TextRange                         `json:"debt_input"`
}

type productDisplayRequest struct {
	Filters    display.ProductFilters                    `json:"filters"`
	SortMethod display.SortMethod[display.ProductSortBy] `json:"sort_method"`
	PriceInput *display.TextRange                        `json:"price_input"`
}

type queueDisplayRequest struct {
	Filters              display.QueueFilters                    `json:"filters"`
	SortMethod           display.SortMethod[display.QueueSortBy] `json:"sort_method"`
	TotalPriceInput      *display.TextRange                      `json:"total_price_input"`
	CustomerBalanceInput *display.TextRange                      `json:"customer_balance_input"`
}

func (h *Handler) language() string {
	if h.Settings == nil {
		return "en-US"
	}
	return h.Settings.LanguageUsed().String()
}

func (h *Handler) displayCustomers(c *gin.Context) {
	req := customerDisplayRequest{Filters: display.NewCustomerFilters(), SortMethod: display.NewCustomerSortMethod()}
	if !bindJSON(c, &req) {
		return
	}
	lang := h.language()
	if req.BalanceInput != nil {
		req.Filters.Balance = req.BalanceInput.Int64Range(lang)
	}
	if req.DebtInput != nil {
		req.Filters.Debt = req.DebtInput.DecimalRange(lang)
	}

	var customers []models.Customer
	var err error
	if h.Views != nil {
		customers, err = h.Views.Customers.Items(c.Request.Context())
	} else {
		customers, err = h.Customers.SelectAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, "displayCustomers", err)
		return
	}
	pipeline := display.NewPipeline[models.Customer](req.Filters, req.SortMethod, display.CustomerSorter{})
	pipeline.OnSourceChanged(customers)
	c.JSON(http.StatusOK, pipeline.DisplayList().Get())
}

func (h *Handler) displayProducts(c *gin.Context) {
	req := productDisplayRequest{Filters: display.NewProductFilters(), SortMethod: display.NewProductSortMethod()}
	if !bindJSON(c, &req) {
		return
	}
	if req.PriceInput != nil {
		req.Filters.Price = req.PriceInput.Int64Range(h.language())
	}

	var products []models.Product
	var err error
	if h.Views != nil {
		products, err = h.Views.Products.Items(c.Request.Context())
	} else {
		products, err = h.Products.SelectAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, "displayProducts", err)
		return
	}
	pipeline := display.NewPipeline[models.Product](req.Filters, req.SortMethod, display.ProductSorter{})
	pipeline.OnSourceChanged(products)
	c.JSON(http.StatusOK, pipeline.DisplayList().Get())
}

func (h *Handler) displayQueues(c *gin.Context) {
	now := h.Now()
	req := queueDisplayRequest{Filters: display.NewQueueFilters(now), SortMethod: display.NewQueueSortMethod()}
	if !bindJSON(c, &req) {
		return
	}
	lang := h.language()
	if req.TotalPriceInput != nil {
		req.Filters.TotalPrice = req.TotalPriceInput.DecimalRange(lang)
	}
	if req.CustomerBalanceInput != nil {
		req.Filters.CustomerBalance = req.CustomerBalanceInput.Int64Range(lang)
	}
	if req.Filters.Date.Range != display.DateRangeCustom {
		req.Filters.Date = display.QueueDateWithRange(req.Filters.Date.Range, now)
	}

	var queues []models.Queue
	var err error
	if h.Views != nil {
		queues, err = h.Views.Queues.Items(c.Request.Context())
	} else {
		queues, err = h.Queues.SelectAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, "displayQueues", err)
		return
	}
	pipeline := display.NewPipeline[models.Queue](req.Filters, req.SortMethod, display.QueueSorter{})
	pipeline.OnSourceChanged(queues)
	c.JSON(http.StatusOK, pipeline.DisplayList().Get())
}
