package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/ledger_backend/config"
	"github.com/mmdatafocus/ledger_backend/display"
	"github.com/mmdatafocus/ledger_backend/models"
	"github.com/mmdatafocus/ledger_backend/utils"
	"github.com/shopspring/decimal"
)

type CustomerStore interface {
	SelectAll(ctx context.Context) ([]models.Customer, error)
	SelectById(ctx context.Context, id int64) (*models.Customer, error)
	Add(ctx context.Context, input *models.NewCustomer) (*models.Customer, error)
	Update(ctx context.Context, id int64, input *models.NewCustomer) (*models.Customer, error)
	Delete(ctx context.Context, id int64) (*models.Customer, error)
	AddBalance(ctx context.Context, id int64, amount int64) (*models.Customer, error)
	WithdrawBalance(ctx context.Context, id int64, amount int64) (*models.Customer, error)
	Search(ctx context.Context, query string) ([]models.Customer, error)
	SelectAllIdsWithBalance(ctx context.Context) ([]models.CustomerBalanceInfo, error)
	SelectAllIdsWithDebt(ctx context.Context) ([]models.CustomerDebtInfo, error)
	TotalBalance(ctx context.Context) (int64, error)
	TotalDebtById(ctx context.Context, id int64) (decimal.Decimal, error)
}

type ProductStore interface {
	SelectAll(ctx context.Context) ([]models.Product, error)
	SelectById(ctx context.Context, id int64) (*models.Product, error)
	Add(ctx context.Context, input *models.NewProduct) (*models.Product, error)
	Update(ctx context.Context, id int64, input *models.NewProduct) (*models.Product, error)
	Delete(ctx context.Context, id int64) (*models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
}

type QueueStore interface {
	SelectAll(ctx context.Context) ([]models.Queue, error)
	SelectAllInRange(ctx context.Context, start time.Time, end time.Time) ([]models.Queue, error)
	SelectById(ctx context.Context, id int64) (*models.Queue, error)
	Add(ctx context.Context, input *models.NewQueue) (*models.Queue, error)
	Update(ctx context.Context, id int64, input *models.NewQueue) (*models.Queue, error)
	Delete(ctx context.Context, id int64) (*models.Queue, error)
	Search(ctx context.Context, query string) ([]models.Queue, error)
}

type SettingsStore interface {
	LanguageUsed() config.Language
	SaveLanguageUsed(lang config.Language) error
}

// Handler serves the JSON API. Location resolves date ranges such as TODAY.
type Handler struct {
	Customers     CustomerStore
	Products      ProductStore
	Queues        QueueStore
	Settings      SettingsStore
	Location      *time.Location
	UploadExports bool
	// Views, when set, serves display requests from long-lived views
	// instead of reading the repositories on every request.
	Views *display.Views
	now           func() time.Time
}

func (h *Handler) Now() time.Time {
	now := time.Now
	if h.now != nil {
		now = h.now
	}
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	customers := r.Group("/customers")
	customers.GET("", h.listCustomers)
	customers.POST("", h.addCustomer)
	customers.GET("/search", h.searchCustomers)
	customers.GET("/totals", h.customerTotals)
	customers.POST("/display", h.displayCustomers)
	customers.GET("/:id", h.getCustomer)
	customers.PUT("/:id", h.updateCustomer)
	customers.DELETE("/:id", h.deleteCustomer)
	customers.GET("/:id/debt", h.customerDebt)
	customers.POST("/:id/balance/add", h.addBalance)
	customers.POST("/:id/balance/withdraw", h.withdrawBalance)

	products := r.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.addProduct)
	products.GET("/search", h.searchProducts)
	products.POST("/display", h.displayProducts)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)

	queues := r.Group("/queues")
	queues.GET("", h.listQueues)
	queues.POST("", h.addQueue)
	queues.GET("/search", h.searchQueues)
	queues.POST("/display", h.displayQueues)
	queues.POST("/preview", h.previewQueue)
	queues.POST("/export", h.exportQueues)
	queues.GET("/:id", h.getQueue)
	queues.PUT("/:id", h.updateQueue)
	queues.DELETE("/:id", h.deleteQueue)

	r.GET("/dashboard", h.getDashboard)
	r.GET("/settings/language", h.getLanguage)
	r.PUT("/settings/language", h.putLanguage)
}

func paramId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

// respondError maps domain errors to status codes; anything unknown is logged and a 500.
func respondError(c *gin.Context, funcName string, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrInsufficientBalance), errors.Is(err, models.ErrBalanceOverflow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrBalanceLocked), utils.IsDuplicateKey(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		config.LogError(config.GetLogger(), "handlers", funcName, c.Request.URL.Path, nil, err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
