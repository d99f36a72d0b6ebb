package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/models"
	"gorm.io/gorm"
)

// LoaderMiddleware gives every request its own batch loaders, so cached
// rows never outlive the request that read them.
func LoaderMiddleware(db func() *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		loaders := models.NewLoaders(db())
		c.Request = c.Request.WithContext(models.WithLoaders(c.Request.Context(), loaders))
		c.Next()
	}
}
