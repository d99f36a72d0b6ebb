package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/models"
)

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.Products.SelectAll(c.Request.Context())
	if err != nil {
		respondError(c, "listProducts", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	product, err := h.Products.SelectById(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) addProduct(c *gin.Context) {
	var input models.NewProduct
	if !bindJSON(c, &input) {
		return
	}
	product, err := h.Products.Add(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "addProduct", err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewProduct
	if !bindJSON(c, &input) {
		return
	}
	product, err := h.Products.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	product, err := h.Products.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteProduct", err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) searchProducts(c *gin.Context) {
	products, err := h.Products.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "searchProducts", err)
		return
	}
	c.JSON(http.StatusOK, products)
}
