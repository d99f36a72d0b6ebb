package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/ledger_backend/models"
)

type balanceRequest struct {
	Amount int64 `json:"amount"`
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.Customers.SelectAll(c.Request.Context())
	if err != nil {
		respondError(c, "listCustomers", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	customer, err := h.Customers.SelectById(c.Request.Context(), id)
	if err != nil {
		respondError(c, "getCustomer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) addCustomer(c *gin.Context) {
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := h.Customers.Add(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "addCustomer", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}
	customer, err := h.Customers.Update(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, "updateCustomer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	customer, err := h.Customers.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, "deleteCustomer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) addBalance(c *gin.Context) {
	h.changeBalance(c, "addBalance", h.Customers.AddBalance)
}

func (h *Handler) withdrawBalance(c *gin.Context) {
	h.changeBalance(c, "withdrawBalance", h.Customers.WithdrawBalance)
}

func (h *Handler) changeBalance(c *gin.Context, funcName string, change func(ctx context.Context, id int64, amount int64) (*models.Customer, error)) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	var req balanceRequest
	if !bindJSON(c, &req) {
		return
	}
	customer, err := change(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, funcName, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) searchCustomers(c *gin.Context) {
	customers, err := h.Customers.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, "searchCustomers", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) customerDebt(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	debt, err := h.Customers.TotalDebtById(c.Request.Context(), id)
	if err != nil {
		respondError(c, "customerDebt", err)
		return
	}
	c.JSON(http.StatusOK, models.CustomerDebtInfo{ID: id, Debt: debt})
}

func (h *Handler) customerTotals(c *gin.Context) {
	ctx := c.Request.Context()
	balance, err := h.Customers.TotalBalance(ctx)
	if err != nil {
		respondError(c, "customerTotals", err)
		return
	}
	balances, err := h.Customers.SelectAllIdsWithBalance(ctx)
	if err != nil {
		respondError(c, "customerTotals", err)
		return
	}
	debts, err := h.Customers.SelectAllIdsWithDebt(ctx)
	if err != nil {
		respondError(c, "customerTotals", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_balance":    balance,
		"with_balance_ids": balances,
		"with_debt_ids":    debts,
	})
}
