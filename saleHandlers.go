package main

import (
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func listSalesHandler(c *gin.Context) {
	var status *models.SaleStatus
	if s := c.Query("status"); s != "" {
		v := models.SaleStatus(s)
		status = &v
	}
	var day *time.Time
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = &parsed
	}

	sales, err := models.GetSales(c.Request.Context(), status, day)
	if err != nil {
		respondError(c, "saleHandlers.go", "listSalesHandler", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func saleStatusesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.SaleStatuses())
}

func todaySalesHandler(c *gin.Context) {
	total, err := models.TodaySalesTotal(c.Request.Context())
	if err != nil {
		respondError(c, "saleHandlers.go", "todaySalesHandler", err)
		return
	}
	c.JSON(http.StatusOK, total)
}

func todaySalesByStatusHandler(c *gin.Context) {
	rows, err := models.TodaySalesByStatus(c.Request.Context())
	if err != nil {
		respondError(c, "saleHandlers.go", "todaySalesByStatusHandler", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func salesByCustomerHandler(c *gin.Context) {
	sales, err := models.GetSalesByCustomer(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondError(c, "saleHandlers.go", "salesByCustomerHandler", err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

func getSaleHandler(c *gin.Context) {
	sale, err := models.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "saleHandlers.go", "getSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func createSalesHandler(c *gin.Context) {
	var inputs []*models.NewSale
	if !bindJSON(c, &inputs) {
		return
	}

	sales, err := models.CreateSales(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, "saleHandlers.go", "createSalesHandler", err)
		return
	}
	c.JSON(http.StatusCreated, sales)
}

func updateSaleHandler(c *gin.Context) {
	var input models.UpdateSaleInput
	if !bindJSON(c, &input) {
		return
	}

	sale, err := models.UpdateSale(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "saleHandlers.go", "updateSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func removeSaleHandler(c *gin.Context) {
	sale, err := models.RemoveSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "saleHandlers.go", "removeSaleHandler", err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
