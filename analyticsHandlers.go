package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func todaySummaryHandler(c *gin.Context) {
	summary, err := models.GetTodayActivitySummary(c.Request.Context())
	if err != nil {
		respondError(c, "analyticsHandlers.go", "todaySummaryHandler", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func monthlyOrdersReportHandler(c *gin.Context) {
	var status *models.OrderStatus
	if s := c.Query("status"); s != "" {
		v := models.OrderStatus(s)
		status = &v
	}

	rows, err := models.CurrentMonthOrdersReport(c.Request.Context(), status)
	if err != nil {
		respondError(c, "analyticsHandlers.go", "monthlyOrdersReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func monthlySalesReportHandler(c *gin.Context) {
	rows, err := models.CurrentMonthSalesReport(c.Request.Context())
	if err != nil {
		respondError(c, "analyticsHandlers.go", "monthlySalesReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func monthlyPurchasesReportHandler(c *gin.Context) {
	rows, err := models.CurrentMonthPurchasesReport(c.Request.Context())
	if err != nil {
		respondError(c, "analyticsHandlers.go", "monthlyPurchasesReportHandler", err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
