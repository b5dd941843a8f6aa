package main

import (
	"bitbucket.org/mmdatafocus/pharmacy_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func salesByCustomerPDFHandler(c *gin.Context) {
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=sales-by-customer.pdf")
	if err := reports.WriteSalesByCustomerPDF(c.Request.Context(), c.Writer); err != nil {
		respondError(c, "reportHandlers.go", "salesByCustomerPDFHandler", err)
	}
}

func monthlySalesPDFHandler(c *gin.Context) {
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", "attachment; filename=monthly-sales.pdf")
	if err := reports.WriteMonthlySalesPDF(c.Request.Context(), c.Writer); err != nil {
		respondError(c, "reportHandlers.go", "monthlySalesPDFHandler", err)
	}
}

func inventoryExcelHandler(c *gin.Context) {
	reports.ExportInventoryExcel(c.Request.Context(), c.Writer)
}
