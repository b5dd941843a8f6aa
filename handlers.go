package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/middlewares"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func registerRoutes(r *gin.Engine) {
	r.POST("/auth/login", loginHandler)

	api := r.Group("/", middlewares.RequireAuth())

	medicines := api.Group("/medicines")
	medicines.GET("", listMedicinesHandler)
	medicines.GET("/search", searchMedicinesHandler)
	medicines.GET("/dose-forms", doseFormsHandler)
	medicines.GET("/strengths", strengthsHandler)
	medicines.GET("/expired", expiredMedicinesHandler)
	medicines.GET("/out-of-stock", outOfStockMedicinesHandler)
	medicines.GET("/:id", getMedicineHandler)
	medicines.POST("", createMedicineHandler)
	medicines.PATCH("/:id", updateMedicineHandler)
	medicines.DELETE("/:id", middlewares.RequireRole(models.UserRoleChiefPharmacist), deleteMedicineHandler)

	orders := api.Group("/orders")
	orders.GET("", listOrdersHandler)
	orders.GET("/:id", getOrderHandler)
	orders.POST("", createOrderHandler)
	orders.PATCH("/:id", updateOrderHandler)
	orders.POST("/:id/cancel", cancelOrderHandler)
	orders.POST("/:id/purchases", createPurchaseHandler)
	orders.DELETE("/:id", middlewares.RequireRole(models.UserRoleChiefPharmacist), deleteOrderHandler)

	purchases := api.Group("/purchases")
	purchases.GET("", listPurchasesHandler)
	purchases.GET("/views", purchaseViewsHandler)
	purchases.GET("/:id", getPurchaseHandler)
	purchases.PATCH("/:id", updatePurchaseHandler)
	purchases.DELETE("/:id", middlewares.RequireRole(models.UserRoleChiefPharmacist), deletePurchaseHandler)

	sales := api.Group("/sales")
	sales.GET("", listSalesHandler)
	sales.GET("/statuses", saleStatusesHandler)
	sales.GET("/today", todaySalesHandler)
	sales.GET("/today/by-status", todaySalesByStatusHandler)
	sales.GET("/monthly-report", monthlySalesReportHandler)
	sales.GET("/customers/:customerId", salesByCustomerHandler)
	sales.GET("/:id", getSaleHandler)
	sales.POST("", createSalesHandler)
	sales.PATCH("/:id", updateSaleHandler)
	sales.DELETE("/:id", removeSaleHandler)

	customers := api.Group("/customers")
	customers.GET("", listCustomersHandler)
	customers.GET("/:id", getCustomerHandler)
	customers.POST("", createCustomerHandler)
	customers.PATCH("/:id", updateCustomerHandler)
	customers.DELETE("/:id", deleteCustomerHandler)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", listSuppliersHandler)
	suppliers.GET("/:id", getSupplierHandler)
	suppliers.POST("", createSupplierHandler)
	suppliers.PATCH("/:id", updateSupplierHandler)
	suppliers.DELETE("/:id", deleteSupplierHandler)

	users := api.Group("/users", middlewares.RequireRole(models.UserRoleAdmin))
	users.GET("", listUsersHandler)
	users.GET("/:id", getUserHandler)
	users.POST("", createUserHandler)
	users.PATCH("/:id", updateUserHandler)
	users.DELETE("/:id", deleteUserHandler)

	analytics := api.Group("/analytics")
	analytics.GET("/today", todaySummaryHandler)
	analytics.GET("/orders", monthlyOrdersReportHandler)
	analytics.GET("/sales", monthlySalesReportHandler)
	analytics.GET("/purchases", monthlyPurchasesReportHandler)

	reportRoutes := api.Group("/reports")
	reportRoutes.GET("/sales-by-customer.pdf", salesByCustomerPDFHandler)
	reportRoutes.GET("/monthly-sales.pdf", monthlySalesPDFHandler)
	reportRoutes.GET("/inventory.xlsx", inventoryExcelHandler)
}

// respondError maps domain failures to HTTP statuses and logs the
// internal ones.
func respondError(c *gin.Context, module string, funcName string, err error) {
	status := utils.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		config.LogError(config.GetLogger(), module, funcName, c.Request.URL.Path, nil, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body, turning validator failures into a field
// map the client can act on.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
