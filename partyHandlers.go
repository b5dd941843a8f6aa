package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

/* customers */

func listCustomersHandler(c *gin.Context) {
	customers, err := models.GetCustomers(c.Request.Context())
	if err != nil {
		respondError(c, "partyHandlers.go", "listCustomersHandler", err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func getCustomerHandler(c *gin.Context) {
	customer, err := models.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "partyHandlers.go", "getCustomerHandler", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func createCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}

	customer, err := models.CreateCustomer(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "partyHandlers.go", "createCustomerHandler", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func updateCustomerHandler(c *gin.Context) {
	var input models.NewCustomer
	if !bindJSON(c, &input) {
		return
	}

	customer, err := models.UpdateCustomer(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "partyHandlers.go", "updateCustomerHandler", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func deleteCustomerHandler(c *gin.Context) {
	customer, err := models.DeleteCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "partyHandlers.go", "deleteCustomerHandler", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

/* suppliers */

func listSuppliersHandler(c *gin.Context) {
	suppliers, err := models.GetSuppliers(c.Request.Context())
	if err != nil {
		respondError(c, "partyHandlers.go", "listSuppliersHandler", err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func getSupplierHandler(c *gin.Context) {
	supplier, err := models.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "partyHandlers.go", "getSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func createSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if !bindJSON(c, &input) {
		return
	}

	supplier, err := models.CreateSupplier(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "partyHandlers.go", "createSupplierHandler", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func updateSupplierHandler(c *gin.Context) {
	var input models.NewSupplier
	if !bindJSON(c, &input) {
		return
	}

	supplier, err := models.UpdateSupplier(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "partyHandlers.go", "updateSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func deleteSupplierHandler(c *gin.Context) {
	supplier, err := models.DeleteSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "partyHandlers.go", "deleteSupplierHandler", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}
