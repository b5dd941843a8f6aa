package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func listPurchasesHandler(c *gin.Context) {
	todayOnly, _ := strconv.ParseBool(c.Query("today"))

	purchases, err := models.GetPurchases(c.Request.Context(), todayOnly)
	if err != nil {
		respondError(c, "purchaseHandlers.go", "listPurchasesHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func purchaseViewsHandler(c *gin.Context) {
	todayOnly, _ := strconv.ParseBool(c.Query("today"))

	views, err := models.GetPurchaseViews(c.Request.Context(), todayOnly)
	if err != nil {
		respondError(c, "purchaseHandlers.go", "purchaseViewsHandler", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func getPurchaseHandler(c *gin.Context) {
	purchase, err := models.GetPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "purchaseHandlers.go", "getPurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func createPurchaseHandler(c *gin.Context) {
	var input models.NewPurchase
	if !bindJSON(c, &input) {
		return
	}

	purchase, err := models.CreatePurchase(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "purchaseHandlers.go", "createPurchaseHandler", err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func updatePurchaseHandler(c *gin.Context) {
	var input models.UpdatePurchaseInput
	if !bindJSON(c, &input) {
		return
	}

	purchase, err := models.UpdatePurchase(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "purchaseHandlers.go", "updatePurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

func deletePurchaseHandler(c *gin.Context) {
	purchase, err := models.DeletePurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "purchaseHandlers.go", "deletePurchaseHandler", err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}
