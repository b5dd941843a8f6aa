package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(c *gin.Context) {
	var status *models.OrderStatus
	if s := c.Query("status"); s != "" {
		v := models.OrderStatus(s)
		status = &v
	}
	todayOnly, _ := strconv.ParseBool(c.Query("today"))

	orders, err := models.GetOrders(c.Request.Context(), status, todayOnly)
	if err != nil {
		respondError(c, "orderHandlers.go", "listOrdersHandler", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getOrderHandler(c *gin.Context) {
	order, err := models.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "orderHandlers.go", "getOrderHandler", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func createOrderHandler(c *gin.Context) {
	var input models.NewOrder
	if !bindJSON(c, &input) {
		return
	}

	order, err := models.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "orderHandlers.go", "createOrderHandler", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func updateOrderHandler(c *gin.Context) {
	var input models.UpdateOrderInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := models.UpdateOrder(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "orderHandlers.go", "updateOrderHandler", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func cancelOrderHandler(c *gin.Context) {
	order, err := models.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "orderHandlers.go", "cancelOrderHandler", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func deleteOrderHandler(c *gin.Context) {
	order, err := models.DeleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "orderHandlers.go", "deleteOrderHandler", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
