package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func loginHandler(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := models.Login(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "authHandlers.go", "loginHandler", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
