package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func listUsersHandler(c *gin.Context) {
	users, err := models.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, "userHandlers.go", "listUsersHandler", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func getUserHandler(c *gin.Context) {
	user, err := models.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "userHandlers.go", "getUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func createUserHandler(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, &input) {
		return
	}

	user, err := models.CreateUser(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "userHandlers.go", "createUserHandler", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func updateUserHandler(c *gin.Context) {
	var input models.UpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := models.UpdateUser(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "userHandlers.go", "updateUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func deleteUserHandler(c *gin.Context) {
	user, err := models.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "userHandlers.go", "deleteUserHandler", err)
		return
	}
	c.JSON(http.StatusOK, user)
}
