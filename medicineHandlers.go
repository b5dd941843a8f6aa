package main

import (
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/gin-gonic/gin"
)

func listMedicinesHandler(c *gin.Context) {
	medicines, err := models.GetMedicines(c.Request.Context())
	if err != nil {
		respondError(c, "medicineHandlers.go", "listMedicinesHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicines)
}

func searchMedicinesHandler(c *gin.Context) {
	medicines, err := models.SearchMedicines(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, "medicineHandlers.go", "searchMedicinesHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicines)
}

func doseFormsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dose_forms": models.DoseForms(),
		"strengths":  models.MedicineStrengths(),
	})
}

func strengthsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.MedicineStrengths())
}

func expiredMedicinesHandler(c *gin.Context) {
	medicines, err := models.ExpiredMedicines(c.Request.Context())
	if err != nil {
		respondError(c, "medicineHandlers.go", "expiredMedicinesHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicines)
}

func outOfStockMedicinesHandler(c *gin.Context) {
	medicines, err := models.OutOfStockMedicines(c.Request.Context())
	if err != nil {
		respondError(c, "medicineHandlers.go", "outOfStockMedicinesHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicines)
}

func getMedicineHandler(c *gin.Context) {
	medicine, err := models.GetMedicine(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "medicineHandlers.go", "getMedicineHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

func createMedicineHandler(c *gin.Context) {
	var input models.NewMedicine
	if !bindJSON(c, &input) {
		return
	}

	medicine, err := models.CreateMedicine(c.Request.Context(), &input)
	if err != nil {
		respondError(c, "medicineHandlers.go", "createMedicineHandler", err)
		return
	}
	c.JSON(http.StatusCreated, medicine)
}

func updateMedicineHandler(c *gin.Context) {
	var input models.UpdateMedicineInput
	if !bindJSON(c, &input) {
		return
	}

	medicine, err := models.UpdateMedicine(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		respondError(c, "medicineHandlers.go", "updateMedicineHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}

func deleteMedicineHandler(c *gin.Context) {
	medicine, err := models.DeleteMedicine(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "medicineHandlers.go", "deleteMedicineHandler", err)
		return
	}
	c.JSON(http.StatusOK, medicine)
}
