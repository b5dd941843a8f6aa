package main

import (
	"context"
	"log"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
)

// Seeds the bootstrap admin account. Run once against a fresh
// database, or any time after the last admin was lost.
func main() {
	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	if err := models.EnsureDefaultAdmin(context.Background()); err != nil {
		log.Fatal(err)
	}
	log.Println("admin account ready")
}
