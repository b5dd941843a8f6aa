package models

import (
	"log"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"github.com/google/uuid"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Medicine{},
		&Order{}, &Purchase{},
		&Sale{},
		&Customer{}, &Supplier{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

// newResourceId mints a v4 uuid for rows created without one.
func newResourceId(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
