package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"gorm.io/gorm"
)

type Customer struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name" binding:"required"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.ID = newResourceId(c.ID)
	return nil
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (input *NewCustomer) validate(ctx context.Context, id string) error {
	if id != "" {
		if err := utils.ValidateResourceId[Customer](ctx, id); err != nil {
			return utils.NotFoundError("customer not found")
		}
	}
	// validate unique name
	if err := utils.ValidateUnique[Customer](ctx, "name", input.Name, utils.NilIfEmpty(id)); err != nil {
		return err
	}
	// validate email
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return utils.BadRequestError("invalid email")
		}
		if err := utils.ValidateUnique[Customer](ctx, "email", input.Email, utils.NilIfEmpty(id)); err != nil {
			return err
		}
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.BadRequestError("invalid phone number")
		}
		if err := utils.ValidateUnique[Customer](ctx, "phone", input.Phone, utils.NilIfEmpty(id)); err != nil {
			return err
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	customer := Customer{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id string) (*Customer, error) {
	customer, err := utils.FetchModel[Customer](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}
	return customer, nil
}

func GetCustomers(ctx context.Context) ([]*Customer, error) {
	return utils.FetchAllModels[Customer](ctx)
}

func UpdateCustomer(ctx context.Context, id string, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(customer).Updates(map[string]interface{}{
		"Name":  input.Name,
		"Email": input.Email,
		"Phone": input.Phone,
	}).Error
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func DeleteCustomer(ctx context.Context, id string) (*Customer, error) {
	db := config.GetDB()

	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}
