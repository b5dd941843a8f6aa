package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"gorm.io/gorm"
)

type Supplier struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"size:100;not null" json:"name" binding:"required"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	s.ID = newResourceId(s.ID)
	return nil
}

type NewSupplier struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (input *NewSupplier) validate(ctx context.Context, id string) error {
	if id != "" {
		if err := utils.ValidateResourceId[Supplier](ctx, id); err != nil {
			return utils.NotFoundError("supplier not found")
		}
	}
	if err := utils.ValidateUnique[Supplier](ctx, "name", input.Name, utils.NilIfEmpty(id)); err != nil {
		return err
	}
	if input.Email != "" {
		if !utils.IsValidEmail(input.Email) {
			return utils.BadRequestError("invalid email")
		}
		if err := utils.ValidateUnique[Supplier](ctx, "email", input.Email, utils.NilIfEmpty(id)); err != nil {
			return err
		}
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.BadRequestError("invalid phone number")
		}
		if err := utils.ValidateUnique[Supplier](ctx, "phone", input.Phone, utils.NilIfEmpty(id)); err != nil {
			return err
		}
	}
	return nil
}

func CreateSupplier(ctx context.Context, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()

	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	supplier := Supplier{
		Name:  input.Name,
		Email: input.Email,
		Phone: input.Phone,
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	supplier, err := utils.FetchModel[Supplier](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("supplier not found")
	}
	return supplier, nil
}

func GetSuppliers(ctx context.Context) ([]*Supplier, error) {
	return utils.FetchAllModels[Supplier](ctx)
}

func UpdateSupplier(ctx context.Context, id string, input *NewSupplier) (*Supplier, error) {
	db := config.GetDB()

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	supplier, err := GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(supplier).Updates(map[string]interface{}{
		"Name":  input.Name,
		"Email": input.Email,
		"Phone": input.Phone,
	}).Error
	if err != nil {
		return nil, err
	}
	return supplier, nil
}

// DeleteSupplier tombstones a supplier once no open orders point at it.
func DeleteSupplier(ctx context.Context, id string) (*Supplier, error) {
	db := config.GetDB()

	supplier, err := GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[Order](ctx, "supplier_id = ? AND status IN ?", id,
		[]OrderStatus{OrderStatusPending, OrderStatusActive})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.ForbiddenOperation("supplier has open orders")
	}

	if err := db.WithContext(ctx).Delete(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}
