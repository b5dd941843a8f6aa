package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Medicine is the catalog entry plus its inventory ledger. Ledger
// mutators are plain assignments; derived values (selling prices,
// profits) are computed by the reconcilers before being written here.
type Medicine struct {
	ID               string   `gorm:"primaryKey;size:36" json:"id"`
	Name             string   `gorm:"size:100;not null;index" json:"name" binding:"required"`
	DoseForm         DoseForm `gorm:"size:30;not null" json:"dose_form" binding:"required"`
	Strength         string   `gorm:"size:50;not null" json:"strength" binding:"required"`
	LevelOfUse       int      `gorm:"not null" json:"level_of_use" binding:"required,gt=0"`
	TherapeuticClass string   `gorm:"size:100;not null" json:"therapeutic_class" binding:"required"`
	PackSizeLabel    string   `gorm:"size:50" json:"pack_size_label"`

	PackSizeQuantity       int             `gorm:"not null;default:0" json:"pack_size_quantity"`
	IssueUnitQuantity      int             `gorm:"not null;default:0" json:"issue_unit_quantity"`
	IssueUnitPerPackSize   int             `gorm:"not null;default:0" json:"issue_unit_per_pack_size"`
	PackSizePurchasePrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pack_size_purchase_price"`
	PackSizeSellingPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"pack_size_selling_price"`
	IssueUnitPurchasePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"issue_unit_purchase_price"`
	IssueUnitSellingPrice  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"issue_unit_selling_price"`
	ProfitPerPackSize      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_per_pack_size"`
	ProfitPerIssueUnit     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_per_issue_unit"`
	ExpiryDate             time.Time       `json:"expiry_date"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	m.ID = newResourceId(m.ID)
	return nil
}

/* ledger mutators */

func (m *Medicine) SetPackSizeQuantity(quantity int) {
	m.PackSizeQuantity = quantity
}

func (m *Medicine) SetIssueUnitQuantity(quantity int) {
	m.IssueUnitQuantity = quantity
}

func (m *Medicine) SetIssueUnitPerPackSize(factor int) {
	m.IssueUnitPerPackSize = factor
}

func (m *Medicine) SetPackSizePurchasePrice(price decimal.Decimal) {
	m.PackSizePurchasePrice = price
}

func (m *Medicine) SetIssueUnitPurchasePrice(price decimal.Decimal) {
	m.IssueUnitPurchasePrice = price
}

// AdoptPackSizeSellingPrice keeps the current price unless the
// candidate is strictly higher. Selling prices never fall.
func (m *Medicine) AdoptPackSizeSellingPrice(candidate decimal.Decimal) {
	if candidate.GreaterThan(m.PackSizeSellingPrice) {
		m.PackSizeSellingPrice = candidate
	}
}

func (m *Medicine) AdoptIssueUnitSellingPrice(candidate decimal.Decimal) {
	if candidate.GreaterThan(m.IssueUnitSellingPrice) {
		m.IssueUnitSellingPrice = candidate
	}
}

func (m *Medicine) SetProfitMargins(perPackSize, perIssueUnit decimal.Decimal) {
	m.ProfitPerPackSize = perPackSize
	m.ProfitPerIssueUnit = perIssueUnit
}

func (m *Medicine) SetExpiryDate(expiry time.Time) {
	m.ExpiryDate = expiry
}

func (m *Medicine) IsExpired(now time.Time) bool {
	return !m.ExpiryDate.IsZero() && !m.ExpiryDate.After(now)
}

/* inputs */

type NewMedicine struct {
	Name             string   `json:"name" binding:"required"`
	DoseForm         DoseForm `json:"dose_form" binding:"required"`
	Strength         string   `json:"strength" binding:"required"`
	LevelOfUse       int      `json:"level_of_use" binding:"required,gt=0"`
	TherapeuticClass string   `json:"therapeutic_class" binding:"required"`
	PackSizeLabel    string   `json:"pack_size_label"`
}

type UpdateMedicineInput struct {
	Name             *string   `json:"name"`
	DoseForm         *DoseForm `json:"dose_form"`
	Strength         *string   `json:"strength"`
	LevelOfUse       *int      `json:"level_of_use"`
	TherapeuticClass *string   `json:"therapeutic_class"`
	PackSizeLabel    *string   `json:"pack_size_label"`
}

const medicineListCacheKey = "medicines:list"

func validateStrength(strength string) error {
	for _, unit := range MedicineStrengths() {
		if strings.Contains(strength, unit) {
			return nil
		}
	}
	return utils.BadRequestError("invalid strength: " + strength)
}

func (input *NewMedicine) validate(ctx context.Context, id string) error {
	if id != "" {
		if err := utils.ValidateResourceId[Medicine](ctx, id); err != nil {
			return err
		}
	}
	if err := input.DoseForm.IsValid(); err != nil {
		return utils.BadRequestError(err.Error())
	}
	if err := validateStrength(input.Strength); err != nil {
		return err
	}
	if input.LevelOfUse <= 0 {
		return utils.BadRequestError("invalid level of use")
	}
	// the same formulation must not be cataloged twice
	condition := "name = ? AND dose_form = ? AND strength = ?"
	args := []interface{}{input.Name, input.DoseForm, input.Strength}
	if id != "" {
		condition += " AND NOT id = ?"
		args = append(args, id)
	}
	count, err := utils.ResourceCountWhere[Medicine](ctx, condition, args...)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.ConflictError("medicine already exists")
	}
	return nil
}

func CreateMedicine(ctx context.Context, input *NewMedicine) (*Medicine, error) {
	db := config.GetDB()

	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}

	medicine := Medicine{
		Name:             input.Name,
		DoseForm:         input.DoseForm,
		Strength:         input.Strength,
		LevelOfUse:       input.LevelOfUse,
		TherapeuticClass: input.TherapeuticClass,
		PackSizeLabel:    input.PackSizeLabel,
	}

	if err := db.WithContext(ctx).Create(&medicine).Error; err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &medicine, nil
}

func GetMedicine(ctx context.Context, id string) (*Medicine, error) {
	medicine, err := utils.FetchModel[Medicine](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("medicine not found")
	}
	return medicine, nil
}

// GetMedicines serves the list out of redis when a fresh copy exists.
func GetMedicines(ctx context.Context) ([]*Medicine, error) {
	var medicines []*Medicine
	if found, err := config.GetRedisObject(medicineListCacheKey, &medicines); err == nil && found {
		return medicines, nil
	}

	medicines, err := utils.FetchAllModels[Medicine](ctx)
	if err != nil {
		return nil, err
	}

	config.SetRedisObject(medicineListCacheKey, medicines, time.Minute*5)
	return medicines, nil
}

// SearchMedicines matches by name prefix, catalog fields only.
func SearchMedicines(ctx context.Context, name string) ([]*Medicine, error) {
	db := config.GetDB()

	var medicines []*Medicine
	err := db.WithContext(ctx).
		Where("name LIKE ?", name+"%").
		Order("name ASC").
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

// ExpiredMedicines lists catalog entries whose latest batch has lapsed.
func ExpiredMedicines(ctx context.Context) ([]*Medicine, error) {
	db := config.GetDB()

	var medicines []*Medicine
	err := db.WithContext(ctx).
		Where("expiry_date != ? AND expiry_date <= ?", time.Time{}, time.Now()).
		Order("expiry_date ASC").
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

// OutOfStockMedicines lists entries at or below the two-pack floor.
func OutOfStockMedicines(ctx context.Context) ([]*Medicine, error) {
	db := config.GetDB()

	var medicines []*Medicine
	err := db.WithContext(ctx).
		Where("pack_size_quantity < ?", 2).
		Order("pack_size_quantity ASC").
		Find(&medicines).Error
	if err != nil {
		return nil, err
	}
	return medicines, nil
}

func UpdateMedicine(ctx context.Context, id string, input *UpdateMedicineInput) (*Medicine, error) {
	db := config.GetDB()

	medicine, err := GetMedicine(ctx, id)
	if err != nil {
		return nil, err
	}

	next := NewMedicine{
		Name:             utils.DereferencePtr(input.Name, medicine.Name),
		DoseForm:         utils.DereferencePtr(input.DoseForm, medicine.DoseForm),
		Strength:         utils.DereferencePtr(input.Strength, medicine.Strength),
		LevelOfUse:       utils.DereferencePtr(input.LevelOfUse, medicine.LevelOfUse),
		TherapeuticClass: utils.DereferencePtr(input.TherapeuticClass, medicine.TherapeuticClass),
		PackSizeLabel:    utils.DereferencePtr(input.PackSizeLabel, medicine.PackSizeLabel),
	}
	if err := next.validate(ctx, id); err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(medicine).Updates(map[string]interface{}{
		"Name":             next.Name,
		"DoseForm":         next.DoseForm,
		"Strength":         next.Strength,
		"LevelOfUse":       next.LevelOfUse,
		"TherapeuticClass": next.TherapeuticClass,
		"PackSizeLabel":    next.PackSizeLabel,
	}).Error
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return medicine, nil
}

func DeleteMedicine(ctx context.Context, id string) (*Medicine, error) {
	db := config.GetDB()

	medicine, err := GetMedicine(ctx, id)
	if err != nil {
		return nil, err
	}

	// medicines referenced by open orders stay in the catalog
	count, err := utils.ResourceCountWhere[Order](ctx, "medicine_id = ? AND status IN ?", id,
		[]OrderStatus{OrderStatusPending, OrderStatusActive})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.ForbiddenOperation("medicine has open orders")
	}

	if err := db.WithContext(ctx).Delete(medicine).Error; err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return medicine, nil
}
