package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"bitbucket.org/mmdatafocus/pharmacy_backend/workflow"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Purchase records one supplier delivery against an order. The factor
// and expiry are kept as supplied on this delivery even though the
// ledger only carries the latest values.
type Purchase struct {
	ID                        string          `gorm:"primaryKey;size:36" json:"id"`
	PurchasedPackSizeQuantity int             `gorm:"not null" json:"purchased_pack_size_quantity"`
	PricePerPackSize          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price_per_pack_size"`
	IssueUnitPerPackSize      int             `gorm:"not null" json:"issue_unit_per_pack_size"`
	ExpiryDate                time.Time       `gorm:"not null" json:"expiry_date"`

	TotalPurchasePrice                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_purchase_price"`
	TotalIssueUnitQuantity             int             `gorm:"not null;default:0" json:"total_issue_unit_quantity"`
	ProfitPerPackSize                  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_per_pack_size"`
	ProfitPerIssueUnit                 decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_per_issue_unit"`
	ProfitMarginPercentagePerPackSize  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_margin_percentage_per_pack_size"`
	ProfitMarginPercentagePerIssueUnit decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"profit_margin_percentage_per_issue_unit"`

	OrderId string `gorm:"size:36;not null;index" json:"order_id"`
	Order   *Order `json:"order,omitempty"`

	PurchaseDate time.Time      `gorm:"autoCreateTime" json:"purchase_date"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	p.ID = newResourceId(p.ID)
	return nil
}

type NewPurchase struct {
	PurchasedPackSizeQuantity int             `json:"purchased_pack_size_quantity" binding:"required,gt=0"`
	PricePerPackSize          decimal.Decimal `json:"price_per_pack_size" binding:"required"`
	IssueUnitPerPackSize      int             `json:"issue_unit_per_pack_size" binding:"required,gt=0"`
	ExpiryDate                time.Time       `json:"expiry_date" binding:"required"`
}

type UpdatePurchaseInput struct {
	PurchasedPackSizeQuantity *int             `json:"purchased_pack_size_quantity"`
	PricePerPackSize          *decimal.Decimal `json:"price_per_pack_size"`
	IssueUnitPerPackSize      *int             `json:"issue_unit_per_pack_size"`
	ExpiryDate                *time.Time       `json:"expiry_date"`
}

// Selling price candidate is landed cost plus forty percent. The
// ledger only adopts it when it beats the standing price.
var sellingMarkup = decimal.RequireFromString("1.4")

// PurchaseEconomics carries the derived money fields of one delivery.
type PurchaseEconomics struct {
	TotalPurchasePrice                 decimal.Decimal
	TotalIssueUnitQuantity             int
	ProfitPerPackSize                  decimal.Decimal
	ProfitPerIssueUnit                 decimal.Decimal
	ProfitMarginPercentagePerPackSize  decimal.Decimal
	ProfitMarginPercentagePerIssueUnit decimal.Decimal
}

// ApplyPurchaseToLedger folds one delivery into the medicine ledger.
// The sequence is load-bearing: the conversion factor supplied on THIS
// delivery overwrites the ledger factor before issue units are added,
// so the addition uses the new factor.
func ApplyPurchaseToLedger(medicine *Medicine, quantity int, pricePerPackSize decimal.Decimal, issueUnitPerPackSize int, expiry time.Time) PurchaseEconomics {
	medicine.SetPackSizeQuantity(medicine.PackSizeQuantity + quantity)
	medicine.SetIssueUnitPerPackSize(issueUnitPerPackSize)
	medicine.SetIssueUnitQuantity(medicine.IssueUnitQuantity + quantity*issueUnitPerPackSize)

	factor := decimal.NewFromInt(int64(issueUnitPerPackSize))
	issueUnitPurchasePrice := pricePerPackSize.Div(factor)
	medicine.SetPackSizePurchasePrice(pricePerPackSize)
	medicine.SetIssueUnitPurchasePrice(issueUnitPurchasePrice)

	medicine.AdoptPackSizeSellingPrice(pricePerPackSize.Mul(sellingMarkup))
	medicine.AdoptIssueUnitSellingPrice(medicine.PackSizeSellingPrice.Div(factor))

	profitPerPackSize := medicine.PackSizeSellingPrice.Sub(pricePerPackSize)
	profitPerIssueUnit := medicine.IssueUnitSellingPrice.Sub(issueUnitPurchasePrice)
	medicine.SetProfitMargins(profitPerPackSize, profitPerIssueUnit)
	medicine.SetExpiryDate(expiry)

	hundred := decimal.NewFromInt(100)
	var marginPerPackSize, marginPerIssueUnit decimal.Decimal
	if pricePerPackSize.IsPositive() {
		marginPerPackSize = profitPerPackSize.Div(pricePerPackSize).Mul(hundred)
	}
	if issueUnitPurchasePrice.IsPositive() {
		marginPerIssueUnit = profitPerIssueUnit.Div(issueUnitPurchasePrice).Mul(hundred)
	}

	return PurchaseEconomics{
		TotalPurchasePrice:                 pricePerPackSize.Mul(decimal.NewFromInt(int64(quantity))),
		TotalIssueUnitQuantity:             issueUnitPerPackSize * quantity,
		ProfitPerPackSize:                  profitPerPackSize,
		ProfitPerIssueUnit:                 profitPerIssueUnit,
		ProfitMarginPercentagePerPackSize:  marginPerPackSize,
		ProfitMarginPercentagePerIssueUnit: marginPerIssueUnit,
	}
}

// RollbackPurchaseFromLedger undoes the quantity effects of a
// recorded delivery. Issue units come off at the medicine's CURRENT
// conversion factor; the factor stored on the purchase row is
// deliberately not consulted, matching the system this replaces.
func RollbackPurchaseFromLedger(medicine *Medicine, quantity int) {
	medicine.SetPackSizeQuantity(medicine.PackSizeQuantity - quantity)
	medicine.SetIssueUnitQuantity(medicine.IssueUnitQuantity - quantity*medicine.IssueUnitPerPackSize)
}

func (input *NewPurchase) validate() error {
	if input.PurchasedPackSizeQuantity <= 0 {
		return utils.BadRequestError("purchased quantity must be greater than zero")
	}
	if !input.PricePerPackSize.IsPositive() {
		return utils.BadRequestError("price per pack size must be greater than zero")
	}
	if input.IssueUnitPerPackSize <= 0 {
		return utils.BadRequestError("issue unit per pack size must be greater than zero")
	}
	if input.ExpiryDate.Before(utils.TruncateToDate(time.Now())) {
		return utils.BadRequestError("expiry date cannot be in the past")
	}
	return nil
}

// CreatePurchase records a delivery against an order and reconciles
// the order and the medicine ledger in one transaction, serialized by
// advisory locks on the medicine and the order.
func CreatePurchase(ctx context.Context, orderId string, input *NewPurchase) (*Purchase, error) {
	db := config.GetDB()

	if err := input.validate(); err != nil {
		return nil, err
	}

	// locate the medicine before locking
	scout, err := utils.FetchModel[Order](ctx, orderId)
	if err != nil {
		return nil, utils.NotFoundError("order not found")
	}

	var purchase Purchase
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release, err := workflow.AcquireReconcileLock(ctx, tx, scout.MedicineId, orderId)
		if err != nil {
			return err
		}
		// deferred inside the closure so release runs on the live
		// transaction, before gorm commits or rolls back
		defer release()

		// re-read under the lock
		var order Order
		if err := tx.Where("id = ?", orderId).First(&order).Error; err != nil {
			return utils.NotFoundError("order not found")
		}
		if order.Status.IsClosed() {
			return utils.ForbiddenOperation("order is already " + string(order.Status))
		}

		var medicine Medicine
		if err := tx.Where("id = ?", order.MedicineId).First(&medicine).Error; err != nil {
			return utils.NotFoundError("medicine not found")
		}
		if medicine.IsExpired(time.Now()) {
			return utils.PreconditionFailedError(medicine.Name + " has already expired")
		}

		if err := order.ApplyFulfillment(input.PurchasedPackSizeQuantity); err != nil {
			return err
		}
		economics := ApplyPurchaseToLedger(&medicine, input.PurchasedPackSizeQuantity,
			input.PricePerPackSize, input.IssueUnitPerPackSize, input.ExpiryDate)

		purchase = Purchase{
			PurchasedPackSizeQuantity:          input.PurchasedPackSizeQuantity,
			PricePerPackSize:                   input.PricePerPackSize,
			IssueUnitPerPackSize:               input.IssueUnitPerPackSize,
			ExpiryDate:                         input.ExpiryDate,
			TotalPurchasePrice:                 economics.TotalPurchasePrice,
			TotalIssueUnitQuantity:             economics.TotalIssueUnitQuantity,
			ProfitPerPackSize:                  economics.ProfitPerPackSize,
			ProfitPerIssueUnit:                 economics.ProfitPerIssueUnit,
			ProfitMarginPercentagePerPackSize:  economics.ProfitMarginPercentagePerPackSize,
			ProfitMarginPercentagePerIssueUnit: economics.ProfitMarginPercentagePerIssueUnit,
			OrderId:                            order.ID,
		}

		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &purchase, nil
}

// UpdatePurchase rolls the recorded delivery back out of the order and
// the ledger, then reapplies it with the corrected values. Both halves
// run inside one transaction so no reader observes the rolled-back
// intermediate state.
func UpdatePurchase(ctx context.Context, id string, input *UpdatePurchaseInput) (*Purchase, error) {
	db := config.GetDB()

	scout, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("purchase not found")
	}
	scoutOrder, err := utils.FetchModel[Order](ctx, scout.OrderId)
	if err != nil {
		return nil, utils.NotFoundError("order not found")
	}

	var purchase Purchase
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release, err := workflow.AcquireReconcileLock(ctx, tx, scoutOrder.MedicineId, scoutOrder.ID)
		if err != nil {
			return err
		}
		defer release()

		if err := tx.Where("id = ?", id).First(&purchase).Error; err != nil {
			return utils.NotFoundError("purchase not found")
		}
		var order Order
		if err := tx.Where("id = ?", purchase.OrderId).First(&order).Error; err != nil {
			return utils.NotFoundError("order not found")
		}
		// closed orders are history; a delivered or cancelled order
		// takes no more edits
		if order.Status.IsClosed() {
			return utils.ForbiddenOperation("order is already " + string(order.Status))
		}
		var medicine Medicine
		if err := tx.Where("id = ?", order.MedicineId).First(&medicine).Error; err != nil {
			return utils.NotFoundError("medicine not found")
		}

		// validate-then-act: fallbacks come from the row read under the
		// lock, and bad values are rejected before touching anything
		quantity := utils.DereferencePtr(input.PurchasedPackSizeQuantity, purchase.PurchasedPackSizeQuantity)
		price := utils.DereferencePtr(input.PricePerPackSize, purchase.PricePerPackSize)
		factor := utils.DereferencePtr(input.IssueUnitPerPackSize, purchase.IssueUnitPerPackSize)
		expiry := utils.DereferencePtr(input.ExpiryDate, purchase.ExpiryDate)
		next := NewPurchase{
			PurchasedPackSizeQuantity: quantity,
			PricePerPackSize:          price,
			IssueUnitPerPackSize:      factor,
			ExpiryDate:                expiry,
		}
		if err := next.validate(); err != nil {
			return err
		}

		// rollback the old delivery, then reapply the corrected one
		order.RollbackFulfillment(purchase.PurchasedPackSizeQuantity)
		RollbackPurchaseFromLedger(&medicine, purchase.PurchasedPackSizeQuantity)

		if err := order.ApplyFulfillment(quantity); err != nil {
			return err
		}
		economics := ApplyPurchaseToLedger(&medicine, quantity, price, factor, expiry)

		purchase.PurchasedPackSizeQuantity = quantity
		purchase.PricePerPackSize = price
		purchase.IssueUnitPerPackSize = factor
		purchase.ExpiryDate = expiry
		purchase.TotalPurchasePrice = economics.TotalPurchasePrice
		purchase.TotalIssueUnitQuantity = economics.TotalIssueUnitQuantity
		purchase.ProfitPerPackSize = economics.ProfitPerPackSize
		purchase.ProfitPerIssueUnit = economics.ProfitPerIssueUnit
		purchase.ProfitMarginPercentagePerPackSize = economics.ProfitMarginPercentagePerPackSize
		purchase.ProfitMarginPercentagePerIssueUnit = economics.ProfitMarginPercentagePerIssueUnit

		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}
		return tx.Save(&purchase).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &purchase, nil
}

// DeletePurchase tombstones a delivery record. The order and ledger
// effects are reversed only when the reversal policy is switched on;
// by default the history row goes but the stock stays, matching the
// system this replaces.
func DeletePurchase(ctx context.Context, id string) (*Purchase, error) {
	db := config.GetDB()

	scout, err := utils.FetchModel[Purchase](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("purchase not found")
	}

	if !config.ReverseLedgerOnPurchaseDelete() {
		if err := db.WithContext(ctx).Delete(scout).Error; err != nil {
			return nil, err
		}
		return scout, nil
	}

	scoutOrder, err := utils.FetchModel[Order](ctx, scout.OrderId)
	if err != nil {
		return nil, utils.NotFoundError("order not found")
	}

	var purchase Purchase
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release, err := workflow.AcquireReconcileLock(ctx, tx, scoutOrder.MedicineId, scoutOrder.ID)
		if err != nil {
			return err
		}
		defer release()

		if err := tx.Where("id = ?", id).First(&purchase).Error; err != nil {
			return utils.NotFoundError("purchase not found")
		}
		var order Order
		if err := tx.Where("id = ?", purchase.OrderId).First(&order).Error; err != nil {
			return utils.NotFoundError("order not found")
		}
		var medicine Medicine
		if err := tx.Where("id = ?", order.MedicineId).First(&medicine).Error; err != nil {
			return utils.NotFoundError("medicine not found")
		}

		order.RollbackFulfillment(purchase.PurchasedPackSizeQuantity)
		RollbackPurchaseFromLedger(&medicine, purchase.PurchasedPackSizeQuantity)
		// the reversal policy is the one path allowed to reopen a
		// delivered order: its quantity is owed again
		if order.Status == OrderStatusDelivered {
			order.Status = OrderStatusActive
		}

		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}
		return tx.Delete(&purchase).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &purchase, nil
}

func GetPurchase(ctx context.Context, id string) (*Purchase, error) {
	purchase, err := utils.FetchModel[Purchase](ctx, id, "Order", "Order.Medicine", "Order.Supplier")
	if err != nil {
		return nil, utils.NotFoundError("purchase not found")
	}
	return purchase, nil
}

// PurchaseView is the flattened listing row: delivery figures plus
// the medicine, supplier and order it belongs to. Raw decimals only;
// formatting belongs to the presentation layer.
type PurchaseView struct {
	ID                        string          `json:"id"`
	PurchasedPackSizeQuantity int             `json:"purchased_pack_size_quantity"`
	PricePerPackSize          decimal.Decimal `json:"price_per_pack_size"`
	TotalPurchasePrice        decimal.Decimal `json:"total_purchase_price"`
	IssueUnitPerPackSize      int             `json:"issue_unit_per_pack_size"`
	TotalIssueUnitQuantity    int             `json:"total_issue_unit_quantity"`
	ExpiryDate                time.Time       `json:"expiry_date"`
	PurchaseDate              time.Time       `json:"purchase_date"`
	OrderId                   string          `json:"order_id"`
	OrderStatus               OrderStatus     `json:"order_status"`
	OrderDate                 time.Time       `json:"order_date"`
	MedicineName              string          `json:"medicine_name"`
	SupplierName              string          `json:"supplier_name"`
}

// GetPurchaseViews returns the flattened rows, newest first.
func GetPurchaseViews(ctx context.Context, todayOnly bool) ([]*PurchaseView, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Model(&Purchase{}).
		Select(`purchases.id, purchases.purchased_pack_size_quantity, purchases.price_per_pack_size,
			purchases.total_purchase_price, purchases.issue_unit_per_pack_size,
			purchases.total_issue_unit_quantity, purchases.expiry_date, purchases.purchase_date,
			orders.id AS order_id, orders.status AS order_status, orders.order_date,
			medicines.name AS medicine_name, suppliers.name AS supplier_name`).
		Joins("JOIN orders ON orders.id = purchases.order_id").
		Joins("JOIN medicines ON medicines.id = orders.medicine_id").
		Joins("JOIN suppliers ON suppliers.id = orders.supplier_id")
	if todayOnly {
		start, end := utils.GetTodayRange()
		dbCtx = dbCtx.Where("purchases.purchase_date BETWEEN ? AND ?", start, end)
	}

	var views []*PurchaseView
	if err := dbCtx.Order("purchases.purchase_date DESC").Scan(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// GetPurchases lists deliveries, newest first, optionally just today's.
func GetPurchases(ctx context.Context, todayOnly bool) ([]*Purchase, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).
		Preload("Order").Preload("Order.Medicine").Preload("Order.Supplier")
	if todayOnly {
		start, end := utils.GetTodayRange()
		dbCtx = dbCtx.Where("purchase_date BETWEEN ? AND ?", start, end)
	}

	var purchases []*Purchase
	if err := dbCtx.Order("purchase_date DESC").Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
