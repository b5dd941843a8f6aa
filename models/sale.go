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

// Sale is one dispensing line. The unit price is a snapshot of the
// medicine's selling price at sale time; later price changes do not
// reprice history.
type Sale struct {
	ID                string          `gorm:"primaryKey;size:36" json:"id"`
	IssueUnitQuantity int             `gorm:"not null" json:"issue_unit_quantity"`
	IssueUnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"issue_unit_price"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	Status            SaleStatus      `gorm:"size:20;not null;default:'ISSUED'" json:"status"`
	MedicineId        string          `gorm:"size:36;not null;index" json:"medicine_id"`
	CustomerId        string          `gorm:"size:36;not null;index" json:"customer_id"`
	Medicine          *Medicine       `json:"medicine,omitempty"`
	Customer          *Customer       `json:"customer,omitempty"`

	SaleDate  time.Time      `gorm:"autoCreateTime" json:"sale_date"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	s.ID = newResourceId(s.ID)
	return nil
}

type NewSale struct {
	MedicineId        string `json:"medicine_id" binding:"required"`
	CustomerId        string `json:"customer_id" binding:"required"`
	IssueUnitQuantity int    `json:"issue_unit_quantity" binding:"required,gt=0"`
}

type UpdateSaleInput struct {
	IssueUnitQuantity *int        `json:"issue_unit_quantity"`
	Status            *SaleStatus `json:"status"`
}

// CheckSaleStock gates dispensing: the ledger must hold at least two
// packs and the batch on the shelf must not have lapsed.
func CheckSaleStock(medicine *Medicine, now time.Time) error {
	if medicine.PackSizeQuantity < 2 {
		return utils.ForbiddenOperation(medicine.Name + " stock not found")
	}
	if medicine.IsExpired(now) {
		return utils.PreconditionFailedError(medicine.Name + " has already expired")
	}
	return nil
}

// ApplySaleToLedger deducts issue units and re-derives pack stock by
// integer division. Draining stock to exactly zero is refused along
// with going below it.
func ApplySaleToLedger(medicine *Medicine, quantity int) (unitPrice decimal.Decimal, totalPrice decimal.Decimal, err error) {
	newIssueUnitQuantity := medicine.IssueUnitQuantity - quantity
	if newIssueUnitQuantity < 0 {
		return decimal.Zero, decimal.Zero, utils.ForbiddenOperation(medicine.Name + " is out of stock")
	}
	if newIssueUnitQuantity == 0 {
		return decimal.Zero, decimal.Zero, utils.ForbiddenOperation("stock is equal to the requested quantity")
	}
	if medicine.IssueUnitPerPackSize <= 0 {
		return decimal.Zero, decimal.Zero, utils.PreconditionFailedError("issue unit per pack size is not set for " + medicine.Name)
	}

	unitPrice = medicine.IssueUnitSellingPrice
	totalPrice = unitPrice.Mul(decimal.NewFromInt(int64(quantity)))

	medicine.SetIssueUnitQuantity(newIssueUnitQuantity)
	medicine.SetPackSizeQuantity(newIssueUnitQuantity / medicine.IssueUnitPerPackSize)
	return unitPrice, totalPrice, nil
}

// RestoreSaleToLedger returns dispensed units on cancellation. Pack
// stock is not re-derived here, matching the system this replaces.
func RestoreSaleToLedger(medicine *Medicine, quantity int) {
	medicine.SetIssueUnitQuantity(medicine.IssueUnitQuantity + quantity)
}

// CreateSales dispenses a batch of line items in one transaction.
// Items are evaluated in order, so a medicine appearing twice sees the
// first line's deduction; any failure rolls back the whole batch.
func CreateSales(ctx context.Context, inputs []*NewSale) ([]*Sale, error) {
	db := config.GetDB()

	if len(inputs) == 0 {
		return nil, utils.BadRequestError("no sale items given")
	}
	for _, input := range inputs {
		if input.IssueUnitQuantity <= 0 {
			return nil, utils.BadRequestError("issue unit quantity must be greater than zero")
		}
	}

	var sales []*Sale
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var releases []func()
		// deferred inside the closure so the locks come off the live
		// transaction, before gorm commits or rolls back
		defer func() {
			for i := len(releases) - 1; i >= 0; i-- {
				releases[i]()
			}
		}()

		locked := map[string]bool{}
		medicines := map[string]*Medicine{}

		for _, input := range inputs {
			count, err := utils.ResourceCountWhere[Customer](ctx, "id = ?", input.CustomerId)
			if err != nil {
				return err
			}
			if count == 0 {
				return utils.NotFoundError("customer not found")
			}

			if !locked[input.MedicineId] {
				release, err := workflow.AcquireReconcileLock(ctx, tx, input.MedicineId, "")
				if err != nil {
					return err
				}
				releases = append(releases, release)
				locked[input.MedicineId] = true
			}

			medicine := medicines[input.MedicineId]
			if medicine == nil {
				medicine = &Medicine{}
				if err := tx.Where("id = ?", input.MedicineId).First(medicine).Error; err != nil {
					return utils.NotFoundError("medicine not found")
				}
				medicines[input.MedicineId] = medicine
			}

			if err := CheckSaleStock(medicine, now); err != nil {
				return err
			}
			unitPrice, totalPrice, err := ApplySaleToLedger(medicine, input.IssueUnitQuantity)
			if err != nil {
				return err
			}

			sales = append(sales, &Sale{
				IssueUnitQuantity: input.IssueUnitQuantity,
				IssueUnitPrice:    unitPrice,
				TotalPrice:        totalPrice,
				Status:            SaleStatusIssued,
				MedicineId:        input.MedicineId,
				CustomerId:        input.CustomerId,
			})
		}

		for _, medicine := range medicines {
			if err := tx.Save(medicine).Error; err != nil {
				return err
			}
		}
		return tx.Create(&sales).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return sales, nil
}

// UpdateSale restores the previously deducted units, then deducts the
// new quantity. Setting the status to CANCELLED restores without
// re-deducting, so cancellation returns stock.
func UpdateSale(ctx context.Context, id string, input *UpdateSaleInput) (*Sale, error) {
	db := config.GetDB()

	scout, err := utils.FetchModel[Sale](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("sale not found")
	}
	if scout.Status == SaleStatusCancelled {
		return nil, utils.ForbiddenOperation("sale is already cancelled")
	}
	if input.Status != nil {
		if err := input.Status.IsValid(); err != nil {
			return nil, utils.BadRequestError(err.Error())
		}
	}
	if input.IssueUnitQuantity != nil && *input.IssueUnitQuantity <= 0 {
		return nil, utils.BadRequestError("issue unit quantity must be greater than zero")
	}

	var sale Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release, err := workflow.AcquireReconcileLock(ctx, tx, scout.MedicineId, "")
		if err != nil {
			return err
		}
		defer release()

		if err := tx.Where("id = ?", id).First(&sale).Error; err != nil {
			return utils.NotFoundError("sale not found")
		}
		var medicine Medicine
		if err := tx.Where("id = ?", sale.MedicineId).First(&medicine).Error; err != nil {
			return utils.NotFoundError("medicine not found")
		}

		// fallback quantity comes from the row read under the lock
		quantity := utils.DereferencePtr(input.IssueUnitQuantity, sale.IssueUnitQuantity)

		RestoreSaleToLedger(&medicine, sale.IssueUnitQuantity)

		cancelling := input.Status != nil && *input.Status == SaleStatusCancelled
		if cancelling {
			sale.Status = SaleStatusCancelled
		} else {
			unitPrice, totalPrice, err := ApplySaleToLedger(&medicine, quantity)
			if err != nil {
				return err
			}
			sale.IssueUnitQuantity = quantity
			sale.IssueUnitPrice = unitPrice
			sale.TotalPrice = totalPrice
			if input.Status != nil {
				sale.Status = *input.Status
			}
		}

		if err := tx.Save(&medicine).Error; err != nil {
			return err
		}
		return tx.Save(&sale).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &sale, nil
}

// RemoveSale cancels a sale. Stock is returned to the ledger unless
// the restore policy has been switched off.
func RemoveSale(ctx context.Context, id string) (*Sale, error) {
	db := config.GetDB()

	scout, err := utils.FetchModel[Sale](ctx, id)
	if err != nil {
		return nil, utils.NotFoundError("sale not found")
	}
	if scout.Status == SaleStatusCancelled {
		return nil, utils.ForbiddenOperation("sale is already cancelled")
	}

	var sale Sale
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		release, err := workflow.AcquireReconcileLock(ctx, tx, scout.MedicineId, "")
		if err != nil {
			return err
		}
		defer release()

		if err := tx.Where("id = ?", id).First(&sale).Error; err != nil {
			return utils.NotFoundError("sale not found")
		}

		if config.RestoreStockOnSaleCancel() {
			var medicine Medicine
			if err := tx.Where("id = ?", sale.MedicineId).First(&medicine).Error; err != nil {
				return utils.NotFoundError("medicine not found")
			}
			RestoreSaleToLedger(&medicine, sale.IssueUnitQuantity)
			if err := tx.Save(&medicine).Error; err != nil {
				return err
			}
		}

		sale.Status = SaleStatusCancelled
		return tx.Save(&sale).Error
	})
	if err != nil {
		return nil, err
	}

	config.RemoveRedisKey(medicineListCacheKey)
	return &sale, nil
}

func GetSale(ctx context.Context, id string) (*Sale, error) {
	sale, err := utils.FetchModel[Sale](ctx, id, "Medicine", "Customer")
	if err != nil {
		return nil, utils.NotFoundError("sale not found")
	}
	return sale, nil
}

// GetSales lists sales newest first, optionally by status or day.
func GetSales(ctx context.Context, status *SaleStatus, day *time.Time) ([]*Sale, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Medicine").Preload("Customer")
	if status != nil {
		if err := status.IsValid(); err != nil {
			return nil, utils.BadRequestError(err.Error())
		}
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if day != nil {
		start, end := utils.GetDayRange(*day)
		dbCtx = dbCtx.Where("sale_date >= ? AND sale_date < ?", start, end)
	}

	var sales []*Sale
	if err := dbCtx.Order("sale_date DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

func GetSalesByCustomer(ctx context.Context, customerId string) ([]*Sale, error) {
	db := config.GetDB()

	if err := utils.ValidateResourceId[Customer](ctx, customerId); err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	var sales []*Sale
	err := db.WithContext(ctx).Preload("Medicine").
		Where("customer_id = ?", customerId).
		Order("sale_date DESC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// DailySalesTotal is one day's dispensing volume and takings.
type DailySalesTotal struct {
	Date          time.Time       `json:"date"`
	NumberOfSales int             `json:"number_of_sales"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
}

// TodaySalesTotal sums today's issued sales.
func TodaySalesTotal(ctx context.Context) (*DailySalesTotal, error) {
	db := config.GetDB()
	start, end := utils.GetTodayRange()

	var row struct {
		NumberOfSales int
		Quantity      int
		Total         decimal.NullDecimal
	}
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("COUNT(*) AS number_of_sales, COALESCE(SUM(issue_unit_quantity), 0) AS quantity, SUM(total_price) AS total").
		Where("status = ? AND sale_date BETWEEN ? AND ?", SaleStatusIssued, start, end).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &DailySalesTotal{
		Date:          utils.TruncateToDate(start),
		NumberOfSales: row.NumberOfSales,
		Quantity:      row.Quantity,
		Total:         row.Total.Decimal,
	}, nil
}

// SalesStatusTotal is today's volume for one sale status.
type SalesStatusTotal struct {
	Status        SaleStatus      `json:"status"`
	NumberOfSales int             `json:"number_of_sales"`
	Quantity      int             `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
}

// TodaySalesByStatus groups today's sales per status.
func TodaySalesByStatus(ctx context.Context) ([]*SalesStatusTotal, error) {
	db := config.GetDB()
	start, end := utils.GetTodayRange()

	var rows []*SalesStatusTotal
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("status, COUNT(*) AS number_of_sales, COALESCE(SUM(issue_unit_quantity), 0) AS quantity, SUM(total_price) AS total").
		Where("sale_date BETWEEN ? AND ?", start, end).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
