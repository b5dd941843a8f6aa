package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"gorm.io/gorm"
)

// Order tracks the still-undelivered quantity against a supplier.
// OrderQuantity counts down as purchases arrive; the original quantity
// is recoverable as remaining + sum of purchase quantities.
type Order struct {
	ID            string      `gorm:"primaryKey;size:36" json:"id"`
	OrderQuantity int         `gorm:"not null" json:"order_quantity"`
	Status        OrderStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	MedicineId    string      `gorm:"size:36;not null;index" json:"medicine_id"`
	SupplierId    string      `gorm:"size:36;not null;index" json:"supplier_id"`
	Medicine      *Medicine   `json:"medicine,omitempty"`
	Supplier      *Supplier   `json:"supplier,omitempty"`

	OrderDate time.Time      `gorm:"autoCreateTime" json:"order_date"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	o.ID = newResourceId(o.ID)
	return nil
}

// ApplyFulfillment deducts a delivered quantity and moves the status:
// fully supplied orders become DELIVERED, partially supplied ACTIVE.
// Over-supply is rejected and the order is left untouched.
func (o *Order) ApplyFulfillment(suppliedQuantity int) error {
	remaining := o.OrderQuantity - suppliedQuantity
	if remaining < 0 {
		return utils.ForbiddenOperation("supplied quantity is greater than the order quantity")
	}
	o.OrderQuantity = remaining
	if remaining == 0 {
		o.Status = OrderStatusDelivered
	} else {
		o.Status = OrderStatusActive
	}
	return nil
}

// RollbackFulfillment restores a previously deducted quantity. The
// status is left alone: a DELIVERED or CANCELLED order stays closed,
// and callers that reapply a fulfillment set it from there. Reopening
// a closed order is an explicit caller decision.
func (o *Order) RollbackFulfillment(suppliedQuantity int) {
	o.OrderQuantity += suppliedQuantity
}

type NewOrder struct {
	MedicineId    string `json:"medicine_id" binding:"required"`
	SupplierId    string `json:"supplier_id" binding:"required"`
	OrderQuantity int    `json:"order_quantity" binding:"required,gt=0"`
}

type UpdateOrderInput struct {
	SupplierId    *string `json:"supplier_id"`
	OrderQuantity *int    `json:"order_quantity"`
}

func (input *NewOrder) validate(ctx context.Context) error {
	medicine, err := utils.FetchModel[Medicine](ctx, input.MedicineId)
	if err != nil {
		if err == utils.ErrorRecordNotFound {
			return utils.NotFoundError("medicine not found")
		}
		return err
	}
	if medicine.IsExpired(time.Now()) {
		return utils.PreconditionFailedError("medicine is expired")
	}
	if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
		if err == utils.ErrorRecordNotFound {
			return utils.NotFoundError("supplier not found")
		}
		return err
	}
	if input.OrderQuantity <= 0 {
		return utils.BadRequestError("order quantity must be greater than zero")
	}
	return nil
}

func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	order := Order{
		MedicineId:    input.MedicineId,
		SupplierId:    input.SupplierId,
		OrderQuantity: input.OrderQuantity,
		Status:        OrderStatusPending,
	}

	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func GetOrder(ctx context.Context, id string) (*Order, error) {
	order, err := utils.FetchModel[Order](ctx, id, "Medicine", "Supplier")
	if err != nil {
		return nil, utils.NotFoundError("order not found")
	}
	return order, nil
}

// GetOrders lists orders, optionally narrowed to a status or to today.
func GetOrders(ctx context.Context, status *OrderStatus, todayOnly bool) ([]*Order, error) {
	db := config.GetDB()

	dbCtx := db.WithContext(ctx).Preload("Medicine").Preload("Supplier")
	if status != nil {
		if err := status.IsValid(); err != nil {
			return nil, utils.BadRequestError(err.Error())
		}
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	if todayOnly {
		start, end := utils.GetTodayRange()
		dbCtx = dbCtx.Where("order_date BETWEEN ? AND ?", start, end)
	}

	var orders []*Order
	if err := dbCtx.Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrder edits the ordered quantity or supplier. Only orders with
// no deliveries yet may be edited; reconciled quantities belong to the
// purchase update path.
func UpdateOrder(ctx context.Context, id string, input *UpdateOrderInput) (*Order, error) {
	db := config.GetDB()

	order, err := GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != OrderStatusPending {
		return nil, utils.ForbiddenOperation("only pending orders can be edited")
	}

	if input.SupplierId != nil {
		if err := utils.ValidateResourceId[Supplier](ctx, *input.SupplierId); err != nil {
			return nil, utils.NotFoundError("supplier not found")
		}
	}
	if input.OrderQuantity != nil && *input.OrderQuantity <= 0 {
		return nil, utils.BadRequestError("order quantity must be greater than zero")
	}

	err = db.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"SupplierId":    utils.DereferencePtr(input.SupplierId, order.SupplierId),
		"OrderQuantity": utils.DereferencePtr(input.OrderQuantity, order.OrderQuantity),
	}).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder closes an order that will not be supplied. Orders with
// recorded purchases keep their history; the remaining quantity is
// simply abandoned.
func CancelOrder(ctx context.Context, id string) (*Order, error) {
	db := config.GetDB()

	order, err := GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status.IsClosed() {
		return nil, utils.ForbiddenOperation("order is already " + string(order.Status))
	}

	err = db.WithContext(ctx).Model(order).Update("Status", OrderStatusCancelled).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder tombstones an order. Delivered history is kept; only
// cancelled or untouched pending orders can go.
func DeleteOrder(ctx context.Context, id string) (*Order, error) {
	db := config.GetDB()

	order, err := GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == OrderStatusActive || order.Status == OrderStatusDelivered {
		return nil, utils.ForbiddenOperation("orders with deliveries cannot be deleted")
	}

	if err := db.WithContext(ctx).Delete(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}
