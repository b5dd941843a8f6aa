package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
)

// Daily analytics over the current month. Rows come back grouped per
// calendar day; days without activity are absent, not zero-filled.

type OrdersDailyCount struct {
	Date           time.Time `json:"date"`
	NumberOfOrders int       `json:"number_of_orders"`
}

type PurchasesDailyTotal struct {
	Date              time.Time       `json:"date"`
	NumberOfPurchases int             `json:"number_of_purchases"`
	Total             decimal.Decimal `json:"total"`
}

func CurrentMonthOrdersReport(ctx context.Context, status *OrderStatus) ([]*OrdersDailyCount, error) {
	db := config.GetDB()
	start, end := utils.GetThisMonthRange()

	dbCtx := db.WithContext(ctx).Model(&Order{}).
		Select("DATE(order_date) AS date, COUNT(*) AS number_of_orders").
		Where("order_date BETWEEN ? AND ?", start, end)
	if status != nil {
		if err := status.IsValid(); err != nil {
			return nil, utils.BadRequestError(err.Error())
		}
		dbCtx = dbCtx.Where("status = ?", *status)
	}

	var rows []*OrdersDailyCount
	err := dbCtx.Group("DATE(order_date)").Order("date ASC").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func CurrentMonthSalesReport(ctx context.Context) ([]*DailySalesTotal, error) {
	db := config.GetDB()
	start, end := utils.GetThisMonthRange()

	var rows []*DailySalesTotal
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("DATE(sale_date) AS date, COUNT(*) AS number_of_sales, COALESCE(SUM(issue_unit_quantity), 0) AS quantity, SUM(total_price) AS total").
		Where("status = ? AND sale_date BETWEEN ? AND ?", SaleStatusIssued, start, end).
		Group("DATE(sale_date)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func CurrentMonthPurchasesReport(ctx context.Context) ([]*PurchasesDailyTotal, error) {
	db := config.GetDB()
	start, end := utils.GetThisMonthRange()

	var rows []*PurchasesDailyTotal
	err := db.WithContext(ctx).Model(&Purchase{}).
		Select("DATE(purchase_date) AS date, COUNT(*) AS number_of_purchases, SUM(total_purchase_price) AS total").
		Where("purchase_date BETWEEN ? AND ?", start, end).
		Group("DATE(purchase_date)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TodayActivitySummary is the dashboard headline: today's volumes
// across orders, purchases and sales.
type TodayActivitySummary struct {
	Date                time.Time       `json:"date"`
	NumberOfOrders      int             `json:"number_of_orders"`
	NumberOfPurchases   int             `json:"number_of_purchases"`
	PurchasesTotal      decimal.Decimal `json:"purchases_total"`
	NumberOfSales       int             `json:"number_of_sales"`
	SalesTotal          decimal.Decimal `json:"sales_total"`
	ExpiredMedicines    int             `json:"expired_medicines"`
	OutOfStockMedicines int             `json:"out_of_stock_medicines"`
}

func GetTodayActivitySummary(ctx context.Context) (*TodayActivitySummary, error) {
	db := config.GetDB()
	start, end := utils.GetTodayRange()

	summary := TodayActivitySummary{Date: utils.TruncateToDate(start)}

	var orderCount int64
	err := db.WithContext(ctx).Model(&Order{}).
		Where("order_date BETWEEN ? AND ?", start, end).
		Count(&orderCount).Error
	if err != nil {
		return nil, err
	}
	summary.NumberOfOrders = int(orderCount)

	var purchaseRow struct {
		NumberOfPurchases int
		Total             decimal.NullDecimal
	}
	err = db.WithContext(ctx).Model(&Purchase{}).
		Select("COUNT(*) AS number_of_purchases, SUM(total_purchase_price) AS total").
		Where("purchase_date BETWEEN ? AND ?", start, end).
		Scan(&purchaseRow).Error
	if err != nil {
		return nil, err
	}
	summary.NumberOfPurchases = purchaseRow.NumberOfPurchases
	summary.PurchasesTotal = purchaseRow.Total.Decimal

	salesToday, err := TodaySalesTotal(ctx)
	if err != nil {
		return nil, err
	}
	summary.NumberOfSales = salesToday.NumberOfSales
	summary.SalesTotal = salesToday.Total

	var expiredCount int64
	err = db.WithContext(ctx).Model(&Medicine{}).
		Where("expiry_date != ? AND expiry_date <= ?", time.Time{}, time.Now()).
		Count(&expiredCount).Error
	if err != nil {
		return nil, err
	}
	summary.ExpiredMedicines = int(expiredCount)

	var outOfStockCount int64
	err = db.WithContext(ctx).Model(&Medicine{}).
		Where("pack_size_quantity < ?", 2).
		Count(&outOfStockCount).Error
	if err != nil {
		return nil, err
	}
	summary.OutOfStockMedicines = int(outOfStockCount)

	return &summary, nil
}
