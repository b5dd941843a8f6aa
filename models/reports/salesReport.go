package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type SalesByCustomerRow struct {
	CustomerId   string          `json:"customer_id"`
	CustomerName *string         `json:"customer_name"`
	SaleCount    int             `json:"sale_count"`
	TotalSales   decimal.Decimal `json:"total_sales"`
}

func getSalesByCustomerReport(ctx context.Context) ([]*SalesByCustomerRow, error) {

	sql := `
SELECT
    sv.customer_id,
    customers.name AS customer_name,
    sv.sale_count,
    sv.total_sales
FROM
    (
        SELECT
            customer_id,
            COUNT(sales.id) AS sale_count,
            SUM(total_price) AS total_sales
        FROM
            sales
        WHERE
            status = 'ISSUED'
            AND deleted_at IS NULL
        GROUP BY
            customer_id
    ) AS sv
    LEFT JOIN customers ON customers.id = sv.customer_id;
`

	var records []*SalesByCustomerRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// WriteSalesByCustomerPDF renders the per-customer sales summary.
func WriteSalesByCustomerPDF(ctx context.Context, w io.Writer) error {
	rows, err := getSalesByCustomerReport(ctx)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(120, 10, "Sales by Customer")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 10, time.Now().Format("2006-01-02"), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 8, "Customer", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Sales", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	grandTotal := decimal.Zero
	for _, row := range rows {
		name := ""
		if row.CustomerName != nil {
			name = *row.CustomerName
		}
		pdf.CellFormat(80, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprint(row.SaleCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, row.TotalSales.StringFixed(2), "1", 1, "R", false, 0, "")
		grandTotal = grandTotal.Add(row.TotalSales)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(110, 8, "Grand Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, grandTotal.StringFixed(2), "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}

// WriteMonthlySalesPDF renders the current month's daily takings.
func WriteMonthlySalesPDF(ctx context.Context, w io.Writer) error {
	rows, err := models.CurrentMonthSalesReport(ctx)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(120, 10, "Monthly Sales")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 10, time.Now().Format("January 2006"), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 8, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Sales", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, row := range rows {
		pdf.CellFormat(50, 8, row.Date.Format("2006-01-02"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprint(row.NumberOfSales), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, row.Total.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
