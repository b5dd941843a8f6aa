package reports

import (
	"context"
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportInventoryExcel streams the full medicine ledger as a workbook.
func ExportInventoryExcel(ctx context.Context, w http.ResponseWriter) {

	f := excelize.NewFile()
	_, err := f.NewSheet("Sheet1")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	medicines, err := models.GetMedicines(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Add headers
	f.SetCellValue("Sheet1", "A1", "Name")
	f.SetCellValue("Sheet1", "B1", "DoseForm")
	f.SetCellValue("Sheet1", "C1", "Strength")
	f.SetCellValue("Sheet1", "D1", "PackSizeQuantity")
	f.SetCellValue("Sheet1", "E1", "IssueUnitQuantity")
	f.SetCellValue("Sheet1", "F1", "IssueUnitPerPackSize")
	f.SetCellValue("Sheet1", "G1", "PackSizeSellingPrice")
	f.SetCellValue("Sheet1", "H1", "IssueUnitSellingPrice")
	f.SetCellValue("Sheet1", "I1", "ExpiryDate")

	// Add data
	for i, m := range medicines {
		row := fmt.Sprint(i + 2)
		f.SetCellValue("Sheet1", "A"+row, m.Name)
		f.SetCellValue("Sheet1", "B"+row, string(m.DoseForm))
		f.SetCellValue("Sheet1", "C"+row, m.Strength)
		f.SetCellValue("Sheet1", "D"+row, m.PackSizeQuantity)
		f.SetCellValue("Sheet1", "E"+row, m.IssueUnitQuantity)
		f.SetCellValue("Sheet1", "F"+row, m.IssueUnitPerPackSize)
		f.SetCellValue("Sheet1", "G"+row, m.PackSizeSellingPrice.String())
		f.SetCellValue("Sheet1", "H"+row, m.IssueUnitSellingPrice.String())
		if !m.ExpiryDate.IsZero() {
			f.SetCellValue("Sheet1", "I"+row, m.ExpiryDate.Format("2006-01-02"))
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=inventory.xlsx")
	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write file", http.StatusInternalServerError)
	}
}
