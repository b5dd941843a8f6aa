package models_test

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the
// reconciliation arithmetic on in-memory ledgers; the end-to-end
// transaction paths are covered by the docker-gated integration tests.

func freshMedicine() *models.Medicine {
	return &models.Medicine{
		ID:         "med-1",
		Name:       "Amoxicillin",
		DoseForm:   models.DoseFormCapsule,
		Strength:   "500mg",
		LevelOfUse: 1,
		ExpiryDate: time.Now().AddDate(1, 0, 0),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyPurchaseToLedger_FirstDelivery(t *testing.T) {
	medicine := freshMedicine()
	expiry := time.Now().AddDate(0, 6, 0)

	economics := models.ApplyPurchaseToLedger(medicine, 20, dec("100"), 10, expiry)

	if medicine.PackSizeQuantity != 20 {
		t.Errorf("PackSizeQuantity = %d, want 20", medicine.PackSizeQuantity)
	}
	if medicine.IssueUnitQuantity != 200 {
		t.Errorf("IssueUnitQuantity = %d, want 200", medicine.IssueUnitQuantity)
	}
	if medicine.IssueUnitPerPackSize != 10 {
		t.Errorf("IssueUnitPerPackSize = %d, want 10", medicine.IssueUnitPerPackSize)
	}
	if !medicine.PackSizePurchasePrice.Equal(dec("100")) {
		t.Errorf("PackSizePurchasePrice = %s, want 100", medicine.PackSizePurchasePrice)
	}
	if !medicine.IssueUnitPurchasePrice.Equal(dec("10")) {
		t.Errorf("IssueUnitPurchasePrice = %s, want 10", medicine.IssueUnitPurchasePrice)
	}
	if !medicine.PackSizeSellingPrice.Equal(dec("140")) {
		t.Errorf("PackSizeSellingPrice = %s, want 140", medicine.PackSizeSellingPrice)
	}
	if !medicine.IssueUnitSellingPrice.Equal(dec("14")) {
		t.Errorf("IssueUnitSellingPrice = %s, want 14", medicine.IssueUnitSellingPrice)
	}
	if !medicine.ProfitPerPackSize.Equal(dec("40")) {
		t.Errorf("ProfitPerPackSize = %s, want 40", medicine.ProfitPerPackSize)
	}
	if !medicine.ExpiryDate.Equal(expiry) {
		t.Errorf("ExpiryDate = %s, want %s", medicine.ExpiryDate, expiry)
	}

	if !economics.TotalPurchasePrice.Equal(dec("2000")) {
		t.Errorf("TotalPurchasePrice = %s, want 2000", economics.TotalPurchasePrice)
	}
	if economics.TotalIssueUnitQuantity != 200 {
		t.Errorf("TotalIssueUnitQuantity = %d, want 200", economics.TotalIssueUnitQuantity)
	}
	if !economics.ProfitMarginPercentagePerPackSize.Equal(dec("40")) {
		t.Errorf("ProfitMarginPercentagePerPackSize = %s, want 40", economics.ProfitMarginPercentagePerPackSize)
	}
}

func TestApplyPurchaseToLedger_NewFactorGovernsIssueUnits(t *testing.T) {
	medicine := freshMedicine()
	expiry := time.Now().AddDate(0, 6, 0)

	models.ApplyPurchaseToLedger(medicine, 10, dec("50"), 10, expiry)
	// second delivery comes with a bigger pack; its factor applies to
	// ITS quantity only, the existing 100 issue units are untouched
	models.ApplyPurchaseToLedger(medicine, 5, dec("60"), 20, expiry)

	if medicine.IssueUnitPerPackSize != 20 {
		t.Errorf("IssueUnitPerPackSize = %d, want 20", medicine.IssueUnitPerPackSize)
	}
	if medicine.IssueUnitQuantity != 100+5*20 {
		t.Errorf("IssueUnitQuantity = %d, want 200", medicine.IssueUnitQuantity)
	}
	if medicine.PackSizeQuantity != 15 {
		t.Errorf("PackSizeQuantity = %d, want 15", medicine.PackSizeQuantity)
	}
}

func TestSellingPriceNeverFalls(t *testing.T) {
	medicine := freshMedicine()
	expiry := time.Now().AddDate(0, 6, 0)

	models.ApplyPurchaseToLedger(medicine, 10, dec("100"), 10, expiry)
	highPack := medicine.PackSizeSellingPrice
	highIssue := medicine.IssueUnitSellingPrice

	// cheaper restock must not drag the selling price down
	models.ApplyPurchaseToLedger(medicine, 10, dec("50"), 10, expiry)

	if !medicine.PackSizeSellingPrice.Equal(highPack) {
		t.Errorf("PackSizeSellingPrice = %s, want %s", medicine.PackSizeSellingPrice, highPack)
	}
	if !medicine.IssueUnitSellingPrice.Equal(highIssue) {
		t.Errorf("IssueUnitSellingPrice = %s, want %s", medicine.IssueUnitSellingPrice, highIssue)
	}

	// dearer restock raises it
	models.ApplyPurchaseToLedger(medicine, 10, dec("200"), 10, expiry)
	if !medicine.PackSizeSellingPrice.Equal(dec("280")) {
		t.Errorf("PackSizeSellingPrice = %s, want 280", medicine.PackSizeSellingPrice)
	}
}

func TestRollbackThenIdenticalReapplyIsANoOp(t *testing.T) {
	medicine := freshMedicine()
	expiry := time.Now().AddDate(0, 6, 0)

	models.ApplyPurchaseToLedger(medicine, 20, dec("100"), 10, expiry)
	packAfterCreate := medicine.PackSizeQuantity
	issueAfterCreate := medicine.IssueUnitQuantity

	models.RollbackPurchaseFromLedger(medicine, 20)
	if medicine.PackSizeQuantity != 0 || medicine.IssueUnitQuantity != 0 {
		t.Fatalf("rollback left pack=%d issue=%d, want 0/0", medicine.PackSizeQuantity, medicine.IssueUnitQuantity)
	}

	models.ApplyPurchaseToLedger(medicine, 20, dec("100"), 10, expiry)
	if medicine.PackSizeQuantity != packAfterCreate {
		t.Errorf("PackSizeQuantity = %d, want %d", medicine.PackSizeQuantity, packAfterCreate)
	}
	if medicine.IssueUnitQuantity != issueAfterCreate {
		t.Errorf("IssueUnitQuantity = %d, want %d", medicine.IssueUnitQuantity, issueAfterCreate)
	}
}

func TestRollbackUsesCurrentFactor(t *testing.T) {
	medicine := freshMedicine()
	expiry := time.Now().AddDate(0, 6, 0)

	models.ApplyPurchaseToLedger(medicine, 10, dec("100"), 10, expiry)
	// factor changes to 20 via a later delivery
	models.ApplyPurchaseToLedger(medicine, 5, dec("100"), 20, expiry)

	// rolling back the first delivery removes 10*20 issue units, not
	// 10*10: the current factor governs, drift and all
	models.RollbackPurchaseFromLedger(medicine, 10)
	if medicine.IssueUnitQuantity != 100+100-200 {
		t.Errorf("IssueUnitQuantity = %d, want 0", medicine.IssueUnitQuantity)
	}
	if medicine.PackSizeQuantity != 5 {
		t.Errorf("PackSizeQuantity = %d, want 5", medicine.PackSizeQuantity)
	}
}

func TestOrderFulfillmentLifecycle(t *testing.T) {
	order := &models.Order{OrderQuantity: 50, Status: models.OrderStatusPending}

	if err := order.ApplyFulfillment(20); err != nil {
		t.Fatalf("ApplyFulfillment(20): %v", err)
	}
	if order.OrderQuantity != 30 || order.Status != models.OrderStatusActive {
		t.Fatalf("after partial: qty=%d status=%s, want 30/ACTIVE", order.OrderQuantity, order.Status)
	}

	if err := order.ApplyFulfillment(30); err != nil {
		t.Fatalf("ApplyFulfillment(30): %v", err)
	}
	if order.OrderQuantity != 0 || order.Status != models.OrderStatusDelivered {
		t.Fatalf("after full: qty=%d status=%s, want 0/DELIVERED", order.OrderQuantity, order.Status)
	}
}

func TestOrderOverSupplyRejectedAndUnchanged(t *testing.T) {
	order := &models.Order{OrderQuantity: 10, Status: models.OrderStatusActive}

	err := order.ApplyFulfillment(11)
	if err == nil {
		t.Fatal("expected over-supply to fail")
	}
	if utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("error kind = %v, want KindForbidden", utils.KindOf(err))
	}
	if order.OrderQuantity != 10 || order.Status != models.OrderStatusActive {
		t.Errorf("order mutated on failure: qty=%d status=%s", order.OrderQuantity, order.Status)
	}
}

func TestOrderRollbackKeepsDeliveredClosed(t *testing.T) {
	order := &models.Order{OrderQuantity: 0, Status: models.OrderStatusDelivered}

	// restoring quantity must not silently reopen a completed order
	order.RollbackFulfillment(20)
	if order.OrderQuantity != 20 {
		t.Errorf("OrderQuantity = %d, want 20", order.OrderQuantity)
	}
	if order.Status != models.OrderStatusDelivered {
		t.Errorf("Status = %s, want DELIVERED", order.Status)
	}
}

func TestOrderRollbackThenReapplySetsStatus(t *testing.T) {
	order := &models.Order{OrderQuantity: 30, Status: models.OrderStatusActive}

	order.RollbackFulfillment(20)
	if err := order.ApplyFulfillment(50); err != nil {
		t.Fatalf("ApplyFulfillment(50): %v", err)
	}
	if order.OrderQuantity != 0 || order.Status != models.OrderStatusDelivered {
		t.Errorf("after reapply: qty=%d status=%s, want 0/DELIVERED", order.OrderQuantity, order.Status)
	}
}

func TestApplySaleToLedger(t *testing.T) {
	medicine := freshMedicine()
	medicine.SetIssueUnitQuantity(200)
	medicine.SetPackSizeQuantity(20)
	medicine.SetIssueUnitPerPackSize(10)
	medicine.IssueUnitSellingPrice = dec("15")

	unitPrice, totalPrice, err := models.ApplySaleToLedger(medicine, 5)
	if err != nil {
		t.Fatalf("ApplySaleToLedger: %v", err)
	}
	if !unitPrice.Equal(dec("15")) {
		t.Errorf("unitPrice = %s, want 15", unitPrice)
	}
	if !totalPrice.Equal(dec("75")) {
		t.Errorf("totalPrice = %s, want 75", totalPrice)
	}
	if medicine.IssueUnitQuantity != 195 {
		t.Errorf("IssueUnitQuantity = %d, want 195", medicine.IssueUnitQuantity)
	}
	if medicine.PackSizeQuantity != 19 {
		t.Errorf("PackSizeQuantity = %d, want 19 (floor 195/10)", medicine.PackSizeQuantity)
	}
}

func TestSaleDrainingStockToZeroIsRefused(t *testing.T) {
	medicine := freshMedicine()
	medicine.SetIssueUnitQuantity(50)
	medicine.SetPackSizeQuantity(5)
	medicine.SetIssueUnitPerPackSize(10)

	_, _, err := models.ApplySaleToLedger(medicine, 50)
	if err == nil {
		t.Fatal("expected exact drain to fail")
	}
	if utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("error kind = %v, want KindForbidden", utils.KindOf(err))
	}
	if medicine.IssueUnitQuantity != 50 {
		t.Errorf("ledger mutated on failure: issue=%d", medicine.IssueUnitQuantity)
	}

	_, _, err = models.ApplySaleToLedger(medicine, 51)
	if err == nil {
		t.Fatal("expected over-draw to fail")
	}
}

func TestBatchSaleSequencing(t *testing.T) {
	// two lines of Q each against stock between Q and 2Q: the first
	// succeeds, the second sees the decremented stock and fails
	medicine := freshMedicine()
	medicine.SetIssueUnitQuantity(150)
	medicine.SetPackSizeQuantity(15)
	medicine.SetIssueUnitPerPackSize(10)
	medicine.IssueUnitSellingPrice = dec("15")

	if _, _, err := models.ApplySaleToLedger(medicine, 100); err != nil {
		t.Fatalf("first line: %v", err)
	}
	if _, _, err := models.ApplySaleToLedger(medicine, 100); err == nil {
		t.Fatal("second line should fail against decremented stock")
	}
	if medicine.IssueUnitQuantity != 50 {
		t.Errorf("IssueUnitQuantity = %d, want 50", medicine.IssueUnitQuantity)
	}
}

func TestCheckSaleStock(t *testing.T) {
	now := time.Now()

	lowStock := freshMedicine()
	lowStock.SetPackSizeQuantity(1)
	if err := models.CheckSaleStock(lowStock, now); utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("pack floor: error kind = %v, want KindForbidden", utils.KindOf(err))
	}

	expired := freshMedicine()
	expired.SetPackSizeQuantity(10)
	expired.SetExpiryDate(now.AddDate(0, 0, -1))
	if err := models.CheckSaleStock(expired, now); utils.KindOf(err) != utils.KindPreconditionFailed {
		t.Errorf("expired: error kind = %v, want KindPreconditionFailed", utils.KindOf(err))
	}

	ok := freshMedicine()
	ok.SetPackSizeQuantity(10)
	if err := models.CheckSaleStock(ok, now); err != nil {
		t.Errorf("healthy stock rejected: %v", err)
	}
}

func TestRestoreSaleToLedger(t *testing.T) {
	medicine := freshMedicine()
	medicine.SetIssueUnitQuantity(195)
	medicine.SetPackSizeQuantity(19)
	medicine.SetIssueUnitPerPackSize(10)

	models.RestoreSaleToLedger(medicine, 5)
	if medicine.IssueUnitQuantity != 200 {
		t.Errorf("IssueUnitQuantity = %d, want 200", medicine.IssueUnitQuantity)
	}
	// pack stock is deliberately not re-derived on restore
	if medicine.PackSizeQuantity != 19 {
		t.Errorf("PackSizeQuantity = %d, want 19", medicine.PackSizeQuantity)
	}
}
