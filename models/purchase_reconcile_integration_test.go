package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"bitbucket.org/mmdatafocus/pharmacy_backend/models"
	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
	"github.com/shopspring/decimal"
)

// End-to-end reconciliation against real MySQL + Redis containers.
// Run with INTEGRATION_TESTS=1 (requires docker).

func setupIntegration(t *testing.T) context.Context {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "pharmacy_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, "test-user")
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	return ctx
}

func TestPurchaseReconciliationLifecycle(t *testing.T) {
	ctx := setupIntegration(t)

	medicine, err := models.CreateMedicine(ctx, &models.NewMedicine{
		Name:             "Paracetamol",
		DoseForm:         models.DoseFormTablet,
		Strength:         "500mg",
		LevelOfUse:       1,
		TherapeuticClass: "Analgesic",
	})
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Acme Pharma"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		MedicineId:    medicine.ID,
		SupplierId:    supplier.ID,
		OrderQuantity: 50,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("new order status = %s, want PENDING", order.Status)
	}

	expiry := time.Now().AddDate(0, 6, 0)
	purchase, err := models.CreatePurchase(ctx, order.ID, &models.NewPurchase{
		PurchasedPackSizeQuantity: 20,
		PricePerPackSize:          decimal.RequireFromString("100"),
		IssueUnitPerPackSize:      10,
		ExpiryDate:                expiry,
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if !purchase.TotalPurchasePrice.Equal(decimal.RequireFromString("2000")) {
		t.Errorf("TotalPurchasePrice = %s, want 2000", purchase.TotalPurchasePrice)
	}

	order, err = models.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if order.OrderQuantity != 30 || order.Status != models.OrderStatusActive {
		t.Fatalf("order after partial delivery: qty=%d status=%s, want 30/ACTIVE", order.OrderQuantity, order.Status)
	}

	medicine, err = models.GetMedicine(ctx, medicine.ID)
	if err != nil {
		t.Fatalf("GetMedicine: %v", err)
	}
	if medicine.PackSizeQuantity != 20 || medicine.IssueUnitQuantity != 200 {
		t.Fatalf("ledger after delivery: pack=%d issue=%d, want 20/200", medicine.PackSizeQuantity, medicine.IssueUnitQuantity)
	}

	// update the still-open purchase to the same quantity: round-trip
	// no-op on the ledger
	medicineBefore, _ := models.GetMedicine(ctx, medicine.ID)
	quantity := 20
	_, err = models.UpdatePurchase(ctx, purchase.ID, &models.UpdatePurchaseInput{
		PurchasedPackSizeQuantity: &quantity,
	})
	if err != nil {
		t.Fatalf("UpdatePurchase: %v", err)
	}
	medicineAfter, _ := models.GetMedicine(ctx, medicine.ID)
	if medicineAfter.PackSizeQuantity != medicineBefore.PackSizeQuantity {
		t.Errorf("round-trip changed pack stock: %d -> %d", medicineBefore.PackSizeQuantity, medicineAfter.PackSizeQuantity)
	}
	if medicineAfter.IssueUnitQuantity != medicineBefore.IssueUnitQuantity {
		t.Errorf("round-trip changed issue stock: %d -> %d", medicineBefore.IssueUnitQuantity, medicineAfter.IssueUnitQuantity)
	}

	// second delivery closes the order
	_, err = models.CreatePurchase(ctx, order.ID, &models.NewPurchase{
		PurchasedPackSizeQuantity: 30,
		PricePerPackSize:          decimal.RequireFromString("100"),
		IssueUnitPerPackSize:      10,
		ExpiryDate:                expiry,
	})
	if err != nil {
		t.Fatalf("second CreatePurchase: %v", err)
	}
	order, _ = models.GetOrder(ctx, order.ID)
	if order.Status != models.OrderStatusDelivered {
		t.Fatalf("order status = %s, want DELIVERED", order.Status)
	}

	// over-supply on a closed order is refused
	_, err = models.CreatePurchase(ctx, order.ID, &models.NewPurchase{
		PurchasedPackSizeQuantity: 1,
		PricePerPackSize:          decimal.RequireFromString("100"),
		IssueUnitPerPackSize:      10,
		ExpiryDate:                expiry,
	})
	if utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("delivery on closed order: kind = %v, want KindForbidden", utils.KindOf(err))
	}

	// once the order is DELIVERED its purchases are history: edits are
	// refused and the order stays closed
	_, err = models.UpdatePurchase(ctx, purchase.ID, &models.UpdatePurchaseInput{
		PurchasedPackSizeQuantity: &quantity,
	})
	if utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("edit on delivered order: kind = %v, want KindForbidden", utils.KindOf(err))
	}
	order, _ = models.GetOrder(ctx, order.ID)
	if order.Status != models.OrderStatusDelivered || order.OrderQuantity != 0 {
		t.Fatalf("refused edit mutated order: qty=%d status=%s, want 0/DELIVERED", order.OrderQuantity, order.Status)
	}

	// back-to-back reconciliations on the same medicine must not block
	// on a stale advisory lock from the committed transactions above
	done := make(chan error, 1)
	go func() {
		quantity := 25
		_, err := models.UpdatePurchase(ctx, purchase.ID, &models.UpdatePurchaseInput{
			PurchasedPackSizeQuantity: &quantity,
		})
		done <- err
	}()
	select {
	case err := <-done:
		if utils.KindOf(err) != utils.KindForbidden {
			t.Fatalf("follow-up edit: kind = %v, want KindForbidden", utils.KindOf(err))
		}
	case <-time.After(20 * time.Second):
		t.Fatal("reconciliation blocked; advisory lock leaked past commit")
	}
}

func TestSaleLifecycle(t *testing.T) {
	ctx := setupIntegration(t)

	medicine, err := models.CreateMedicine(ctx, &models.NewMedicine{
		Name:             "Ibuprofen",
		DoseForm:         models.DoseFormTablet,
		Strength:         "200mg",
		LevelOfUse:       1,
		TherapeuticClass: "NSAID",
	})
	if err != nil {
		t.Fatalf("CreateMedicine: %v", err)
	}
	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Beta Pharma"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Walk-in"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	order, err := models.CreateOrder(ctx, &models.NewOrder{
		MedicineId:    medicine.ID,
		SupplierId:    supplier.ID,
		OrderQuantity: 20,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	_, err = models.CreatePurchase(ctx, order.ID, &models.NewPurchase{
		PurchasedPackSizeQuantity: 20,
		PricePerPackSize:          decimal.RequireFromString("100"),
		IssueUnitPerPackSize:      10,
		ExpiryDate:                time.Now().AddDate(0, 6, 0),
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	sales, err := models.CreateSales(ctx, []*models.NewSale{
		{MedicineId: medicine.ID, CustomerId: customer.ID, IssueUnitQuantity: 5},
	})
	if err != nil {
		t.Fatalf("CreateSales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("len(sales) = %d, want 1", len(sales))
	}
	// selling price is 140/10 = 14 per issue unit
	if !sales[0].TotalPrice.Equal(decimal.RequireFromString("70")) {
		t.Errorf("TotalPrice = %s, want 70", sales[0].TotalPrice)
	}

	medicine, _ = models.GetMedicine(ctx, medicine.ID)
	if medicine.IssueUnitQuantity != 195 || medicine.PackSizeQuantity != 19 {
		t.Fatalf("ledger after sale: issue=%d pack=%d, want 195/19", medicine.IssueUnitQuantity, medicine.PackSizeQuantity)
	}

	// batch failure rolls the whole batch back
	_, err = models.CreateSales(ctx, []*models.NewSale{
		{MedicineId: medicine.ID, CustomerId: customer.ID, IssueUnitQuantity: 5},
		{MedicineId: medicine.ID, CustomerId: customer.ID, IssueUnitQuantity: 500},
	})
	if utils.KindOf(err) != utils.KindForbidden {
		t.Fatalf("over-draw batch: kind = %v, want KindForbidden", utils.KindOf(err))
	}
	medicine, _ = models.GetMedicine(ctx, medicine.ID)
	if medicine.IssueUnitQuantity != 195 {
		t.Fatalf("failed batch leaked a deduction: issue=%d, want 195", medicine.IssueUnitQuantity)
	}

	// cancellation returns stock
	_, err = models.RemoveSale(ctx, sales[0].ID)
	if err != nil {
		t.Fatalf("RemoveSale: %v", err)
	}
	medicine, _ = models.GetMedicine(ctx, medicine.ID)
	if medicine.IssueUnitQuantity != 200 {
		t.Fatalf("cancel did not restore stock: issue=%d, want 200", medicine.IssueUnitQuantity)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pharmacy-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("pharmacy-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=pharmacy_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
