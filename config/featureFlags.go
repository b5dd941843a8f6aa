package config

import (
	"os"
	"strings"
)

// Policy switches for behaviors the source system left inconsistent.
// Defaults preserve the source's latest behavior unless stated.

// RestoreStockOnSaleCancel reports whether cancelling (removing) a sale
// returns its issue units to the medicine ledger. Default on, matching
// the update path's cancellation semantics.
// Env: SALE_CANCEL_RESTORES_STOCK=0 to disable.
func RestoreStockOnSaleCancel() bool {
	return !envDisabled("SALE_CANCEL_RESTORES_STOCK")
}

// ReverseLedgerOnPurchaseDelete reports whether soft-deleting a
// purchase reverses its order and ledger effects. The source never
// reversed on delete, so the default is off.
// Env: PURCHASE_DELETE_REVERSES_LEDGER=1 to enable.
func ReverseLedgerOnPurchaseDelete() bool {
	return envEnabled("PURCHASE_DELETE_REVERSES_LEDGER")
}

func envEnabled(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}

func envDisabled(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "0" || strings.EqualFold(v, "false")
}
