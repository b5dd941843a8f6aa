package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pharmacy_backend/config"
	"github.com/bsm/redislock"
	"gorm.io/gorm"
)

// Reconciliations serialize per medicine and per order across
// instances using MySQL advisory locks. A best-effort redis lock in
// front keeps most contention off the database.
// NOTE: GET_LOCK is connection-scoped and survives commit, so these
// must be taken on the same *gorm.DB transaction that performs the
// reconciliation AND released while that transaction is still open.
// RELEASE_LOCK on a finished tx never reaches the server and the lock
// stays held on the pooled connection.

const lockWaitSeconds = 30

// AcquireReconcileLock takes the medicine lock, then the order lock
// when an order id is given. Always in that fixed sequence so two
// competing reconciliations cannot deadlock each other.
func AcquireReconcileLock(ctx context.Context, tx *gorm.DB, medicineId string, orderId string) (release func(), err error) {
	redisRelease := acquireRedisFence(ctx, medicineId)

	names := []string{fmt.Sprintf("reconcile:medicine:%s", medicineId)}
	if orderId != "" {
		names = append(names, fmt.Sprintf("reconcile:order:%s", orderId))
	}

	var held []string
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			releaseNamedLock(tx, held[i])
		}
		redisRelease()
	}

	for _, name := range names {
		if err := acquireNamedLock(tx, name); err != nil {
			releaseAll()
			return nil, err
		}
		held = append(held, name)
	}
	return releaseAll, nil
}

func acquireNamedLock(tx *gorm.DB, name string) error {
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, ?)", name, lockWaitSeconds).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire lock %s", name)
	}
	return nil
}

func releaseNamedLock(tx *gorm.DB, name string) {
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", name).Scan(&_ok).Error
}

// acquireRedisFence obtains a short redis lock on the medicine when a
// redis client is configured. Failure to obtain it is not fatal; the
// database lock is the real gate.
func acquireRedisFence(ctx context.Context, medicineId string) func() {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}
	}

	lock, err := locker.Obtain(ctx, "reconcile:fence:"+medicineId, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		return func() {}
	}
	return func() {
		_ = lock.Release(ctx)
	}
}
