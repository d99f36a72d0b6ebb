package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/ledger_backend/config"
)

const balanceLockTTL = 30 * time.Second

var ErrBalanceLocked = errors.New("customer balance is being updated, try again")

// lockCustomerBalances serializes balance writes for ids across instances.
// Without a redis connection it returns a no-op release.
func lockCustomerBalances(ctx context.Context, ids ...int64) (release func(), err error) {
	locker := config.GetRedisLock()
	if locker == nil || len(ids) == 0 {
		return func() {}, nil
	}
	logger := config.GetLogger()

	// fixed order so two writers never wait on each other
	ids = sortedUnique(ids)
	locks := make([]*redislock.Lock, 0, len(ids))
	release = func() {
		for _, lock := range locks {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				config.LogError(logger, "BalanceLock", "release", "release lock", lock.Key(), err)
			}
		}
	}

	for _, id := range ids {
		lockKey := fmt.Sprintf("lock:customer_balance:%d", id)
		lock, err := locker.Obtain(ctx, lockKey, balanceLockTTL, &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		})
		if errors.Is(err, redislock.ErrNotObtained) {
			config.LogError(logger, "BalanceLock", "obtain", "could not obtain lock for customer", id, err)
			release()
			return nil, ErrBalanceLocked
		} else if err != nil {
			config.LogError(logger, "BalanceLock", "obtain", "error obtaining lock for customer", id, err)
			release()
			return nil, err
		}
		locks = append(locks, lock)
	}
	return release, nil
}

func sortedUnique(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
