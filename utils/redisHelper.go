package utils

import (
	"context"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/mmdatafocus/ledger_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func listKey[T any]() string {
	return GetTypeName[T]() + "List"
}

/* Redis */

// store the whole list, TypeList
func StoreRedisList[T any](ctx context.Context, list []T) error {
	return config.SetRedisObject(ctx, listKey[T](), list, GetCacheLifespan())
}

// retrieve the whole list, ok is false on a cache miss
func RetrieveRedisList[T any](ctx context.Context) (result []T, ok bool, err error) {
	ok, err = config.GetRedisObject(ctx, listKey[T](), &result)
	if err != nil || !ok {
		return nil, false, err
	}
	return result, true, nil
}

// clear list, TypeList
func RemoveRedisList[T any](ctx context.Context) error {
	return config.RemoveRedisKey(ctx, listKey[T]())
}
