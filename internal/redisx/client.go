package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// GetJSON: found=false kalau key tidak ada (bukan error).
func GetJSON(ctx context.Context, rdb *redis.Client, key string, out any) (found bool, err error) {
	b, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// Claim menandai key sekali saja (SET NX). false = sudah pernah di-claim.
func Claim(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, "1", ttl).Result()
}

func ProjectionKeys(names ...string) []string {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, fmt.Sprintf(KeyProjection, n))
	}
	return keys
}

// Generation dibaca SEBELUM load dari DB, lalu dioper ke FillIfCurrent.
func Generation(ctx context.Context, rdb *redis.Client, name string) (int64, error) {
	n, err := rdb.Get(ctx, fmt.Sprintf(KeyProjectionGen, name)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// FillIfCurrent menyimpan projection hanya kalau generasinya belum berubah sejak gen dibaca.
// filled=false berarti ada invalidate di tengah jalan dan snapshot dibuang.
func FillIfCurrent(ctx context.Context, rdb *redis.Client, name string, gen int64, v any, ttl time.Duration) (filled bool, err error) {
	b, err := json.Marshal(v)
	if err != nil {
		return false, err
	}
	genKey := fmt.Sprintf(KeyProjectionGen, name)
	err = rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, fmt.Sprintf(KeyProjection, name), b, ttl)
			return nil
		})
		if err == nil {
			filled = true
		}
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		// gen berubah antara WATCH dan EXEC
		return false, nil
	}
	return filled, err
}

// Invalidate menghapus cache dan menaikkan generasi, jadi fill yang sedang jalan tidak menulis snapshot lama.
func Invalidate(ctx context.Context, rdb *redis.Client, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, ProjectionKeys(names...)...)
		for _, n := range names {
			p.Incr(ctx, fmt.Sprintf(KeyProjectionGen, n))
		}
		return nil
	})
	return err
}
