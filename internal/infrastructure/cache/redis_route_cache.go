package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/domain/model"
	"ProvinceMap-App/internal/domain/repository"
)

// OpenRedis はアドレスが設定されていればRedisクライアントを作成する（未設定ならnil）
func OpenRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// HitObserver はキャッシュのヒット・ミスを受け取る
type HitObserver interface {
	ObserveRouteCache(hit bool)
}

// RouteCache はルーティングサービスの前段に置くRedisキャッシュ。
// Redisの障害時はキャッシュ無しとして振る舞う
type RouteCache struct {
	client   *redis.Client
	next     repository.RouteProvider
	ttl      time.Duration
	observer HitObserver
	log      zerolog.Logger
}

// NewRouteCache は新しいRouteCacheを作成する
func NewRouteCache(client *redis.Client, next repository.RouteProvider, ttl time.Duration, observer HitObserver, log zerolog.Logger) *RouteCache {
	return &RouteCache{client: client, next: next, ttl: ttl, observer: observer, log: log}
}

// GetDrivingRoute はキャッシュを確認し、無ければ次のプロバイダから取得して保存する
func (c *RouteCache) GetDrivingRoute(ctx context.Context, from, to model.LatLng) (*model.RouteResult, error) {
	key := RouteKey(from, to)

	if cached, err := c.lookup(ctx, key); err == nil {
		c.observe(true)
		return cached, nil
	} else if !errors.Is(err, redis.Nil) {
		c.log.Debug().Err(err).Str("key", key).Msg("経路キャッシュの読み込みに失敗")
	}
	c.observe(false)

	route, err := c.next.GetDrivingRoute(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(route); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.Debug().Err(err).Str("key", key).Msg("経路キャッシュの保存に失敗")
		}
	}
	return route, nil
}

func (c *RouteCache) lookup(ctx context.Context, key string) (*model.RouteResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var route model.RouteResult
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("キャッシュデータのパースに失敗: %w", err)
	}
	return &route, nil
}

func (c *RouteCache) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveRouteCache(hit)
	}
}

// RouteKey は座標を小数点以下5桁（約1m）に丸めたキャッシュキー
func RouteKey(from, to model.LatLng) string {
	return fmt.Sprintf("route:driving:%.5f,%.5f;%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
}
