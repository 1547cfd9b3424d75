package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	cache "github.com/patrickmn/go-cache"
	redis "github.com/redis/go-redis/v9"
)

// ErrKeyNotFound 代表缓存里没有这条查询的结果
var ErrKeyNotFound = errors.New("querycache: key 不存在")

// Store 缓存的存储抽象
// typ 是结果的结构体类型，分布式实现反序列化的时候需要它来还原类型
type Store interface {
	Get(ctx context.Context, key string, typ reflect.Type) (any, error)
	Set(ctx context.Context, key string, val any, expiration time.Duration) error
}

// MemoryStore 基于内存缓存的实现
// 结果直接原样存取，不需要序列化
type MemoryStore struct {
	c          *cache.Cache
	expiration time.Duration
}

// NewMemoryStore creates a new MemoryStore instance.
// The expiration parameter specifies the duration for which the cached values
func NewMemoryStore(expiration time.Duration) *MemoryStore {
	return &MemoryStore{
		c:          cache.New(expiration, time.Second),
		expiration: expiration,
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string, typ reflect.Type) (any, error) {
	val, ok := s.c.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	s.c.Set(key, val, expiration)
	return nil
}

// RedisStoreOption is a function type for configuring a RedisStore.
type RedisStoreOption func(store *RedisStore)

// RedisStore 基于 redis 的实现，结果用 JSON 序列化
// 多个实例之间可以共享缓存
type RedisStore struct {
	prefix string // redis 中 key 的前缀
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable, opts ...RedisStoreOption) *RedisStore {
	res := &RedisStore{
		client: client,
		prefix: "querycache",
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// WithPrefix 设置 redis 中 key 的前缀
func WithPrefix(prefix string) RedisStoreOption {
	return func(store *RedisStore) {
		store.prefix = prefix
	}
}

// key generates a unique key for the given ID by combining it with the store's prefix.
func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s_%s", s.prefix, key)
}

func (s *RedisStore) Get(ctx context.Context, key string, typ reflect.Type) (any, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}

	// GetMulti 缓存的是切片，JSON 的第一个字节能区分开两种形态
	if len(data) > 0 && data[0] == '[' {
		res := reflect.New(reflect.SliceOf(reflect.PtrTo(typ)))
		if err = json.Unmarshal(data, res.Interface()); err != nil {
			return nil, err
		}
		return res.Elem().Interface(), nil
	}

	res := reflect.New(typ)
	if err = json.Unmarshal(data, res.Interface()); err != nil {
		return nil, err
	}
	return res.Interface(), nil
}

func (s *RedisStore) Set(ctx context.Context, key string, val any, expiration time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), data, expiration).Err()
}
