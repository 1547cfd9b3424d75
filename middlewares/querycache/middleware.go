package querycache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gotomicro/ekit/slice"

	"github.com/coderi421/orm"
)

// MiddlewareBuilder 查询结果缓存
// 只拦截 SELECT，命中缓存就不会往下走真正的查询
// 写语句不经过这里，缓存一致性由过期时间兜底
type MiddlewareBuilder struct {
	store      Store
	expiration time.Duration
}

func NewMiddlewareBuilder(store Store) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		store:      store,
		expiration: time.Minute,
	}
}

// Expiration 设置缓存的过期时间
func (m *MiddlewareBuilder) Expiration(expiration time.Duration) *MiddlewareBuilder {
	m.expiration = expiration
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			if qc.Type != "SELECT" {
				return next(ctx, qc)
			}

			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}
			key := cacheKey(qc, q)

			if val, err := m.store.Get(ctx, key, qc.Model.Typ); err == nil {
				return &orm.QueryResult{
					Result: val,
				}
			}

			res := next(ctx, qc)
			if res.Err == nil && res.Result != nil {
				// 写缓存失败不影响查询结果
				_ = m.store.Set(ctx, key, res.Result, m.expiration)
			}
			return res
		}
	}
}

// cacheKey SQL 加上参数才能唯一确定一条查询
// Get 和 GetMulti 的 SQL 可能一模一样，但是结果形态不同，
// 一个存的是 *T 一个存的是 []*T，所以 key 还要带上查询的形态
func cacheKey(qc *orm.QueryContext, q *orm.Query) string {
	shape := "get"
	if qc.Multi {
		shape = "multi"
	}
	args := slice.Map(q.Args, func(idx int, src any) string {
		return fmt.Sprintf("%v", src)
	})
	return shape + "|" + q.SQL + "|" + strings.Join(args, ",")
}
