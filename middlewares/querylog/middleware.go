package querylog

import (
	"context"
	"log"

	"github.com/coderi421/orm"
)

type MiddlewareBuilder struct {
	logFunc func(sql string, args []any)
}

// LogFunc 这里如果需要配置的参数比较多，可以使用 函数选项模式
func (m *MiddlewareBuilder) LogFunc(fn func(sql string, args []any)) *MiddlewareBuilder {
	m.logFunc = fn
	return m
}

func (m *MiddlewareBuilder) Build() orm.Middleware {
	if m.logFunc == nil {
		m.logFunc = func(sql string, args []any) {
			log.Printf("sql: %s, args: %v", sql, args)
		}
	}
	return func(next orm.Handler) orm.Handler {
		return func(ctx context.Context, qc *orm.QueryContext) *orm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				return &orm.QueryResult{
					Err: err,
				}
			}

			m.logFunc(q.SQL, q.Args)

			return next(ctx, qc)
		}
	}
}
