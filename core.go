package orm

import (
	"context"

	"github.com/coderi421/orm/internal/valuer"
	"github.com/coderi421/orm/model"
)

type core struct {
	dialect Dialect
	r       model.Registry // 存储数据库表和 struct 映射关系的实例
	creator valuer.Creator // 与DB交互映射的实现
	mdls    []Middleware
}

// get 查询单条数据的主流程，在最里面的 handler 外面套上所有中间件
func get[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getHandler[T](ctx, sess, c, qc)
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root(ctx, qc)
}

func getHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}

	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: err}
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return &QueryResult{Err: ErrNoRows}
	}

	// 创建与 db table 对应的 *struct
	tp := new(T)
	// 使用存在映射关系的实体 val，将 rows 中的数据映射到 *struct[T] 中
	val := c.creator(tp, qc.Model)
	err = val.SetColumns(rows)
	return &QueryResult{Result: tp, Err: err}
}

func getMulti[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return getMultiHandler[T](ctx, sess, c, qc)
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root(ctx, qc)
}

func getMultiHandler[T any](ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	q, err := qc.Builder.Build()
	if err != nil {
		return &QueryResult{Err: err}
	}

	rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
	if err != nil {
		return &QueryResult{Err: err}
	}
	defer func() { _ = rows.Close() }()

	var res []*T
	for rows.Next() {
		tp := new(T)
		val := c.creator(tp, qc.Model)
		if err = val.SetColumns(rows); err != nil {
			return &QueryResult{Err: err}
		}
		res = append(res, tp)
	}
	return &QueryResult{Result: res, Err: rows.Err()}
}

// exec 执行写语句的主流程，同样套上所有中间件
func exec(ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		q, err := qc.Builder.Build()
		if err != nil {
			return &QueryResult{Err: err}
		}
		res, err := sess.execContext(ctx, q.SQL, q.Args...)
		return &QueryResult{Result: res, Err: err}
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root(ctx, qc)
}
