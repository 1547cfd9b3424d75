package orm

import (
	"context"
	"database/sql"
)

type Deleter[T any] struct {
	builder

	table string
	where []Predicate
	sess  Session
}

// NewDeleter creates a new instance of Deleter.
func NewDeleter[T any](sess Session) *Deleter[T] {
	c := sess.getCore()
	return &Deleter[T]{
		sess: sess,
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
	}
}

// Build generates a DELETE query based on the provided parameters.
// It returns the generated query string and any associated arguments,
// or an error if there was a problem building the query.
func (d *Deleter[T]) Build() (*Query, error) {
	var (
		t   T
		err error
	)

	d.reset()

	// 从缓存中读取model
	d.model, err = d.r.Get(&t)
	if err != nil {
		return nil, err
	}

	_, _ = d.sb.WriteString("DELETE FROM ")

	// If the table name is not provided, use the name of the T struct.
	if d.table == "" {
		d.quote(d.model.TableName)
	} else {
		d.sb.WriteString(d.table)
	}

	// If there are any WHERE clauses, add them to the query.
	if len(d.where) > 0 {
		d.sb.WriteString(" WHERE ")
		err = d.buildPredicates(d.where)
		if err != nil {
			return nil, err
		}
	}

	d.sb.WriteByte(';')
	return &Query{
		SQL:  d.sb.String(),
		Args: d.args,
	}, nil
}

// From sets the table for the Deleter and returns a pointer to the Deleter.
// The table parameter specifies the name of the table to delete from.
func (d *Deleter[T]) From(table string) *Deleter[T] {
	d.table = table
	return d
}

// Where accepts predicates and adds them to the Deleter's where clause.
func (d *Deleter[T]) Where(predicates ...Predicate) *Deleter[T] {
	d.where = predicates
	return d
}

// Spec 把 Spec 里面积累的查询条件应用到 DELETE 上
// DELETE 没有 JOIN，条件里带关联路径会在 Build 的时候报错
func (d *Deleter[T]) Spec(sp *Spec[T]) *Deleter[T] {
	if sp == nil {
		return d
	}
	d.where = append(d.where, sp.preds...)
	return d
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	m, err := d.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}

	res := exec(ctx, d.sess, d.core, &QueryContext{
		Type:    "DELETE",
		Builder: d,
		Model:   m,
	})

	var sqlRes sql.Result
	if res.Result != nil {
		sqlRes = res.Result.(sql.Result)
	}
	return Result{
		err: res.Err,
		res: sqlRes,
	}
}
