package orm

import (
	"context"
	"database/sql"

	"github.com/coderi421/orm/internal/errs"
)

type Updater[T any] struct {
	builder
	sess    Session
	assigns []Assignable // 由于处理 name=zheng
	val     *T           // 更新用的结构体
	where   []Predicate
}

func NewUpdater[T any](sess Session) *Updater[T] {
	c := sess.getCore()
	return &Updater[T]{
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
		sess: sess,
	}
}

func (u *Updater[T]) Update(t *T) *Updater[T] {
	u.val = t
	return u
}

func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

func (u *Updater[T]) Where(ps ...Predicate) *Updater[T] {
	u.where = ps
	return u
}

// Spec 把 Spec 里面积累的查询条件应用到 UPDATE 上
// UPDATE 没有 JOIN，条件里带关联路径会在 Build 的时候报错
func (u *Updater[T]) Spec(sp *Spec[T]) *Updater[T] {
	if sp == nil {
		return u
	}
	u.where = append(u.where, sp.preds...)
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	if len(u.assigns) == 0 {
		return nil, errs.ErrNoUpdatedColumns
	}

	var (
		err error
		t   T
	)

	u.reset()

	// 创建映射实体类
	u.model, err = u.r.Get(&t)
	if err != nil {
		return nil, err
	}

	if u.val == nil {
		u.val = &t
	}

	u.sb.WriteString("UPDATE ")
	u.quote(u.model.TableName)
	u.sb.WriteString(" SET ")
	val := u.creator(u.val, u.model)
	for i, a := range u.assigns {
		if i > 0 {
			u.sb.WriteByte(',')
		}
		switch assign := a.(type) {
		case Column:
			if err = u.buildColumn(Column{name: assign.name}); err != nil {
				return nil, err
			}
			u.sb.WriteString("=?")
			var arg any
			arg, err = val.Field(assign.name)
			if err != nil {
				return nil, err
			}
			u.addArgs(arg)
		case Assignment:
			if err = u.buildAssignment(assign); err != nil {
				return nil, err
			}
		default:
			return nil, errs.NewErrUnsupportedAssignableType(a)
		}
	}
	if len(u.where) > 0 {
		u.sb.WriteString(" WHERE ")
		if err = u.buildPredicates(u.where); err != nil {
			return nil, err
		}
	}
	u.sb.WriteByte(';')
	return &Query{
		SQL:  u.sb.String(),
		Args: u.args,
	}, nil
}

func (u *Updater[T]) buildAssignment(assign Assignment) error {
	if err := u.buildColumn(Column{name: assign.column}); err != nil {
		return err
	}
	u.sb.WriteByte('=')
	return u.buildExpression(assign.val)
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	m, err := u.r.Get(new(T))
	if err != nil {
		return Result{err: err}
	}

	res := exec(ctx, u.sess, u.core, &QueryContext{
		Type:    "UPDATE",
		Builder: u,
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
