package orm

import (
	"context"

	"github.com/coderi421/orm/internal/errs"
)

// Selector represents a query selector that allows building SQL SELECT statements.
// It holds the necessary information to construct the query.
type Selector[T any] struct {
	// select delete update insert 都需要使用
	builder

	table  TableReference // table is the table reference to select from.
	where  []Predicate    // where holds the WHERE predicates for the query.
	having []Predicate

	sess    Session // sess is the DB or Tx used for executing the query.
	columns []Selectable
	groupBy []Column
	orderBy []OrderBy
	offset  int
	limit   int
}

// NewSelector creates a new instance of Selector.
func NewSelector[T any](sess Session) *Selector[T] {
	c := sess.getCore()
	return &Selector[T]{
		sess: sess,
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
	}
}

// Select 检索指定 column
func (s *Selector[T]) Select(cols ...Selectable) *Selector[T] {
	s.columns = cols
	return s
}

// From sets the table reference for the selector.
// It returns the updated selector.
func (s *Selector[T]) From(tbl TableReference) *Selector[T] {
	s.table = tbl
	return s
}

// Build generates a SQL query for selecting all columns from a table.
// It returns the generated query as a *Query struct or an error if there was any.
func (s *Selector[T]) Build() (*Query, error) {
	var (
		t   T
		err error
	)

	// Build 可能被中间件和最终的 handler 各调用一次，先清掉上一次的状态
	s.reset()

	s.model, err = s.r.Get(&t)
	if err != nil {
		return nil, err
	}

	// 先扫一遍所有会出现列的地方，把关联路径注册成 JOIN
	// FROM 在 WHERE 之前写入，只能先扫
	if err = s.resolveRelations(); err != nil {
		return nil, err
	}

	s.sb.WriteString("SELECT ")
	if err = s.buildColumns(); err != nil {
		return nil, err
	}
	s.sb.WriteString(" FROM ")

	if err = s.buildTable(s.table); err != nil {
		return nil, err
	}
	s.buildRelJoins()

	// construct where
	if len(s.where) > 0 {
		// 类似这种可有可无的部分，都要在前面加一个空格
		// 没有将 s.sb.WriteString(" WHERE ") 也放到 buildPredicates 中 是应为可能有 HAVING 的情况
		s.sb.WriteString(" WHERE ")
		// 取出第一个作为开始的节点
		// 构造 谓语相关逻辑
		if err = s.buildPredicates(s.where); err != nil {
			return nil, err
		}
	}

	// 分组
	if len(s.groupBy) > 0 {
		s.sb.WriteString(" GROUP BY ")
		for i, c := range s.groupBy {
			if i > 0 {
				s.sb.WriteByte(',')
			}
			if err = s.buildColumn(c); err != nil {
				return nil, err
			}
		}
	}

	// 筛选
	if len(s.having) > 0 {
		s.sb.WriteString(" HAVING ")
		if err = s.buildPredicates(s.having); err != nil {
			return nil, err
		}
	}

	// 排序
	if len(s.orderBy) > 0 {
		s.sb.WriteString(" ORDER BY ")
		if err = s.buildOrderBy(); err != nil {
			return nil, err
		}
	}

	// 分页
	if s.limit > 0 {
		s.sb.WriteString(" LIMIT ?")
		// 将 数值 作为参数追加进去
		s.addArgs(s.limit)
	}

	// 偏移量
	if s.offset > 0 {
		s.sb.WriteString(" OFFSET ?")
		// 将 数值 作为参数追加进去
		s.addArgs(s.offset)
	}

	s.sb.WriteString(";")

	return &Query{
		SQL:  s.sb.String(),
		Args: s.args,
	}, nil
}

// resolveRelations 把各个子句里面的关联路径都注册成 JOIN
func (s *Selector[T]) resolveRelations() error {
	for _, c := range s.columns {
		if expr, ok := c.(Expression); ok {
			if err := s.resolveExpr(expr); err != nil {
				return err
			}
		}
	}
	if err := s.resolveJoins(s.where); err != nil {
		return err
	}
	for _, c := range s.groupBy {
		if err := s.resolveExpr(c); err != nil {
			return err
		}
	}
	if err := s.resolveJoins(s.having); err != nil {
		return err
	}
	for _, ob := range s.orderBy {
		if err := s.resolveExpr(Column{name: ob.col}); err != nil {
			return err
		}
	}

	// 关联 JOIN 挂在根表上，FROM 已经是显式 JOIN 的时候两者没法混用
	if len(s.relOrder) > 0 {
		if _, ok := s.table.(Join); ok {
			return errs.NewErrUnsupportedRelationPath(s.relOrder[0].path)
		}
	}
	return nil
}

func (s *Selector[T]) buildColumns() error {
	if len(s.columns) == 0 {
		s.sb.WriteByte('*')
		return nil
	}

	for i, c := range s.columns {
		if i > 0 {
			s.sb.WriteByte(',')
		}

		switch val := c.(type) {
		case Column:
			if err := s.buildSelectedColumn(val); err != nil {
				return err
			}
		case Aggregate:
			if err := s.buildAggregate(val, true); err != nil {
				return err
			}
		case RawExpr:
			s.sb.WriteString(val.raw)
			if len(val.args) != 0 {
				s.addArgs(val.args...)
			}
		default:
			return errs.NewErrUnsupportedSelectable(c)
		}
	}

	return nil
}

func (s *Selector[T]) buildSelectedColumn(c Column) error {
	if err := s.buildColumn(c); err != nil {
		return err
	}
	// 有的时候不需要拼接别名
	s.buildAs(c.alias)
	return nil
}

func (s *Selector[T]) buildOrderBy() error {
	for i, ob := range s.orderBy {
		if i > 0 {
			s.sb.WriteByte(',')
		}

		err := s.buildColumn(Column{name: ob.col})
		if err != nil {
			return err
		}
		s.sb.WriteByte(' ')
		s.sb.WriteString(ob.order)
	}
	return nil
}

// Where 用于构造 WHERE 查询条件。如果 ps 长度为 0，那么不会构造 WHERE 部分
func (s *Selector[T]) Where(ps ...Predicate) *Selector[T] {
	// Set the WHERE conditions
	s.where = ps
	return s
}

// Spec 把 Spec 里面积累的查询条件应用到当前查询上
// 条件追加到 WHERE 里面，Spec 记录的 JOIN 类型也一并带过来
func (s *Selector[T]) Spec(sp *Spec[T]) *Selector[T] {
	if sp == nil {
		return s
	}
	s.where = append(s.where, sp.preds...)
	if len(sp.joinTypes) > 0 {
		if s.joinTypes == nil {
			s.joinTypes = make(map[string]string, len(sp.joinTypes))
		}
		for path, typ := range sp.joinTypes {
			s.joinTypes[path] = typ
		}
	}
	return s
}

func (s *Selector[T]) GroupBy(cols ...Column) *Selector[T] {
	s.groupBy = cols
	return s
}

func (s *Selector[T]) Having(ps ...Predicate) *Selector[T] {
	s.having = ps
	return s
}

func (s *Selector[T]) Offset(offset int) *Selector[T] {
	s.offset = offset
	return s
}

func (s *Selector[T]) Limit(limit int) *Selector[T] {
	s.limit = limit
	return s
}

func (s *Selector[T]) OrderBy(orderBys ...OrderBy) *Selector[T] {
	s.orderBy = orderBys
	return s
}

// Get 根据拼接成的 sql 文，到 db 中获取数据
func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	var err error
	// 获取 model，在中间件中要用
	s.model, err = s.r.Get(new(T))
	if err != nil {
		return nil, err
	}

	res := get[T](ctx, s.sess, s.core, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	})

	if res.Result != nil {
		return res.Result.(*T), res.Err
	}
	return nil, res.Err
}

func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	var err error
	s.model, err = s.r.Get(new(T))
	if err != nil {
		return nil, err
	}

	res := getMulti[T](ctx, s.sess, s.core, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
		Multi:   true,
	})

	if res.Result != nil {
		return res.Result.([]*T), res.Err
	}
	return nil, res.Err
}

// Selectable 暂时没什么作用只是用作标记，可检索指定字段的标记
// 让结构体实现这个接口，就可以传入
// 使用接口为的是：让 聚合函数， columns， 以及 RawExpr（原生sql） 都能作为参数传入统一个函数，做统一处理
type Selectable interface {
	selectable()
}

type OrderBy struct {
	col   string
	order string
}

func ASC(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "ASC",
	}
}

func Desc(col string) OrderBy {
	return OrderBy{
		col:   col,
		order: "DESC",
	}
}
