package orm

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/coderi421/orm/internal/errs"
	"github.com/coderi421/orm/model"
)

type builder struct {
	core
	sb     strings.Builder // sb is used to build the SQL query string.
	args   []any           // args holds the arguments for the query.
	model  *model.Model    // model is the model associated with the statement.
	quoter byte

	// relJoins 关联路径的 JOIN 备忘录，key 是 "Orders" 或者 "Orders.Items" 这种路径
	// 同一条语句里面，同一个路径只会 JOIN 一次
	relJoins map[string]*relJoin
	// relOrder 按照注册顺序排列的 JOIN，拼接 FROM 的时候要保证顺序稳定
	relOrder []*relJoin
	// joinTypes Spec 记录下来的 JOIN 类型，没有记录的路径默认 INNER JOIN
	joinTypes map[string]string
}

// relJoin 一个已经解析完的关联 JOIN
type relJoin struct {
	path  string
	alias string
	typ   string
	owner *relJoin // nil 代表挂在根表上
	rel   *model.Relation
	model *model.Model
}

// reset 清掉上一次 Build 留下的状态
// 中间件和最终的 handler 可能会各自调用一次 Build
func (b *builder) reset() {
	b.sb.Reset()
	b.args = nil
	b.relJoins = nil
	b.relOrder = nil
}

func (b *builder) quote(name string) {
	b.sb.WriteByte(b.quoter)
	b.sb.WriteString(name)
	b.sb.WriteByte(b.quoter)
}

// buildPredicates builds the predicates for the given list of predicates.
func (b *builder) buildPredicates(ps []Predicate) error {
	// Take the first predicate as the starting node.
	p := ps[0]

	// Iterate through the remaining predicates.
	for i := 1; i < len(ps); i++ {
		// Merge multiple predicates using the `And` method.
		p = p.And(ps[i])
	}

	// Recursively process the where statement.
	if err := b.buildExpression(p); err != nil {
		return err
	}
	return nil
}

// buildExpression builds the SQL query for the given expression.
// It takes an expression as input and recursively constructs the SQL query.
// The SQL query is stored in the builder's string buffer (b.sb).
// The argument values are stored in the builder's argument list (b.args).
func (b *builder) buildExpression(e Expression) error {
	// Column 代表是列名，直接拼接列名
	// value 代表参数，加入参数列表
	// Predicate 代表一个查询条件：
	// 如果左边是一个 Predicate，那么加上括号
	// 递归构造左边
	// 构造操作符
	// 如果右边是一个 Predicate，那么加上括号
	if e == nil {
		return nil
	}

	switch expr := e.(type) {
	case Column:
		// Append column name to the SQL query
		return b.buildColumn(expr)
	case Aggregate:
		return b.buildAggregate(expr, false)
	case value:
		// Append placeholder to the SQL query and add value to the argument list
		b.sb.WriteByte('?')
		b.addArgs(expr.val)
	case valueList:
		// IN (?,?,?)
		if len(expr.vals) == 0 {
			return errs.ErrEmptyInList
		}
		b.sb.WriteByte('(')
		for i, val := range expr.vals {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			b.sb.WriteByte('?')
			b.addArgs(val)
		}
		b.sb.WriteByte(')')
	case valueRange:
		// BETWEEN ? AND ?
		b.sb.WriteString("? AND ?")
		b.addArgs(expr.start, expr.end)
	case lowered:
		b.sb.WriteString("LOWER(")
		if err := b.buildExpression(expr.arg); err != nil {
			return err
		}
		b.sb.WriteByte(')')
	case RawExpr:
		// 执行原生 sql 语句
		b.sb.WriteString(expr.raw)
		if len(expr.args) != 0 {
			b.addArgs(expr.args...)
		}
	case MathExpr:
		return b.buildBinaryExpr(binaryExpr(expr))
	case binaryExpr:
		return b.buildBinaryExpr(expr)
	case Predicate:
		// Build left expression
		// 如果左边有复杂结构，则在最外边套一层括号
		_, lp := expr.left.(Predicate)
		if lp {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(expr.left); err != nil {
			return err
		}
		if lp {
			b.sb.WriteByte(')')
		}

		if expr.op == "" {
			// 如果只有左边（op 符号为空，就不需要连接），例如执行原生 sql raw 的时候，就只有左边
			return nil
		}

		//处理运算符号
		// Append operator to the SQL query
		b.sb.WriteByte(' ')
		b.sb.WriteString(expr.op.String())
		b.sb.WriteByte(' ')

		// 处理右边的逻辑
		// Build right expression
		_, rp := expr.right.(Predicate)
		if rp {
			b.sb.WriteByte('(')
		}
		if err := b.buildExpression(expr.right); err != nil {
			return err
		}
		if rp {
			b.sb.WriteByte(')')
		}
	default:
		return errs.NewErrUnsupportedExpressionType(expr)
	}

	return nil
}

func (b *builder) buildBinaryExpr(e binaryExpr) error {
	if err := b.buildExpression(e.left); err != nil {
		return err
	}
	b.sb.WriteByte(' ')
	b.sb.WriteString(e.op.String())
	b.sb.WriteByte(' ')
	return b.buildExpression(e.right)
}

// buildColumn 解析一个列
// 有表引用的按照表引用解析，带 . 的按照关联路径解析，其余的用根模型解析
func (b *builder) buildColumn(c Column) error {
	if c.table == nil {
		return b.buildRootColumn(c)
	}
	switch tab := c.table.(type) {
	case Table:
		m, err := b.r.Get(tab.entity)
		if err != nil {
			return err
		}
		fd, ok := m.FieldMap[c.name]
		if !ok {
			return errs.NewErrUnknownField(c.name)
		}
		if tab.alias != "" {
			b.quote(tab.alias)
			b.sb.WriteByte('.')
		}
		b.quote(fd.ColName)
		return nil
	default:
		return errs.NewErrUnsupportedTable(c.table)
	}
}

func (b *builder) buildRootColumn(c Column) error {
	name := c.name
	if strings.TrimSpace(name) == "" {
		return errs.NewErrBlankField(name)
	}
	if strings.Contains(name, ".") {
		return b.buildPathColumn(name)
	}
	fd, ok := b.model.FieldMap[name]
	if !ok {
		return errs.NewErrUnknownField(name)
	}
	// 有关联 JOIN 的时候，根表的列也带上表名，避免同名列产生歧义
	if len(b.relOrder) > 0 {
		b.quote(b.model.TableName)
		b.sb.WriteByte('.')
	}
	b.quote(fd.ColName)
	return nil
}

// buildPathColumn 解析 "Orders.Status" 这样的关联路径列
// JOIN 必须已经通过 resolveJoins 注册过，DELETE 和 UPDATE 没有 JOIN，直接报错
func (b *builder) buildPathColumn(name string) error {
	idx := strings.LastIndexByte(name, '.')
	relPath, fdName := name[:idx], name[idx+1:]
	if strings.TrimSpace(fdName) == "" {
		return errs.NewErrBlankField(name)
	}
	j, ok := b.relJoins[relPath]
	if !ok {
		return errs.NewErrUnsupportedRelationPath(name)
	}
	fd, ok := j.model.FieldMap[fdName]
	if !ok {
		return errs.NewErrUnknownField(name)
	}
	b.quote(j.alias)
	b.sb.WriteByte('.')
	b.quote(fd.ColName)
	return nil
}

// resolveJoins 在拼接 FROM 之前先遍历一遍所有条件，
// 把其中的关联路径都注册成 JOIN
// FROM 在 WHERE 之前写入 sb，所以只能先扫一遍
func (b *builder) resolveJoins(ps []Predicate) error {
	for _, p := range ps {
		if err := b.resolveExpr(p); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolveExpr(e Expression) error {
	switch expr := e.(type) {
	case Column:
		if expr.table == nil && strings.Contains(expr.name, ".") {
			return b.registerPath(expr.name)
		}
	case Aggregate:
		if expr.table == nil && strings.Contains(expr.arg, ".") {
			return b.registerPath(expr.arg)
		}
	case lowered:
		return b.resolveExpr(expr.arg)
	case MathExpr:
		if err := b.resolveExpr(expr.left); err != nil {
			return err
		}
		return b.resolveExpr(expr.right)
	case Predicate:
		if expr.left != nil {
			if err := b.resolveExpr(expr.left); err != nil {
				return err
			}
		}
		if expr.right != nil {
			return b.resolveExpr(expr.right)
		}
	}
	return nil
}

// registerPath 逐段解析关联路径，没见过的段就插入一个新的 JOIN
// 这就是整个模块里唯一的一点簿记：同一个路径查一次、插一次
func (b *builder) registerPath(name string) error {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return nil
	}
	segs := strings.Split(name[:idx], ".")

	var owner *relJoin
	ownerModel := b.model
	var cur string
	for _, seg := range segs {
		if strings.TrimSpace(seg) == "" {
			return errs.NewErrBlankField(name)
		}
		if cur == "" {
			cur = seg
		} else {
			cur = cur + "." + seg
		}

		if j, ok := b.relJoins[cur]; ok {
			owner, ownerModel = j, j.model
			continue
		}

		rel, ok := ownerModel.RelationMap[seg]
		if !ok {
			return errs.NewErrUnknownRelation(seg)
		}
		rm, err := b.r.Get(reflect.New(rel.Typ).Interface())
		if err != nil {
			return err
		}
		typ := b.joinTypes[cur]
		if typ == "" {
			typ = "JOIN"
		}
		j := &relJoin{
			path:  cur,
			alias: fmt.Sprintf("t%d", len(b.relOrder)+1),
			typ:   typ,
			owner: owner,
			rel:   rel,
			model: rm,
		}
		if b.relJoins == nil {
			b.relJoins = make(map[string]*relJoin, 4)
		}
		b.relJoins[cur] = j
		b.relOrder = append(b.relOrder, j)
		owner, ownerModel = j, rm
	}
	return nil
}

// buildRelJoins 把注册好的关联 JOIN 拼到 FROM 后面
// ON 条件按照约定：关联表的外键列指向上一层的 refer 列
func (b *builder) buildRelJoins() {
	for _, j := range b.relOrder {
		b.sb.WriteByte(' ')
		b.sb.WriteString(j.typ)
		b.sb.WriteByte(' ')
		b.quote(j.model.TableName)
		b.sb.WriteString(" AS ")
		b.quote(j.alias)
		b.sb.WriteString(" ON ")
		b.quote(j.alias)
		b.sb.WriteByte('.')
		b.quote(j.rel.FK)
		b.sb.WriteString(" = ")
		if j.owner == nil {
			b.quote(b.model.TableName)
		} else {
			b.quote(j.owner.alias)
		}
		b.sb.WriteByte('.')
		b.quote(j.rel.Refer)
	}
}

// buildTable 处理 FROM 后面的部分，表、别名表或者显式 JOIN
func (b *builder) buildTable(table TableReference) error {
	switch tab := table.(type) {
	case nil:
		b.quote(b.model.TableName)
	case Table:
		m, err := b.r.Get(tab.entity)
		if err != nil {
			return err
		}
		b.quote(m.TableName)
		if tab.alias != "" {
			b.sb.WriteString(" AS ")
			b.quote(tab.alias)
		}
	case Join:
		return b.buildJoin(tab)
	default:
		return errs.NewErrUnsupportedTable(table)
	}
	return nil
}

func (b *builder) buildJoin(tab Join) error {
	b.sb.WriteByte('(')
	if err := b.buildTable(tab.left); err != nil {
		return err
	}
	b.sb.WriteByte(' ')
	b.sb.WriteString(tab.typ)
	b.sb.WriteByte(' ')
	if err := b.buildTable(tab.right); err != nil {
		return err
	}
	if len(tab.using) > 0 {
		b.sb.WriteString(" USING (")
		for i, col := range tab.using {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			// USING 的列两边表都有，借用根模型解析字段名
			if err := b.buildColumn(Column{name: col}); err != nil {
				return err
			}
		}
		b.sb.WriteByte(')')
	}
	if len(tab.on) > 0 {
		b.sb.WriteString(" ON ")
		if err := b.buildPredicates(tab.on); err != nil {
			return err
		}
	}
	b.sb.WriteByte(')')
	return nil
}

func (b *builder) buildAggregate(a Aggregate, useAlias bool) error {
	b.sb.WriteString(a.fn)
	b.sb.WriteByte('(')
	if err := b.buildColumn(Column{table: a.table, name: a.arg}); err != nil {
		return err
	}
	b.sb.WriteByte(')')
	if useAlias {
		b.buildAs(a.alias)
	}
	return nil
}

func (b *builder) buildAs(alias string) {
	if alias != "" {
		b.sb.WriteString(" AS ")
		b.quote(alias)
	}
}

func (b *builder) addArgs(args ...any) {
	if b.args == nil {
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, args...)
}
