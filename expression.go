package orm

// Expression 代表语句，或者语句的部分
// 暂时没想好怎么设计方法，所以直接做成标记接口
type Expression interface {
	expr()
}

// exprOf returns an Expression based on the input parameter.
func exprOf(e any) Expression {
	switch expr := e.(type) {
	// If the input parameter is already an Expression, return it as is.
	case Expression:
		return expr
	// If the input parameter is not an Expression, convert it to an Expression using the valueOf function.
	default:
		return valueOf(expr)
	}
}

// RawExpr 代表一个原生表达式
// 意味着 ORM 不会对它进行任何处理
type RawExpr struct {
	raw  string
	args []any
}

func (r RawExpr) selectable() {}

func (r RawExpr) expr() {}

func (r RawExpr) AsPredicate() Predicate {
	return Predicate{
		left: r,
	}
}

// Raw 创建一个 RawExpr
// 执行原生sql 语句
func Raw(expr string, args ...any) RawExpr {
	return RawExpr{
		raw:  expr,
		args: args,
	}
}

// valueList 代表 IN 和 NOT IN 后面的取值列表
// 拼接出来的形态是 (?,?,?)
type valueList struct {
	vals []any
}

func (valueList) expr() {}

// valueRange 代表 BETWEEN 两端的取值
// 拼接出来的形态是 ? AND ?
type valueRange struct {
	start any
	end   any
}

func (valueRange) expr() {}

// lowered 在表达式外面包一层 LOWER()
// 大小写不敏感的 LIKE 匹配会用到
type lowered struct {
	arg Expression
}

func (lowered) expr() {}

type binaryExpr struct {
	left  Expression
	op    op
	right Expression
}

// 实现功能接口 Expression
func (b binaryExpr) expr() {}

// MathExpr 为非导出 struct 创建类型
// update 过程中的计算方法
type MathExpr binaryExpr

func (m MathExpr) Add(val any) MathExpr {
	return MathExpr{
		left:  m,
		op:    opAdd,
		right: valueOf(val),
	}
}

func (m MathExpr) Multi(val any) MathExpr {
	return MathExpr{
		left:  m,
		op:    opMulti,
		right: valueOf(val),
	}
}

func (m MathExpr) expr() {}
