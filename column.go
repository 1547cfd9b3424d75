package orm

// 只拼接 where 中的 一组条件

type Column struct {
	table TableReference
	name  string
	alias string
}

func (c Column) expr() {}

func (c Column) selectable() {}

func (c Column) assign() {}

type value struct {
	val any
}

func (v value) expr() {}

// valueOf creates a new value object with the given value.
// It takes in a generic value and returns a value object.
func valueOf(val any) value {
	return value{val: val}
}

func C(name string) Column {
	return Column{name: name}
}

// As 返回一个带别名的新 Column
// 使用值接收者，每次都返回新的，避免并发问题
func (c Column) As(alias string) Column {
	return Column{
		table: c.table,
		name:  c.name,
		alias: alias,
	}
}

// EQ 例如 C("id").EQ(12)
func (c Column) EQ(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opEQ,
		right: exprOf(arg), // 如果 arg 不是 Expression 类型 就让他变成这个类型
	}
}

// NEQ 例如 C("id").NEQ(12)
func (c Column) NEQ(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opNEQ,
		right: exprOf(arg),
	}
}

// LT 例如 C("id").LT(12)
func (c Column) LT(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opLT,
		right: exprOf(arg),
	}
}

func (c Column) LTEQ(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opLTEQ,
		right: exprOf(arg),
	}
}

func (c Column) GT(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opGT,
		right: exprOf(arg),
	}
}

func (c Column) GTEQ(arg any) Predicate {
	return Predicate{
		left:  c,
		op:    opGTEQ,
		right: exprOf(arg),
	}
}

// Like 不会帮你拼接 %，模式串由调用方自己决定
// 例如 C("name").Like("张%")
func (c Column) Like(pattern string) Predicate {
	return Predicate{
		left:  c,
		op:    opLIKE,
		right: valueOf(pattern),
	}
}

func (c Column) NotLike(pattern string) Predicate {
	return Predicate{
		left:  c,
		op:    opNotLIKE,
		right: valueOf(pattern),
	}
}

// In 例如 C("id").In(1, 2, 3)
// 空列表在 Build 的时候会报错，Spec 里面则是直接忽略这种条件
func (c Column) In(vals ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opIN,
		right: valueList{vals: vals},
	}
}

func (c Column) NotIn(vals ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opNotIN,
		right: valueList{vals: vals},
	}
}

// Between 闭区间，两端都包含
func (c Column) Between(start any, end any) Predicate {
	return Predicate{
		left:  c,
		op:    opBETWEEN,
		right: valueRange{start: start, end: end},
	}
}

func (c Column) IsNull() Predicate {
	return Predicate{
		left:  c,
		op:    opIS,
		right: Raw("NULL"),
	}
}

func (c Column) IsNotNull() Predicate {
	return Predicate{
		left:  c,
		op:    opISNot,
		right: Raw("NULL"),
	}
}

func (c Column) Add(delta any) MathExpr {
	return MathExpr{
		left:  c,
		op:    opAdd,
		right: valueOf(delta),
	}
}

func (c Column) Multi(delta any) MathExpr {
	return MathExpr{
		left:  c,
		op:    opMulti,
		right: valueOf(delta),
	}
}
