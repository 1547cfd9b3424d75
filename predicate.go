package orm

type op string

const (
	opEQ      op = "="
	opNEQ     op = "<>"
	opLT      op = "<"
	opLTEQ    op = "<="
	opGT      op = ">"
	opGTEQ    op = ">="
	opLIKE    op = "LIKE"
	opNotLIKE op = "NOT LIKE"
	opIN      op = "IN"
	opNotIN   op = "NOT IN"
	opBETWEEN op = "BETWEEN"
	opIS      op = "IS"
	opISNot   op = "IS NOT"
	opAND     op = "AND"
	opOR      op = "OR"
	opNOT     op = "NOT"
	opAdd     op = "+"
	opMulti   op = "*"
)

func (o op) String() string {
	return string(o)
}

// Predicate 代表一个查询条件
// Predicate 可以通过和 Predicate 组合构成复杂的查询条件
type Predicate struct {
	left  Expression
	op    op
	right Expression
}

func (Predicate) expr() {}

func Not(p Predicate) Predicate {
	return Predicate{
		op:    opNOT,
		right: p,
	}
}

func (p Predicate) And(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    opAND,
		right: r,
	}
}

func (p Predicate) Or(r Predicate) Predicate {
	return Predicate{
		left:  p,
		op:    opOR,
		right: r,
	}
}

// zero 判断是不是零值 Predicate
// Spec 用它来实现 nil 条件直接忽略的语义
func (p Predicate) zero() bool {
	return p.left == nil && p.op == "" && p.right == nil
}
