package orm

import (
	"reflect"
	"strings"
)

// Spec 流式的查询条件构造器
// 目标是让拼装查询条件这件事比直接手搓 Predicate 更顺手：
// 传进来的值是 nil（或者空白字符串、空列表）的条件会被直接忽略，不会报错，
// 所以可以把一堆可选的查询参数直接灌进来，不用自己写一堆 if
//
//	spec := S[User]().
//		Eq("Status", req.Status).
//		Like("Name", req.Keyword).
//		Between("Age", req.MinAge, req.MaxAge)
//	us, err := NewSelector[User](db).Spec(spec).GetMulti(ctx)
//
// 字段名支持 "Orders.Status" 这种关联路径，
// 中间段必须是用 orm:"rel=xxx" 声明过的关联字段，
// 同一个路径在一条语句里只会 JOIN 一次
type Spec[T any] struct {
	preds []Predicate
	// joinTypes 记录每个关联路径要用哪种 JOIN
	// 只在 Join/LeftJoin/RightJoin 的时候写入，没写的路径默认 INNER JOIN
	joinTypes map[string]string
}

// S 创建一个针对实体 T 的 Spec
// 一个条件都不加的 Spec 构建出来的就是没有 WHERE 的查询
func S[T any]() *Spec[T] {
	return &Spec[T]{}
}

// ===== 逻辑组合 =====

// And 追加一个手工构造的条件，和已有条件用 AND 连接
// 零值 Predicate 会被忽略
func (s *Spec[T]) And(p Predicate) *Spec[T] {
	if p.zero() {
		return s
	}
	s.preds = append(s.preds, p)
	return s
}

// Or 把传入的条件和已经积累的全部条件用 OR 连接
// 也就是 (已有条件) OR p
// 一个条件都还没有的时候，Or 退化成直接追加：
// p 会照常过滤结果，而不是被整个吞掉
func (s *Spec[T]) Or(p Predicate) *Spec[T] {
	if p.zero() {
		return s
	}
	if len(s.preds) == 0 {
		s.preds = append(s.preds, p)
		return s
	}
	merged := s.preds[0]
	for i := 1; i < len(s.preds); i++ {
		merged = merged.And(s.preds[i])
	}
	s.preds = []Predicate{merged.Or(p)}
	return s
}

// Not 追加一个取反的条件
func (s *Spec[T]) Not(p Predicate) *Spec[T] {
	if p.zero() {
		return s
	}
	s.preds = append(s.preds, Not(p))
	return s
}

// ===== 基础条件 =====

// Eq 等值条件，val 是 nil 就忽略
func (s *Spec[T]) Eq(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).EQ(val))
	return s
}

// Ne 不等条件，val 是 nil 就忽略
func (s *Spec[T]) Ne(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).NEQ(val))
	return s
}

func (s *Spec[T]) IsNull(field string) *Spec[T] {
	s.preds = append(s.preds, C(field).IsNull())
	return s
}

func (s *Spec[T]) IsNotNull(field string) *Spec[T] {
	s.preds = append(s.preds, C(field).IsNotNull())
	return s
}

// Like 大小写不敏感的包含匹配，LOWER(col) LIKE %val%
// 空白字符串就忽略，% 和 _ 不做转义，由调用方自己保证
func (s *Spec[T]) Like(field string, val string) *Spec[T] {
	if isBlank(val) {
		return s
	}
	return s.like(field, "%"+strings.ToLower(val)+"%")
}

// StartsWith 大小写不敏感的前缀匹配
func (s *Spec[T]) StartsWith(field string, val string) *Spec[T] {
	if isBlank(val) {
		return s
	}
	return s.like(field, strings.ToLower(val)+"%")
}

// EndsWith 大小写不敏感的后缀匹配
func (s *Spec[T]) EndsWith(field string, val string) *Spec[T] {
	if isBlank(val) {
		return s
	}
	return s.like(field, "%"+strings.ToLower(val))
}

func (s *Spec[T]) like(field string, pattern string) *Spec[T] {
	s.preds = append(s.preds, Predicate{
		left:  lowered{arg: C(field)},
		op:    opLIKE,
		right: valueOf(pattern),
	})
	return s
}

// ===== 比较条件 =====

func (s *Spec[T]) Gt(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).GT(val))
	return s
}

func (s *Spec[T]) Gte(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).GTEQ(val))
	return s
}

func (s *Spec[T]) Lt(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).LT(val))
	return s
}

func (s *Spec[T]) Lte(field string, val any) *Spec[T] {
	if isNilValue(val) {
		return s
	}
	s.preds = append(s.preds, C(field).LTEQ(val))
	return s
}

// Between 闭区间，任意一端是 nil 整个条件都忽略
func (s *Spec[T]) Between(field string, start any, end any) *Spec[T] {
	if isNilValue(start) || isNilValue(end) {
		return s
	}
	s.preds = append(s.preds, C(field).Between(start, end))
	return s
}

// ===== 集合条件 =====

// In 列表为空就忽略
func (s *Spec[T]) In(field string, vals ...any) *Spec[T] {
	if len(vals) == 0 {
		return s
	}
	s.preds = append(s.preds, C(field).In(vals...))
	return s
}

func (s *Spec[T]) NotIn(field string, vals ...any) *Spec[T] {
	if len(vals) == 0 {
		return s
	}
	s.preds = append(s.preds, C(field).NotIn(vals...))
	return s
}

// ===== 布尔条件 =====

func (s *Spec[T]) IsTrue(field string) *Spec[T] {
	s.preds = append(s.preds, C(field).EQ(Raw("TRUE")))
	return s
}

func (s *Spec[T]) IsFalse(field string) *Spec[T] {
	s.preds = append(s.preds, C(field).EQ(Raw("FALSE")))
	return s
}

// ===== JOIN DSL =====

// Join 在关联字段 rel 上加 INNER JOIN 范围的条件
// fn 是 nil 就什么都不做。没有加任何条件的 Join 也不会产生 JOIN，
// 因为 JOIN 是在第一次引用这个路径的时候才创建的
func (s *Spec[T]) Join(rel string, fn func(j *SpecJoin[T])) *Spec[T] {
	return s.join(rel, "JOIN", fn)
}

func (s *Spec[T]) LeftJoin(rel string, fn func(j *SpecJoin[T])) *Spec[T] {
	return s.join(rel, "LEFT JOIN", fn)
}

func (s *Spec[T]) RightJoin(rel string, fn func(j *SpecJoin[T])) *Spec[T] {
	return s.join(rel, "RIGHT JOIN", fn)
}

func (s *Spec[T]) join(rel string, typ string, fn func(j *SpecJoin[T])) *Spec[T] {
	if fn == nil {
		return s
	}
	if s.joinTypes == nil {
		s.joinTypes = make(map[string]string, 4)
	}
	s.joinTypes[rel] = typ
	fn(&SpecJoin[T]{spec: s, rel: rel})
	return s
}

// Build 返回积累好的全部条件
// 多个条件之间是 AND 的关系，一个条件都没有就返回空切片
func (s *Spec[T]) Build() []Predicate {
	return s.preds
}

// SpecJoin 限定在某个关联字段范围内的条件构造器
// 所有条件都会带上关联路径的前缀，guard 语义和 Spec 一致
type SpecJoin[T any] struct {
	spec *Spec[T]
	rel  string
}

func (j *SpecJoin[T]) path(field string) string {
	return j.rel + "." + field
}

func (j *SpecJoin[T]) Eq(field string, val any) *SpecJoin[T] {
	j.spec.Eq(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) Ne(field string, val any) *SpecJoin[T] {
	j.spec.Ne(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) IsNull(field string) *SpecJoin[T] {
	j.spec.IsNull(j.path(field))
	return j
}

func (j *SpecJoin[T]) IsNotNull(field string) *SpecJoin[T] {
	j.spec.IsNotNull(j.path(field))
	return j
}

func (j *SpecJoin[T]) Like(field string, val string) *SpecJoin[T] {
	j.spec.Like(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) Gt(field string, val any) *SpecJoin[T] {
	j.spec.Gt(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) Gte(field string, val any) *SpecJoin[T] {
	j.spec.Gte(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) Lt(field string, val any) *SpecJoin[T] {
	j.spec.Lt(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) Lte(field string, val any) *SpecJoin[T] {
	j.spec.Lte(j.path(field), val)
	return j
}

func (j *SpecJoin[T]) In(field string, vals ...any) *SpecJoin[T] {
	j.spec.In(j.path(field), vals...)
	return j
}

func (j *SpecJoin[T]) NotIn(field string, vals ...any) *SpecJoin[T] {
	j.spec.NotIn(j.path(field), vals...)
	return j
}

func (j *SpecJoin[T]) Between(field string, start any, end any) *SpecJoin[T] {
	j.spec.Between(j.path(field), start, end)
	return j
}

// isNilValue 判断用户传进来的查询参数是不是 nil
// 除了字面量 nil，还要兼容 (*int)(nil) 这种带了类型信息的 nil
func isNilValue(val any) bool {
	if val == nil {
		return true
	}
	switch rv := reflect.ValueOf(val); rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

// isBlank 全是空白字符的字符串视作没传
func isBlank(val string) bool {
	return strings.TrimSpace(val) == ""
}
