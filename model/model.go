package model

import "reflect"

// Option is a function type that modifies a Model.
type Option func(model *Model) error

// Model 结构体映射db后的结构
type Model struct {
	// TableName 结构体对应的表名
	TableName string
	// Typ 结构体本身的类型，脱掉了指针
	// querycache 这种需要凭空构造实例的场景会用到
	Typ reflect.Type

	Fields    []*Field          // 按照声明顺序排列的所有字段
	FieldMap  map[string]*Field // 结构体 属性名 attr name 为 key  ItemId
	ColumnMap map[string]*Field // DB column name 为 key    item_id

	// RelationMap 关联字段，Go 字段名为 key
	// 关联字段不会出现在 FieldMap 和 ColumnMap 里面
	RelationMap map[string]*Relation
}

// Field 字段相关的属性
type Field struct {
	ColName string       // 数据库中的字段名
	GoName  string       // go struct 中的名字
	Type    reflect.Type // go 中的数据类型，转换成 reflect.Value 的时候，知道是什么类型，不然那没法转
	Index   int          // 在结构体中的下标
	// Offset 相对于对象起始地址的字段偏移量
	// uintptr 这个类型的值，只是简单记录一下位置
	Offset uintptr
}

// Relation 关联字段相关的属性
// 通过 orm:"rel=one" 或者 orm:"rel=many" 声明
// JOIN 条件按照约定推导：关联表上的外键列指向本表的 refer 列
// 例如 User 关联 Order，默认是 order.user_id = user.id
type Relation struct {
	GoName string
	// Typ 关联目标的结构体类型，脱掉了指针和切片
	Typ reflect.Type
	// Many 是否一对多。一对多意味着 JOIN 之后可能出现重复行，由调用方自己处理
	Many bool
	// FK 关联表上的外键列名，默认 <本表名>_id，可以用 orm:"fk=xxx" 覆盖
	FK string
	// Refer 本表上被引用的列名，默认 id，可以用 orm:"refer=xxx" 覆盖
	Refer string
}

// 我们支持的全部标签上的 key 都放在这里
// 方便用户查找，和我们后期维护
const (
	tagKeyColumn   = "column"
	tagKeyRelation = "rel"
	tagKeyFK       = "fk"
	tagKeyRefer    = "refer"
	tagORMName     = "orm"
)

// rel 标签允许的取值
const (
	relOne  = "one"
	relMany = "many"
)

// TableName 用户实现这个接口来返回自定义的表名
type TableName interface {
	TableName() string
}
