package valuer

import (
	"database/sql"

	"github.com/coderi421/orm/model"
)

// Value 是对结构体实例的内部抽象
// 负责 db 数据和 struct 字段之间的转换
type Value interface {
	// Field 返回字段对应的值
	Field(name string) (any, error)
	// SetColumns 设置新值
	SetColumns(rows *sql.Rows) error
}

// Creator 本质上也是一种 factory 模式
// 根据传入的实体和元数据创建 Value
type Creator func(val any, meta *model.Model) Value
