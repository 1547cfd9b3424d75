package valuer

import (
	"database/sql"
	"reflect"

	"github.com/coderi421/orm/internal/errs"
	"github.com/coderi421/orm/model"
)

// reflectValue 基于反射的 Value
type reflectValue struct {
	val  reflect.Value
	meta *model.Model
}

var _ Creator = NewReflectValue

// NewReflectValue 返回一个封装好的，基于反射实现的 Value
// 输入 val 必须是一个指向结构体实例的指针，而不能是任何其它类型
func NewReflectValue(val interface{}, meta *model.Model) Value {
	return &reflectValue{
		val:  reflect.ValueOf(val).Elem(),
		meta: meta,
	}
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.meta.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}

// SetColumns 将数据库中的数据设置到对应的 struct 上
// SetColumns sets the values from the database to the corresponding struct.
func (r reflectValue) SetColumns(rows *sql.Rows) error {
	// Get the column names from the rows
	columnNames, err := rows.Columns()
	if err != nil {
		return err
	}

	// Check if the number of column names is greater than the number of fields in the struct
	if len(columnNames) > len(r.meta.FieldMap) {
		return errs.ErrTooManyReturnedColumns
	}

	// colValues 和 colEleValues 实质上最终都指向同一个对象
	// Create slices to hold the column values and element values
	colValues := make([]any, len(columnNames))
	colEleValues := make([]reflect.Value, len(columnNames))

	// Map the column names to the field names
	for i, name := range columnNames {
		// Get the field corresponding to the column name
		field, ok := r.meta.ColumnMap[name]
		if !ok {
			return errs.NewErrUnknownColumn(name)
		}

		// 构建出新的 reflect.Value struct
		// Create a new reflect.Value struct
		val := reflect.New(field.Type)

		// 实际上 colValues 和 colEleValues 存的都是指针，
		// 修改 colValues 切片中的元素时，colEleValues 切片中的相应元素也会实时获取到变化后的值。这是因为它们指向相同的内存地址。
		colValues[i] = val.Interface()
		colEleValues[i] = val.Elem()
	}

	// 把 sql.Rows 中的数据扫描到 colValues 中
	if err = rows.Scan(colValues...); err != nil {
		return err
	}

	// 再把扫描出来的数据设置到 struct 上
	for i, name := range columnNames {
		field := r.meta.ColumnMap[name]
		r.val.FieldByName(field.GoName).Set(colEleValues[i])
	}

	return nil
}
