package model

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/coderi421/orm/internal/errs"
)

type Registry interface {
	Get(val any) (*Model, error)
	Register(val any, opts ...Option) (*Model, error)
}

// registry 基于 sync.Map 的 Registry 实现
// reflect.Type 作为 key 可以解决不同包下同名结构体的命名冲突问题
type registry struct {
	models sync.Map
}

func NewRegistry() Registry {
	return &registry{}
}

// Get fetches the model associated with a given value.
// If the model is not found in the registry, it is parsed and stored for future use.
// Get 查找元数据模型
func (r *registry) Get(val any) (*Model, error) {
	// Get the type of the value
	typ := reflect.TypeOf(val)

	// Check if the model is already present in the registry
	m, ok := r.models.Load(typ)
	if ok {
		return m.(*Model), nil
	}

	// Return the model
	return r.Register(val)
}

// Register registers a model in the registry with the given options.
// It parses the model if it is not found and applies the provided options.
// It stores the model in the registry and returns the registered model.
func (r *registry) Register(val any, opts ...Option) (*Model, error) {
	// If the model is not found, parse it
	m, err := r.parseModel(val)
	if err != nil {
		return nil, err
	}

	// Apply the provided options to the model
	for _, opt := range opts {
		err = opt(m)
		if err != nil {
			return nil, err
		}
	}

	typ := reflect.TypeOf(val)

	// Store the model in the registry
	r.models.Store(typ, m)

	return m, nil
}

// parseModel parses a given reflect.Type and returns a new model or an error.
// It checks if the type is a pointer to a struct and generates a map of Field names
// and their corresponding column names for the model.
// orm:"key1=value1,key2=value2"
func (r *registry) parseModel(val any) (*Model, error) {
	// Get the type of the input value
	typ := reflect.TypeOf(val)

	// Check if the type is a pointer to a struct
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		// Only support one-level pointer as input, e.g. *User does not support **User and User
		return nil, errs.ErrPointerOnly
	}

	// Dereference the pointer to get the struct type
	typ = typ.Elem()

	// Get the number of fields in the struct
	numField := typ.NumField()

	fields := make([]*Field, 0, numField)
	// Create a map to store the Struct Field names and their corresponding column names
	fds := make(map[string]*Field, numField)
	// Create a map to store the DB names and their corresponding column names
	colMap := make(map[string]*Field, numField)
	var relMap map[string]*Relation

	// Get the table name from the input value if it implements TableName interface
	var tableName string
	if tn, ok := val.(TableName); ok {
		tableName = tn.TableName()
	}
	// If the table name is not provided, generate it from the struct name
	if tableName == "" {
		tableName = underscoreName(typ.Name())
	}

	// Iterate over each Field in the struct
	for i := 0; i < numField; i++ {
		// Get the reflect.Struct Field of the current Field
		fdStruct := typ.Field(i)

		// Process the tag of the Field
		tags, err := r.parseTag(fdStruct.Tag)
		if err != nil {
			return nil, err
		}

		// 带 rel 标签的是关联字段，不映射成列
		if rel, ok := tags[tagKeyRelation]; ok {
			relation, err := r.parseRelation(tableName, fdStruct, rel, tags)
			if err != nil {
				return nil, err
			}
			if relMap == nil {
				relMap = make(map[string]*Relation, 4)
			}
			relMap[fdStruct.Name] = relation
			continue
		}

		// Get the column name from the tag or use the default Field name
		colName := tags[tagKeyColumn]
		if colName == "" {
			// If the colName is "", user the default  ItemId -> item_id
			colName = underscoreName(fdStruct.Name)
		}

		f := &Field{
			ColName: colName,
			GoName:  fdStruct.Name,
			Type:    fdStruct.Type,
			Index:   i,
			Offset:  fdStruct.Offset,
		}
		fields = append(fields, f)
		// Store the Struct Field's column name in the map
		fds[fdStruct.Name] = f
		// Store the DB's column name in the map
		colMap[colName] = f
	}

	// Create and return the model
	return &Model{
		TableName:   tableName,
		Typ:         typ,
		Fields:      fields,
		FieldMap:    fds,
		ColumnMap:   colMap,
		RelationMap: relMap,
	}, nil
}

// parseRelation 解析关联字段
// 关联字段的类型必须是 *T 或者 []*T，T 是关联目标的结构体
func (r *registry) parseRelation(tableName string, fdStruct reflect.StructField, rel string, tags map[string]string) (*Relation, error) {
	typ := fdStruct.Type
	var many bool
	switch rel {
	case relOne:
	case relMany:
		many = true
	default:
		return nil, errs.NewErrInvalidTagContent(tagKeyRelation + "=" + rel)
	}

	if many {
		if typ.Kind() != reflect.Slice {
			return nil, errs.NewErrInvalidTagContent(tagKeyRelation + "=" + rel)
		}
		typ = typ.Elem()
	}
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil, errs.NewErrInvalidTagContent(tagKeyRelation + "=" + rel)
	}

	fk := tags[tagKeyFK]
	if fk == "" {
		// 约定：关联表上的外键列指向本表，例如 user 表对应 user_id
		fk = tableName + "_id"
	}
	refer := tags[tagKeyRefer]
	if refer == "" {
		refer = "id"
	}

	return &Relation{
		GoName: fdStruct.Name,
		Typ:    typ,
		Many:   many,
		FK:     fk,
		Refer:  refer,
	}, nil
}

// parseTag parses the given struct tag and returns a map of key-value pairs.
// If the tag is empty, it returns an empty map and no error.
// If the tag contains an invalid key-value pair, it returns an error.
func (r *registry) parseTag(tag reflect.StructTag) (map[string]string, error) {
	ormTag := tag.Get(tagORMName)
	if ormTag == "" {
		// Return an empty map so that the caller doesn't need to check for nil
		return map[string]string{}, nil
	}

	res := make(map[string]string, 4)

	// Split the tag string into individual key-value pairs
	pairs := strings.Split(ormTag, ",")
	for _, pair := range pairs {
		// rel 标签允许只写 key 的形式吗？不允许，统一都是 key=value
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			return nil, errs.NewErrInvalidTagContent(pair)
		}
		// Add the key-value pair to the result map
		res[kv[0]] = kv[1]
	}

	return res, nil
}

// underscoreName converts a given table name to underscore case.
// It replaces any uppercase letter with an underscore followed by the lowercase letter.
// It returns the converted table name as a string.
// UserName -> user_name
func underscoreName(tableName string) string {
	var buf []byte
	for i, v := range tableName {
		// If the character is uppercase
		if unicode.IsUpper(v) {
			// Add an underscore before the lowercase letter
			if i != 0 {
				buf = append(buf, '_')
			}
			buf = append(buf, byte(unicode.ToLower(v)))
		} else {
			// Append the character as it is
			buf = append(buf, byte(v))
		}
	}
	return string(buf)
}

// WithTableName is a Option function that sets the table name for a Model.
func WithTableName(tableName string) Option {
	return func(model *Model) error {
		model.TableName = tableName
		return nil
	}
}

// WithColumnName is a function that returns a Option function, which can be used to set the column name for a specific Field in a model.
func WithColumnName(field, columnName string) Option {
	return func(model *Model) error {
		// Check if the Field exists in the model's Field map
		fd, ok := model.FieldMap[field]
		if !ok {
			// Return an error if the Field is unknown
			return errs.NewErrUnknownField(field)
		}

		// Set the column name for the Field
		fd.ColName = columnName
		// ColumnMap 里面的旧列名也要跟着改
		for name, f := range model.ColumnMap {
			if f == fd {
				delete(model.ColumnMap, name)
				break
			}
		}
		model.ColumnMap[columnName] = fd
		return nil
	}
}
