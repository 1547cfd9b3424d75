package model

import (
	"database/sql"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/orm/internal/errs"
)

type TestModel struct {
	Id        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

func TestRegistry_Get(t *testing.T) {
	type testCase struct {
		name    string
		val     any
		want    *Model
		wantErr error
	}

	tests := []testCase{
		{
			name:    "struct",
			val:     TestModel{},
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "multiple pointer",
			val:     func() **TestModel { m := &TestModel{}; return &m }(),
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "map",
			val:     map[string]string{},
			wantErr: errs.ErrPointerOnly,
		},
		{
			name:    "basic type",
			val:     0,
			wantErr: errs.ErrPointerOnly,
		},
		{
			name: "pointer",
			val:  &TestModel{},
			want: &Model{
				TableName: "test_model",
				Typ:       reflect.TypeOf(TestModel{}),
			},
		},
		{
			name: "column tag",
			val: &struct {
				ID uint64 `orm:"column=id"`
			}{},
			want: &Model{
				TableName: "",
			},
		},
		{
			// 标签内容写错了
			name: "invalid tag",
			val: &struct {
				FirstName string `orm:"column"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("column"),
		},
		{
			// 用户写了别的标签，不关我们的事
			name: "irrelevant tag",
			val: &struct {
				FirstName string `json:"first_name"`
			}{},
			want: &Model{
				TableName: "",
			},
		},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Get(tt.val)
			assert.Equal(t, tt.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want.TableName, m.TableName)
			if tt.want.Typ != nil {
				assert.Equal(t, tt.want.Typ, m.Typ)
			}
		})
	}
}

func TestRegistry_GetFields(t *testing.T) {
	r := NewRegistry()
	m, err := r.Get(&TestModel{})
	require.NoError(t, err)

	wantFields := []*Field{
		{
			ColName: "id",
			GoName:  "Id",
			Type:    reflect.TypeOf(int64(0)),
			Index:   0,
		},
		{
			ColName: "first_name",
			GoName:  "FirstName",
			Type:    reflect.TypeOf(""),
			Index:   1,
		},
		{
			ColName: "age",
			GoName:  "Age",
			Type:    reflect.TypeOf(int8(0)),
			Index:   2,
		},
		{
			ColName: "last_name",
			GoName:  "LastName",
			Type:    reflect.TypeOf(&sql.NullString{}),
			Index:   3,
		},
	}
	// Offset 跟内存布局相关，这里不逐个断言
	require.Len(t, m.Fields, len(wantFields))
	for i, want := range wantFields {
		fd := m.Fields[i]
		assert.Equal(t, want.ColName, fd.ColName)
		assert.Equal(t, want.GoName, fd.GoName)
		assert.Equal(t, want.Type, fd.Type)
		assert.Equal(t, want.Index, fd.Index)
		assert.Same(t, fd, m.FieldMap[want.GoName])
		assert.Same(t, fd, m.ColumnMap[want.ColName])
	}
}

func TestRegistry_Relations(t *testing.T) {
	type Order struct {
		Id     int64
		UserId int64
	}
	type Profile struct {
		Id  int64
		Uid int64
	}

	type testCase struct {
		name    string
		val     any
		want    map[string]*Relation
		wantErr error
	}

	tests := []testCase{
		{
			name: "one to many",
			val: &struct {
				Id     int64
				Orders []*Order `orm:"rel=many"`
			}{},
			want: map[string]*Relation{
				"Orders": {
					GoName: "Orders",
					Typ:    reflect.TypeOf(Order{}),
					Many:   true,
					FK:     "_id",
					Refer:  "id",
				},
			},
		},
		{
			name: "one to one with overrides",
			val: &struct {
				Id      int64
				Profile *Profile `orm:"rel=one,fk=uid,refer=id"`
			}{},
			want: map[string]*Relation{
				"Profile": {
					GoName: "Profile",
					Typ:    reflect.TypeOf(Profile{}),
					FK:     "uid",
					Refer:  "id",
				},
			},
		},
		{
			// rel 的取值只能是 one 或者 many
			name: "invalid rel value",
			val: &struct {
				Orders []*Order `orm:"rel=lots"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("rel=lots"),
		},
		{
			// rel=many 的字段必须是切片
			name: "many on non-slice",
			val: &struct {
				Orders *Order `orm:"rel=many"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("rel=many"),
		},
		{
			// 关联目标必须是结构体
			name: "rel on basic type",
			val: &struct {
				Orders []int64 `orm:"rel=many"`
			}{},
			wantErr: errs.NewErrInvalidTagContent("rel=many"),
		},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Get(tt.val)
			assert.Equal(t, tt.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, m.RelationMap)
			// 关联字段不会映射成列
			for name := range tt.want {
				_, ok := m.FieldMap[name]
				assert.False(t, ok)
			}
		})
	}
}

func TestRegistry_RelationFKConvention(t *testing.T) {
	type Order struct {
		Id     int64
		UserId int64
	}
	type User struct {
		Id     int64
		Orders []*Order `orm:"rel=many"`
	}
	r := NewRegistry()
	m, err := r.Get(&User{})
	require.NoError(t, err)
	rel := m.RelationMap["Orders"]
	require.NotNil(t, rel)
	// 默认外键是 <本表名>_id
	assert.Equal(t, "user_id", rel.FK)
	assert.Equal(t, "id", rel.Refer)
}

type CustomTableName struct {
	Name string
}

func (c CustomTableName) TableName() string {
	return "custom_table_name_t"
}

func TestRegistry_CustomTableName(t *testing.T) {
	r := NewRegistry()
	m, err := r.Get(&CustomTableName{})
	require.NoError(t, err)
	assert.Equal(t, "custom_table_name_t", m.TableName)
}

func TestRegistry_RegisterOptions(t *testing.T) {
	r := NewRegistry()
	m, err := r.Register(&TestModel{},
		WithTableName("test_model_t"),
		WithColumnName("FirstName", "name_t"))
	require.NoError(t, err)
	assert.Equal(t, "test_model_t", m.TableName)

	fd, ok := m.ColumnMap["name_t"]
	require.True(t, ok)
	assert.Equal(t, "FirstName", fd.GoName)
	// 旧列名被移除
	_, ok = m.ColumnMap["first_name"]
	assert.False(t, ok)

	_, err = r.Register(&TestModel{}, WithColumnName("Invalid", "x"))
	assert.Equal(t, errs.NewErrUnknownField("Invalid"), err)
}
