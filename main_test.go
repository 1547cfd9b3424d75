package orm

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

type TestModel struct {
	Id        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

// 下面这组模型用来测关联 JOIN
// User -> Orders -> Items，还有一个一对一的 Detail

type User struct {
	Id    int64
	Name  string
	Age   int8
	Admin bool

	Orders []*Order    `orm:"rel=many"`
	Detail *UserDetail `orm:"rel=one"`
}

type Order struct {
	Id     int64
	UserId int64
	Status string
	Amount int64

	Items []*OrderItem `orm:"rel=many,fk=order_id"`
}

type OrderItem struct {
	Id      int64
	OrderId int64
	Sku     string
	Price   int64
}

type UserDetail struct {
	Id     int64
	UserId int64
	City   string
}

// memoryDB 返回一个只用来 Build 的 DB
// 不会真的执行 sql
func memoryDB(t *testing.T, opts ...DBOption) *DB {
	mockDB, _, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB, opts...)
	require.NoError(t, err)
	return db
}
