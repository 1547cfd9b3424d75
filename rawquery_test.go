package orm

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawQuerier_Get(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
	rows.AddRow("1", "Tom", "18", "Jerry")
	mock.ExpectQuery("SELECT .*").WithArgs(1).WillReturnRows(rows)

	res, err := RawQuery[TestModel](db,
		"SELECT * FROM `test_model` WHERE `id` = ?;", 1).
		Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &TestModel{
		Id:        1,
		FirstName: "Tom",
		Age:       18,
		LastName:  &sql.NullString{Valid: true, String: "Jerry"},
	}, res)
}

func TestRawQuerier_Exec(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB)
	require.NoError(t, err)

	mock.ExpectExec("TRUNCATE TABLE .*").WillReturnResult(sqlmock.NewResult(0, 0))
	res := RawQuery[TestModel](db, "TRUNCATE TABLE `test_model`;").
		Exec(context.Background())
	require.NoError(t, res.Err())
}
