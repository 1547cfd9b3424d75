package orm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/orm/internal/errs"
)

func TestDeleter_Build(t *testing.T) {
	db := memoryDB(t)
	type testCase struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}

	tests := []testCase{
		{
			name: "no where",
			q:    NewDeleter[TestModel](db),
			want: &Query{
				SQL: "DELETE FROM `test_model`;",
			},
		},
		{
			name: "with from",
			q:    NewDeleter[TestModel](db).From("`test_model`"),
			want: &Query{
				SQL: "DELETE FROM `test_model`;",
			},
		},
		{
			name: "with where",
			q:    NewDeleter[TestModel](db).Where(C("Id").EQ(1)),
			want: &Query{
				SQL:  "DELETE FROM `test_model` WHERE `id` = ?;",
				Args: []any{1},
			},
		},
		{
			name: "with spec",
			q: NewDeleter[TestModel](db).
				Spec(S[TestModel]().Eq("FirstName", "Tom").Lt("Age", 18)),
			want: &Query{
				SQL:  "DELETE FROM `test_model` WHERE (`first_name` = ?) AND (`age` < ?);",
				Args: []any{"Tom", 18},
			},
		},
		{
			// DELETE 没有 JOIN，关联路径直接报错
			name: "spec with relation path",
			q: NewDeleter[User](db).
				Spec(S[User]().Eq("Orders.Status", "PAID")),
			wantErr: errs.NewErrUnsupportedRelationPath("Orders.Status"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := tt.q.Build()
			assert.Equal(t, tt.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, query)
		})
	}
}

func TestDeleter_Exec(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB)
	require.NoError(t, err)

	mock.ExpectExec("DELETE FROM .*").WillReturnResult(sqlmock.NewResult(0, 2))
	res := NewDeleter[TestModel](db).Where(C("Id").In(1, 2)).Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
}
