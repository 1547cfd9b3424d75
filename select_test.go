package orm

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderi421/orm/internal/errs"
)

func TestSelector_Build(t *testing.T) {
	db := memoryDB(t)
	type testCase struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}
	tests := []testCase{
		{
			name: "no from",
			q:    NewSelector[TestModel](db),
			want: &Query{
				SQL: "SELECT * FROM `test_model`;",
			},
		},
		{
			name: "with from",
			q:    NewSelector[TestModel](db).From(TableOf(&TestModel{})),
			want: &Query{
				SQL: "SELECT * FROM `test_model`;",
			},
		},
		{
			name: "from with alias",
			q:    NewSelector[TestModel](db).From(TableOf(&TestModel{}).As("t")),
			want: &Query{
				SQL: "SELECT * FROM `test_model` AS `t`;",
			},
		},
		{
			name: "single and simple predicate",
			q:    NewSelector[TestModel](db).Where(C("Id").EQ(1)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `id` = ?;",
				Args: []any{1},
			},
		},
		{
			name: "multiple predicates",
			q:    NewSelector[TestModel](db).Where(C("Age").GT(11), C("Age").LT(13)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE (`age` > ?) AND (`age` < ?);",
				Args: []any{11, 13},
			},
		},
		{
			// 使用 AND
			name: "and",
			q: NewSelector[TestModel](db).
				Where(C("Age").GT(18).And(C("Age").LT(35))),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE (`age` > ?) AND (`age` < ?);",
				Args: []any{18, 35},
			},
		},
		{
			// 使用 OR
			name: "or",
			q: NewSelector[TestModel](db).
				Where(C("Age").GT(18).Or(C("Age").LT(35))),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE (`age` > ?) OR (`age` < ?);",
				Args: []any{18, 35},
			},
		},
		{
			// 使用 NOT
			name: "not",
			q:    NewSelector[TestModel](db).Where(Not(C("Age").GT(18))),
			want: &Query{
				// NOT 前面有两个空格，因为我们没有对 NOT 进行特殊处理
				SQL:  "SELECT * FROM `test_model` WHERE  NOT (`age` > ?);",
				Args: []any{18},
			},
		},
		{
			name: "not equal",
			q:    NewSelector[TestModel](db).Where(C("Age").NEQ(18)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `age` <> ?;",
				Args: []any{18},
			},
		},
		{
			name: "gteq and lteq",
			q:    NewSelector[TestModel](db).Where(C("Age").GTEQ(18), C("Age").LTEQ(35)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE (`age` >= ?) AND (`age` <= ?);",
				Args: []any{18, 35},
			},
		},
		{
			name: "in",
			q:    NewSelector[TestModel](db).Where(C("Id").In(1, 2, 3)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `id` IN (?,?,?);",
				Args: []any{1, 2, 3},
			},
		},
		{
			name: "not in",
			q:    NewSelector[TestModel](db).Where(C("Id").NotIn(1, 2)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `id` NOT IN (?,?);",
				Args: []any{1, 2},
			},
		},
		{
			name:    "empty in",
			q:       NewSelector[TestModel](db).Where(C("Id").In()),
			wantErr: errs.ErrEmptyInList,
		},
		{
			name: "between",
			q:    NewSelector[TestModel](db).Where(C("Age").Between(18, 35)),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `age` BETWEEN ? AND ?;",
				Args: []any{18, 35},
			},
		},
		{
			name: "is null",
			q:    NewSelector[TestModel](db).Where(C("LastName").IsNull()),
			want: &Query{
				SQL: "SELECT * FROM `test_model` WHERE `last_name` IS NULL;",
			},
		},
		{
			name: "is not null",
			q:    NewSelector[TestModel](db).Where(C("LastName").IsNotNull()),
			want: &Query{
				SQL: "SELECT * FROM `test_model` WHERE `last_name` IS NOT NULL;",
			},
		},
		{
			name: "like",
			q:    NewSelector[TestModel](db).Where(C("FirstName").Like("Da%")),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `first_name` LIKE ?;",
				Args: []any{"Da%"},
			},
		},
		{
			name: "not like",
			q:    NewSelector[TestModel](db).Where(C("FirstName").NotLike("Da%")),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `first_name` NOT LIKE ?;",
				Args: []any{"Da%"},
			},
		},
		{
			name: "raw expression as predicate",
			q:    NewSelector[TestModel](db).Where(Raw("`age` < ?", 18).AsPredicate()),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `age` < ?;",
				Args: []any{18},
			},
		},
		{
			name: "raw expression used in predicate",
			q:    NewSelector[TestModel](db).Where(C("Id").EQ(Raw("`age`+?", 1))),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` WHERE `id` = `age`+?;",
				Args: []any{1},
			},
		},
		{
			name:    "invalid column",
			q:       NewSelector[TestModel](db).Where(C("Invalid").EQ(1)),
			wantErr: errs.NewErrUnknownField("Invalid"),
		},
		{
			name:    "blank column",
			q:       NewSelector[TestModel](db).Where(C("  ").EQ(1)),
			wantErr: errs.NewErrBlankField("  "),
		},
		{
			name: "select columns",
			q:    NewSelector[TestModel](db).Select(C("Id"), C("FirstName")),
			want: &Query{
				SQL: "SELECT `id`,`first_name` FROM `test_model`;",
			},
		},
		{
			name: "select column with alias",
			q:    NewSelector[TestModel](db).Select(C("Id").As("my_id")),
			want: &Query{
				SQL: "SELECT `id` AS `my_id` FROM `test_model`;",
			},
		},
		{
			name: "select aggregate",
			q:    NewSelector[TestModel](db).Select(Avg("Age"), Count("Id")),
			want: &Query{
				SQL: "SELECT AVG(`age`),COUNT(`id`) FROM `test_model`;",
			},
		},
		{
			name: "select aggregate with alias",
			q:    NewSelector[TestModel](db).Select(Max("Age").As("max_age")),
			want: &Query{
				SQL: "SELECT MAX(`age`) AS `max_age` FROM `test_model`;",
			},
		},
		{
			name: "select raw",
			q:    NewSelector[TestModel](db).Select(Raw("COUNT(DISTINCT `first_name`)")),
			want: &Query{
				SQL: "SELECT COUNT(DISTINCT `first_name`) FROM `test_model`;",
			},
		},
		{
			name: "group by and having",
			q: NewSelector[TestModel](db).Select(Avg("Age")).
				GroupBy(C("FirstName")).Having(Avg("Age").LT(20)),
			want: &Query{
				SQL:  "SELECT AVG(`age`) FROM `test_model` GROUP BY `first_name` HAVING AVG(`age`) < ?;",
				Args: []any{20},
			},
		},
		{
			name: "order by",
			q:    NewSelector[TestModel](db).OrderBy(ASC("Age"), Desc("Id")),
			want: &Query{
				SQL: "SELECT * FROM `test_model` ORDER BY `age` ASC,`id` DESC;",
			},
		},
		{
			name: "limit offset",
			q:    NewSelector[TestModel](db).Limit(10).Offset(20),
			want: &Query{
				SQL:  "SELECT * FROM `test_model` LIMIT ? OFFSET ?;",
				Args: []any{10, 20},
			},
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

func TestSelector_BuildExplicitJoin(t *testing.T) {
	db := memoryDB(t)
	type testCase struct {
		name    string
		q       QueryBuilder
		want    *Query
		wantErr error
	}

	tests := []testCase{
		{
			name: "join on",
			q: func() QueryBuilder {
				u := TableOf(&User{}).As("u")
				o := TableOf(&Order{}).As("o")
				return NewSelector[User](db).
					From(u.Join(o).On(u.C("Id").EQ(o.C("UserId")))).
					Where(o.C("Status").EQ("PAID"))
			}(),
			want: &Query{
				SQL:  "SELECT * FROM (`user` AS `u` JOIN `order` AS `o` ON `u`.`id` = `o`.`user_id`) WHERE `o`.`status` = ?;",
				Args: []any{"PAID"},
			},
		},
		{
			name: "left join using",
			q: func() QueryBuilder {
				u := TableOf(&User{})
				d := TableOf(&UserDetail{})
				return NewSelector[User](db).From(u.LeftJoin(d).Using("Id"))
			}(),
			want: &Query{
				SQL: "SELECT * FROM (`user` LEFT JOIN `user_detail` USING (`id`));",
			},
		},
		{
			name: "join chain",
			q: func() QueryBuilder {
				u := TableOf(&User{}).As("u")
				o := TableOf(&Order{}).As("o")
				i := TableOf(&OrderItem{}).As("i")
				return NewSelector[User](db).
					From(u.Join(o).On(u.C("Id").EQ(o.C("UserId"))).
						Join(i).On(o.C("Id").EQ(i.C("OrderId"))))
			}(),
			want: &Query{
				SQL: "SELECT * FROM ((`user` AS `u` JOIN `order` AS `o` ON `u`.`id` = `o`.`user_id`) JOIN `order_item` AS `i` ON `o`.`id` = `i`.`order_id`);",
			},
		},
		{
			name: "unknown field on joined table",
			q: func() QueryBuilder {
				u := TableOf(&User{}).As("u")
				o := TableOf(&Order{}).As("o")
				return NewSelector[User](db).
					From(u.Join(o).On(u.C("Id").EQ(o.C("Invalid"))))
			}(),
			wantErr: errs.NewErrUnknownField("Invalid"),
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

func TestSelector_Get(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB)
	require.NoError(t, err)

	// query error
	mock.ExpectQuery("SELECT .*").WillReturnError(errors.New("query error"))

	// no rows
	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
	mock.ExpectQuery("SELECT .*").WillReturnRows(rows)

	// data
	rows = sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
	rows.AddRow("1", "Tom", "18", "Jerry")
	mock.ExpectQuery("SELECT .*").WillReturnRows(rows)

	type testCase struct {
		name    string
		s       *Selector[TestModel]
		want    *TestModel
		wantErr error
	}

	tests := []testCase{
		{
			name:    "query error",
			s:       NewSelector[TestModel](db).Where(C("Id").EQ(1)),
			wantErr: errors.New("query error"),
		},
		{
			name:    "no rows",
			s:       NewSelector[TestModel](db).Where(C("Id").EQ(1)),
			wantErr: ErrNoRows,
		},
		{
			name: "data",
			s:    NewSelector[TestModel](db).Where(C("Id").EQ(1)),
			want: &TestModel{
				Id:        1,
				FirstName: "Tom",
				Age:       18,
				LastName:  &sql.NullString{Valid: true, String: "Jerry"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.s.Get(context.Background())
			assert.Equal(t, tt.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestSelector_GetMulti(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := OpenDB(mockDB)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
	rows.AddRow("1", "Tom", "18", "Jerry")
	rows.AddRow("2", "Da", "35", "Ming")
	mock.ExpectQuery("SELECT .*").WillReturnRows(rows)

	res, err := NewSelector[TestModel](db).GetMulti(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*TestModel{
		{
			Id:        1,
			FirstName: "Tom",
			Age:       18,
			LastName:  &sql.NullString{Valid: true, String: "Jerry"},
		},
		{
			Id:        2,
			FirstName: "Da",
			Age:       35,
			LastName:  &sql.NullString{Valid: true, String: "Ming"},
		},
	}, res)
}
