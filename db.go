package orm

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/coderi421/orm/internal/errs"
	"github.com/coderi421/orm/internal/valuer"
	"github.com/coderi421/orm/model"
)

type DBOption func(*DB)

type DB struct {
	core
	db *sql.DB
	// stmts 预编译语句的缓存，nil 代表没有开启
	// 缓存满了之后最久没用的语句会被挤出去并关闭
	stmts *lru.Cache
}

// Open creates a DB instance with the given driver and dsn.
// 默认使用 MySQL 方言和 unsafe 的映射实现
func Open(driver string, dsn string, opts ...DBOption) (*DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenDB(db, opts...)
}

// OpenDB creates a DB instance from an existing *sql.DB.
// 用户自己管理连接的时候用这个
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	res := &DB{
		core: core{
			dialect: MySQL,
			r:       model.NewRegistry(),
			creator: valuer.NewUnsafeValue,
		},
		db: db,
	}

	// Apply each option to the DB instance.
	for _, opt := range opts {
		opt(res)
	}

	return res, nil
}

// MustOpen creates a new DB with the provided options.
// If the creation fails, it panics.
func MustOpen(driver string, dsn string, opts ...DBOption) *DB {
	db, err := Open(driver, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func DBWithDialect(dialect Dialect) DBOption {
	return func(db *DB) {
		db.dialect = dialect
	}
}

func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.r = r
	}
}

// DBUseReflectValuer 切换到基于反射的映射实现
// 默认是 unsafe 的实现，快一些
func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.creator = valuer.NewReflectValue
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = mdls
	}
}

// DBWithStmtCache 开启预编译语句缓存，size 是缓存的条数上限
func DBWithStmtCache(size int) DBOption {
	return func(db *DB) {
		cache, err := lru.NewWithEvict(size, func(_ any, val any) {
			// 被挤出去的语句要关掉
			// database/sql 会等正在使用这个语句的查询结束
			_ = val.(*sql.Stmt).Close()
		})
		if err != nil {
			panic(err)
		}
		db.stmts = cache
	}
}

func (db *DB) getCore() core {
	return db.core
}

func (db *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if db.stmts != nil {
		stmt, err := db.prepare(ctx, query)
		if err != nil {
			return nil, err
		}
		return stmt.QueryContext(ctx, args...)
	}
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if db.stmts != nil {
		stmt, err := db.prepare(ctx, query)
		if err != nil {
			return nil, err
		}
		return stmt.ExecContext(ctx, args...)
	}
	return db.db.ExecContext(ctx, query, args...)
}

// prepare 从缓存中取预编译语句，没有就真的去预编译一条放进去
func (db *DB) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	if val, ok := db.stmts.Get(query); ok {
		return val.(*sql.Stmt), nil
	}
	stmt, err := db.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	db.stmts.Add(query, stmt)
	return stmt, nil
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: db}, nil
}

// DoTx 帮助用户管理事务的闭包 API
// fn 返回 error 或者发生 panic 都会回滚，否则提交
func (db *DB) DoTx(ctx context.Context,
	fn func(ctx context.Context, tx *Tx) error,
	opts *sql.TxOptions) (err error) {
	var tx *Tx
	tx, err = db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	panicked := true
	defer func() {
		if panicked || err != nil {
			e := tx.Rollback()
			if e != nil {
				err = errs.NewErrFailedToRollbackTx(err, e, panicked)
			}
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(ctx, tx)
	panicked = false
	return err
}

// Wait 一直等到数据库可用为止
// 主要是给依赖 docker 启动数据库的测试用的
func (db *DB) Wait() error {
	err := db.db.Ping()
	for errors.Is(err, driver.ErrBadConn) {
		log.Println("等待数据库启动...")
		time.Sleep(time.Second)
		err = db.db.Ping()
	}
	return err
}

func (db *DB) Close() error {
	if db.stmts != nil {
		db.stmts.Purge()
	}
	return db.db.Close()
}
