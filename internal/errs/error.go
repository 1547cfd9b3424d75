package errs

import (
	"errors"
	"fmt"
)

// 集中定义 orm 的 sentinel error 和错误构造器
// 内部使用，对外暴露的部分在 orm 包的 error.go 中
var (
	// ErrPointerOnly 只支持一级指针作为输入
	// 看到这个 error 说明你输入了其它的东西
	// 我们并不希望用户能够直接使用 err == ErrPointerOnly
	// 所以放在我们的 internal 包里面
	ErrPointerOnly = errors.New("orm: 只支持一级指针作为输入，例如 *User")

	// ErrNoRows 代表没有找到数据
	ErrNoRows = errors.New("orm: 未找到数据")

	// ErrInsertZeroRow 代表插入 0 行
	ErrInsertZeroRow = errors.New("orm: 插入 0 行")

	// ErrNoUpdatedColumns 代表没有要更新的列
	ErrNoUpdatedColumns = errors.New("orm: 未指定要更新的列")

	// ErrTooManyReturnedColumns 代表返回的列过多，struct 中没有那么多字段可以接收
	ErrTooManyReturnedColumns = errors.New("orm: 过多列")

	// ErrEmptyInList 代表 IN 后面跟了空列表
	// Spec 里面会把空列表条件直接忽略掉，直接使用 Column API 则会报这个错误
	ErrEmptyInList = errors.New("orm: IN 的取值列表为空")
)

// NewErrUnknownField 返回代表未知字段的错误
// 一般意味着你可能输入的是列名，或者输入了错误的字段名
func NewErrUnknownField(fd string) error {
	return fmt.Errorf("orm: 未知字段 %s", fd)
}

// NewErrUnknownColumn 返回代表未知列名的错误
// 一般意味着你使用了错误的列名
// 注意和 NewErrUnknownField 区别开来
func NewErrUnknownColumn(col string) error {
	return fmt.Errorf("orm: 未知列 %s", col)
}

// NewErrUnsupportedExpressionType 返回一个不支持该 expression 的错误信息
func NewErrUnsupportedExpressionType(exp any) error {
	return fmt.Errorf("orm: 不支持的表达式 %v", exp)
}

// NewErrUnsupportedSelectable 返回一个不支持该检索目标的错误信息
func NewErrUnsupportedSelectable(exp any) error {
	return fmt.Errorf("orm: 不支持的目标列 %v", exp)
}

func NewErrUnsupportedAssignableType(exp any) error {
	return fmt.Errorf("orm: 不支持的赋值表达式类型 %v", exp)
}

func NewErrUnsupportedTable(table any) error {
	return fmt.Errorf("orm: 不支持的 TableReference 类型 %v", table)
}

func NewErrInvalidTagContent(tag string) error {
	return fmt.Errorf("orm: 错误的标签设置: %s", tag)
}

// NewErrUnknownRelation 返回代表未知关联关系的错误
// 字段路径中的中间段必须是用 rel 标签声明过的关联字段
func NewErrUnknownRelation(rel string) error {
	return fmt.Errorf("orm: 未知关联关系 %s", rel)
}

// NewErrUnsupportedRelationPath 代表当前语句不支持关联路径
// 例如 DELETE 和 UPDATE 不能使用 a.b.c 这种跨表字段
func NewErrUnsupportedRelationPath(path string) error {
	return fmt.Errorf("orm: 当前语句不支持关联路径 %s", path)
}

// NewErrBlankField 代表字段名是空白的
func NewErrBlankField(fd string) error {
	return fmt.Errorf("orm: 字段名不能为空白 %q", fd)
}

// NewErrFailedToRollbackTx 事务回滚失败时候的错误
func NewErrFailedToRollbackTx(bizErr error, rbErr error, panicked bool) error {
	return fmt.Errorf("orm: 事务闭包回滚失败，业务错误 %w，回滚错误 %s，是否 panic %t", bizErr, rbErr, panicked)
}
