package errors

import "errors"

// 跨模块共享的基础设施级错误，业务错误由各 Service 自行声明

// ErrOptimisticLock 乐观锁冲突：version 已过期，记录被并发修改
var ErrOptimisticLock = errors.New("记录已被并发修改，请刷新后重试")
