package domain

import "errors"

// 标签页相关错误
var (
	ErrTabNotFound   = errors.New("tab not found")
	ErrGroupNotFound = errors.New("group not found")
)

// 攻击运行相关错误
var (
	ErrAttackRunning    = errors.New("attack already running")
	ErrAttackNotRunning = errors.New("attack not running")
	ErrAttackNotFound   = errors.New("attack not found")
	ErrEmptyTemplate    = errors.New("empty request template")
)

// 载荷相关错误
var (
	ErrInvalidPayloadSet = errors.New("invalid payload set")
	ErrNoPayloads        = errors.New("no payloads to send")
)

// 数据库相关错误
var (
	ErrDatabaseNotInitialized = errors.New("database not initialized")
	ErrRecordNotFound         = errors.New("record not found")
)
