package gui

import (
	"encoding/json"
	"errors"
	"regexp/syntax"
	"strings"

	"raider/pkg/domain"
	"raider/pkg/errx"
)

// 错误码常量
const (
	CodeTabNotFound      = "TAB_NOT_FOUND"
	CodeGroupNotFound    = "GROUP_NOT_FOUND"
	CodeAttackRunning    = "ATTACK_RUNNING"
	CodeAttackNotRunning = "ATTACK_NOT_RUNNING"
	CodeAttackNotFound   = "ATTACK_NOT_FOUND"
	CodeEmptyTemplate    = "EMPTY_TEMPLATE"
	CodeInvalidPayload   = "INVALID_PAYLOAD_SET"
	CodeNoPayloads       = "NO_PAYLOADS"
	CodeNetworkError     = "NETWORK_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeDatabaseError    = "DATABASE_ERROR"
	CodeUnknown          = "UNKNOWN_ERROR"
)

// 错误映射表（仅返回错误码，前端根据错误码进行国际化）
var errorMappings = map[error]string{
	domain.ErrTabNotFound:            CodeTabNotFound,
	domain.ErrGroupNotFound:          CodeGroupNotFound,
	domain.ErrAttackRunning:          CodeAttackRunning,
	domain.ErrAttackNotRunning:       CodeAttackNotRunning,
	domain.ErrAttackNotFound:         CodeAttackNotFound,
	domain.ErrEmptyTemplate:          CodeEmptyTemplate,
	domain.ErrInvalidPayloadSet:      CodeInvalidPayload,
	domain.ErrNoPayloads:             CodeNoPayloads,
	domain.ErrDatabaseNotInitialized: CodeDatabaseError,
}

// translateError 将领域错误转换为错误码（前端根据错误码进行国际化）
func (a *App) translateError(err error) (code, message string) {
	if err == nil {
		return "", ""
	}

	for domainErr, errorCode := range errorMappings {
		if errors.Is(err, domainErr) {
			a.log.Err(err, "业务错误", "code", errorCode)
			return errorCode, ""
		}
	}

	// 携带错误码的分层错误直接透传自身错误码
	var coded *errx.Error
	if errors.As(err, &coded) {
		a.log.Err(err, "业务错误", "code", string(coded.Code))
		return string(coded.Code), coded.Msg
	}

	// 处理网络相关错误
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "no such host") {
		a.log.Err(err, "网络连接错误")
		return CodeNetworkError, ""
	}

	if strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") {
		a.log.Err(err, "网络超时")
		return CodeNetworkError, ""
	}

	// 处理 JSON 解析错误
	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		a.log.Err(err, "JSON解析错误")
		return CodeInvalidInput, ""
	}

	// 处理正则语法错误
	var reErr *syntax.Error
	if errors.As(err, &reErr) {
		a.log.Err(err, "正则表达式语法错误")
		return CodeInvalidInput, ""
	}

	// 未知错误
	a.log.Err(err, "未知错误")
	return CodeUnknown, err.Error()
}
