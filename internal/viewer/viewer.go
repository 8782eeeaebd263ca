// Package viewer 为前端展示准备 HTTP 报文：JSON 美化、
// 报文头体重组与内容类型判断。
package viewer

import (
	"strings"

	"github.com/tidwall/gjson"
)

// PrettyJSON 美化 JSON 文本。输入不是合法 JSON 时原样返回。
func PrettyJSON(raw string) string {
	if !gjson.Valid(raw) {
		return raw
	}
	return strings.TrimRight(gjson.Get(raw, "@pretty").Raw, "\n")
}

// Message 一条拆好的 HTTP 报文
type Message struct {
	Headers string `json:"headers"`
	Body    string `json:"body"`
	Pretty  string `json:"pretty"` // 主体为 JSON 时的美化版本，否则为空
}

// Split 把原始报文拆成头部与主体；主体是 JSON 时附带美化版本
func Split(raw string) Message {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	idx := strings.Index(text, "\n\n")
	msg := Message{}
	if idx == -1 {
		msg.Headers = strings.TrimSpace(text)
	} else {
		msg.Headers = strings.TrimSpace(text[:idx])
		msg.Body = strings.TrimSpace(text[idx+2:])
	}
	if isJSONBody(msg.Headers, msg.Body) {
		msg.Pretty = PrettyJSON(msg.Body)
	}
	return msg
}

// FromParts 由已拆好的头部与主体构造报文；主体是 JSON 时附带美化版本
func FromParts(headers, body string) Message {
	msg := Message{Headers: headers, Body: body}
	if isJSONBody(msg.Headers, msg.Body) {
		msg.Pretty = PrettyJSON(msg.Body)
	}
	return msg
}

// isJSONBody 判断主体是否为 JSON：按首字符粗判形状，
// 顶层标量等无法从形状判断的主体退回 Content-Type
func isJSONBody(headers, body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return false
	}
	if first := trimmed[0]; first == '{' || first == '[' {
		return gjson.Valid(trimmed)
	}
	contentType := strings.ToLower(HeaderValue(headers, "Content-Type"))
	return strings.Contains(contentType, "json") && gjson.Valid(trimmed)
}

// HeaderValue 从头部文本中取指定头的值，名称不区分大小写
func HeaderValue(headers, name string) string {
	for _, line := range strings.Split(headers, "\n") {
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
			return strings.TrimSpace(line[idx+1:])
		}
	}
	return ""
}
