package intruder

import (
	"strings"

	"github.com/tidwall/gjson"

	"raider/pkg/domain"
)

// SplitResponse 把结果里保存的原始响应文本拆成头部与主体。
// 存储层会把换行符转义为字面量 `\n`，这里先恢复，再按第一个空行切分；
// 没有空行时整段按头部处理，主体为空。
func SplitResponse(raw string) (headers, body string) {
	text := strings.ReplaceAll(raw, `\n`, "\n")
	idx := strings.Index(text, "\n\n")
	if idx == -1 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:idx]), strings.TrimSpace(text[idx+2:])
}

// FormatResult 把一条结果的 JSON 规范化为标准结构。
// 历史数据里 id 可能是字符串、payload 可能是单个字符串而非数组，
// 这里统一纠正，保证上层只处理一种形状。
func FormatResult(raw string) domain.AttackResult {
	j := gjson.Parse(raw)

	result := domain.AttackResult{
		ID:       j.Get("id").Int(),
		Status:   int(j.Get("status").Int()),
		Length:   int(j.Get("length").Int()),
		TimeMs:   j.Get("time").Int(),
		Time:     j.Get("timestamp").Int(),
		Request:  j.Get("request").String(),
		Response: j.Get("response").String(),
		Color:    j.Get("color").String(),
		Selected: j.Get("selected").Bool(),
	}

	payload := j.Get("payload")
	switch {
	case payload.IsArray():
		for _, item := range payload.Array() {
			result.Payload = append(result.Payload, item.String())
		}
	case payload.Exists():
		result.Payload = []string{payload.String()}
	default:
		result.Payload = []string{}
	}
	return result
}

// FormatResults 规范化一个结果数组的 JSON，非数组输入返回空切片
func FormatResults(raw string) []domain.AttackResult {
	j := gjson.Parse(raw)
	if !j.IsArray() {
		return []domain.AttackResult{}
	}
	items := j.Array()
	out := make([]domain.AttackResult, 0, len(items))
	for _, item := range items {
		out = append(out, FormatResult(item.Raw))
	}
	return out
}
