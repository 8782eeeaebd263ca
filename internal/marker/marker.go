// Package marker 负责在原始请求模板中扫描、包裹和清除载荷标记。
package marker

import (
	"strings"

	"raider/pkg/domain"
)

// DefaultMarker 载荷位置提取使用的默认标记字符
const DefaultMarker = "$"

// WrapMarker 编辑器包裹选区使用的标记字符
const WrapMarker = "§"

// ExtractPositions 从左到右扫描 text 中成对出现的标记，产出结构化的载荷位置。
// 每对标记 [i, j) 产出一个位置，value 为去掉标记后的夹心文本。
// 末尾残留的未配对标记不产出位置，扫描就此停止（文档化的边界情形，非错误）。
func ExtractPositions(text string, payloadMarker string) []domain.PayloadPosition {
	if payloadMarker == "" {
		payloadMarker = DefaultMarker
	}

	positions := make([]domain.PayloadPosition, 0)
	markerLen := len(payloadMarker)
	index := strings.Index(text, payloadMarker)
	positionIndex := 0

	for index != -1 {
		rest := text[index+markerLen:]
		next := strings.Index(rest, payloadMarker)
		if next == -1 {
			break
		}
		endIndex := index + markerLen + next

		positions = append(positions, domain.PayloadPosition{
			Start:     index,
			End:       endIndex + markerLen,
			Value:     text[index+markerLen : endIndex],
			ParamName: inferParamName(text, index),
			Index:     positionIndex,
		})
		positionIndex++

		after := text[endIndex+markerLen:]
		n := strings.Index(after, payloadMarker)
		if n == -1 {
			break
		}
		index = endIndex + markerLen + n
	}

	return positions
}

// inferParamName 对标记前的当前行做启发式的参数名推断。
// 行内含 ':' 视为请求头，取首个 ':' 之前；含 '=' 视为查询或表单参数，
// 取首个 '=' 之前。两者都没有则返回空。尽力而为，病态输入下可能误判。
func inferParamName(text string, markerIndex int) string {
	beforeMarker := strings.TrimSpace(text[:markerIndex])
	lastLine := beforeMarker
	if i := strings.LastIndex(beforeMarker, "\n"); i != -1 {
		lastLine = beforeMarker[i+1:]
	}

	if i := strings.Index(lastLine, ":"); i != -1 {
		return strings.TrimSpace(lastLine[:i])
	}
	// 查询串或表单参数：键名从最后一个 ?、& 或空格之后开始
	if i := strings.LastIndex(lastLine, "="); i != -1 {
		key := lastLine[:i]
		if j := strings.LastIndexAny(key, "?& "); j != -1 {
			key = key[j+1:]
		}
		return strings.TrimSpace(key)
	}
	return ""
}

// WrapSelection 在 request 中 selected 的首次出现处包裹标记字符。
// selected 不存在时原样返回。
func WrapSelection(request, selected string) string {
	if selected == "" || !strings.Contains(request, selected) {
		return request
	}
	return strings.Replace(request, selected, WrapMarker+selected+WrapMarker, 1)
}

// ClearMarkers 无条件移除 request 中所有的标记字符。
// 若正文内容本身含有标记字符则会一并丢失（文档化的限制，产品意图未定）。
func ClearMarkers(request string) string {
	return strings.ReplaceAll(request, WrapMarker, "")
}
