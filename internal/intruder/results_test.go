package intruder

import (
	"testing"
)

// TestSplitResponse 测试响应文本按首个空行切分
func TestSplitResponse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantHeaders string
		wantBody    string
	}{
		{
			name:        "转义换行恢复后切分",
			raw:         `HTTP/1.1 200 OK\nHost: a\nContent-Length: 1\n\nX`,
			wantHeaders: "HTTP/1.1 200 OK\nHost: a\nContent-Length: 1",
			wantBody:    "X",
		},
		{
			name:        "没有空行时整段按头部处理",
			raw:         `HTTP/1.1 302 Found\nLocation: /login`,
			wantHeaders: "HTTP/1.1 302 Found\nLocation: /login",
			wantBody:    "",
		},
		{
			name:        "主体中的空行不再切分",
			raw:         "A: 1\n\nline1\n\nline2",
			wantHeaders: "A: 1",
			wantBody:    "line1\n\nline2",
		},
		{
			name:        "空输入",
			raw:         "",
			wantHeaders: "",
			wantBody:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers, body := SplitResponse(tt.raw)
			if headers != tt.wantHeaders {
				t.Errorf("头部预期 %q，实际 %q", tt.wantHeaders, headers)
			}
			if body != tt.wantBody {
				t.Errorf("主体预期 %q，实际 %q", tt.wantBody, body)
			}
		})
	}
}

// TestFormatResult 测试历史数据的形状纠正
func TestFormatResult(t *testing.T) {
	// id 为字符串、payload 为单个字符串的旧数据
	got := FormatResult(`{"id":"42","payload":"admin","status":200,"length":1024,"time":35,"timestamp":1700000000000}`)

	if got.ID != 42 {
		t.Errorf("id 应纠正为数字 42，实际 %d", got.ID)
	}
	if len(got.Payload) != 1 || got.Payload[0] != "admin" {
		t.Errorf("payload 应纠正为数组，实际 %v", got.Payload)
	}
	if got.Status != 200 || got.Length != 1024 || got.TimeMs != 35 {
		t.Error("数值字段解析错误")
	}
	if got.Time != 1700000000000 {
		t.Errorf("时间戳预期 1700000000000，实际 %d", got.Time)
	}

	// 已是规范形状的数据原样通过
	got = FormatResult(`{"id":7,"payload":["a","b"],"color":"#ef4444","selected":true}`)
	if got.ID != 7 || len(got.Payload) != 2 || got.Payload[1] != "b" {
		t.Error("规范形状的数据应原样通过")
	}
	if got.Color != "#ef4444" || !got.Selected {
		t.Error("颜色与选中标记解析错误")
	}

	// 缺失 payload 时给空数组
	got = FormatResult(`{"id":1}`)
	if got.Payload == nil || len(got.Payload) != 0 {
		t.Error("缺失 payload 时应给空数组")
	}
}

// TestFormatResults 测试数组规范化
func TestFormatResults(t *testing.T) {
	got := FormatResults(`[{"id":"1","payload":"a"},{"id":2,"payload":["b"]}]`)
	if len(got) != 2 {
		t.Fatalf("预期 2 条结果，实际 %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Error("id 纠正错误")
	}

	if got := FormatResults(`{"id":1}`); len(got) != 0 {
		t.Error("非数组输入应返回空切片")
	}
}
