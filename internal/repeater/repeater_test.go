package repeater

import (
	"testing"
)

// TestStoreLifecycle 测试标签页的创建、激活与关闭补位
func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	id1 := s.AddTab("GET / HTTP/1.1\nHost: a\n\n")
	id2 := s.AddTab("GET /b HTTP/1.1\nHost: b\n\n")

	tabs := s.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("预期 2 个标签页，实际 %d", len(tabs))
	}
	if tabs[0].IsActive || !tabs[1].IsActive {
		t.Error("新建的标签页应独占激活")
	}
	if tabs[0].Name != "Repeat 1" || tabs[1].Name != "Repeat 2" {
		t.Errorf("标签页命名错误: %q / %q", tabs[0].Name, tabs[1].Name)
	}

	s.ActivateTab(id1)
	if !s.Tabs()[0].IsActive || s.Tabs()[1].IsActive {
		t.Error("激活应独占")
	}

	s.CloseTab(id1)
	tabs = s.Tabs()
	if len(tabs) != 1 || !tabs[0].IsActive || tabs[0].ID != id2 {
		t.Error("关闭激活页后应激活补位标签页")
	}
}

// TestRequestResponse 测试请求编辑与响应记录
func TestRequestResponse(t *testing.T) {
	s := NewStore()
	id := s.AddTab("GET / HTTP/1.1\nHost: a\n\n")

	s.UpdateRequest(id, "POST / HTTP/1.1\nHost: a\n\nx=1")
	s.SetResponse(id, "HTTP/1.1 200 OK\n\nok")

	tab := s.Tabs()[0]
	if tab.Request != "POST / HTTP/1.1\nHost: a\n\nx=1" {
		t.Errorf("请求未更新: %q", tab.Request)
	}
	if tab.Response != "HTTP/1.1 200 OK\n\nok" {
		t.Errorf("响应未记录: %q", tab.Response)
	}
}

// TestGroups 测试分组创建与归属
func TestGroups(t *testing.T) {
	s := NewStore()
	s.AddTab("")
	gid := s.CreateGroup("API 调试", "#14b8a6")

	if len(s.Groups()) != 1 {
		t.Fatal("分组应创建成功")
	}

	tab := s.Tabs()[0]
	tab.SetTabGroup(gid)
	if tab.TabGroup() != gid {
		t.Error("分组归属未生效")
	}
}
