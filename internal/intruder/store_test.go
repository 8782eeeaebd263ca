package intruder

import (
	"encoding/json"
	"sync"
	"testing"

	"raider/internal/logger"
	"raider/pkg/domain"
)

// newTestStore 创建测试用存储
func newTestStore() *Store {
	return NewStore(logger.Nop())
}

// TestAddTab 测试新建标签页：默认模板、默认载荷集、独占激活
func TestAddTab(t *testing.T) {
	s := newTestStore()

	id1 := s.AddTab()
	id2 := s.AddTab()

	tabs := s.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("预期 2 个标签页，实际 %d", len(tabs))
	}
	if tabs[0].ID != id1 || tabs[1].ID != id2 {
		t.Error("标签页应按创建顺序排列")
	}
	if tabs[0].IsActive {
		t.Error("新建第二个标签页后，第一个应变为非激活")
	}
	if !tabs[1].IsActive {
		t.Error("新建的标签页应处于激活状态")
	}
	if tabs[0].Name != "Attack 1" || tabs[1].Name != "Attack 2" {
		t.Errorf("标签页命名错误：%q / %q", tabs[0].Name, tabs[1].Name)
	}
	if tabs[1].Target.FullRequest == "" {
		t.Error("新标签页应带默认请求模板")
	}
	if len(tabs[1].PayloadSets) != 1 || tabs[1].PayloadSets[0].Type != domain.PayloadSimpleList {
		t.Error("新标签页应带一个空的 simple-list 载荷集")
	}
}

// TestCloseTab 测试关闭激活页时的补位规则：同一下标，越界取末位
func TestCloseTab(t *testing.T) {
	s := newTestStore()
	id1 := s.AddTab()
	id2 := s.AddTab()
	id3 := s.AddTab()

	// 关闭中间的激活页，下标 1 的幸存者补位
	s.ActivateTab(id2)
	s.CloseTab(id2)

	tabs := s.Tabs()
	if len(tabs) != 2 {
		t.Fatalf("预期 2 个标签页，实际 %d", len(tabs))
	}
	if !tabs[1].IsActive || tabs[1].ID != id3 {
		t.Error("关闭下标 1 的激活页后，新下标 1 的标签页应被激活")
	}

	// 关闭末位激活页，下标越界，回落到新的末位
	s.CloseTab(id3)
	tabs = s.Tabs()
	if len(tabs) != 1 || !tabs[0].IsActive || tabs[0].ID != id1 {
		t.Error("关闭末位激活页后，应激活剩余的最后一个标签页")
	}

	// 全部关闭后没有激活页
	s.CloseTab(id1)
	if _, ok := s.ActiveTab(); ok {
		t.Error("没有标签页时不应存在激活页")
	}

	// 关闭不存在的标签页应静默忽略
	s.CloseTab("missing")
}

// TestCloseInactiveTab 测试关闭非激活页不影响当前激活页
func TestCloseInactiveTab(t *testing.T) {
	s := newTestStore()
	id1 := s.AddTab()
	id2 := s.AddTab()

	s.CloseTab(id1)

	active, ok := s.ActiveTab()
	if !ok || active.ID != id2 {
		t.Error("关闭非激活页不应改变激活页")
	}
}

// TestActivateTab 测试单一激活不变量
func TestActivateTab(t *testing.T) {
	s := newTestStore()
	id1 := s.AddTab()
	s.AddTab()
	s.AddTab()

	s.ActivateTab(id1)

	count := 0
	for _, tab := range s.Tabs() {
		if tab.IsActive {
			count++
			if tab.ID != id1 {
				t.Error("激活了错误的标签页")
			}
		}
	}
	if count != 1 {
		t.Errorf("预期恰好 1 个激活页，实际 %d", count)
	}
}

// TestRenameAndColor 测试重命名与改色
func TestRenameAndColor(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()

	s.RenameTab(id, "登录爆破")
	s.ChangeTabColor(id, "#ef4444")

	tab := s.Tabs()[0]
	if tab.Name != "登录爆破" {
		t.Errorf("预期名称 登录爆破，实际 %q", tab.Name)
	}
	if tab.Color != "#ef4444" {
		t.Errorf("预期颜色 #ef4444，实际 %q", tab.Color)
	}
}

// TestReorderTabs 测试整体重排与单一激活不变量的重申
func TestReorderTabs(t *testing.T) {
	s := newTestStore()
	id1 := s.AddTab()
	id2 := s.AddTab()
	id3 := s.AddTab()

	s.ReorderTabs([]domain.TabID{id3, id1, id2})

	tabs := s.Tabs()
	if tabs[0].ID != id3 || tabs[1].ID != id1 || tabs[2].ID != id2 {
		t.Error("重排后顺序不符")
	}

	// 顺序中缺失的标签页保留在末尾
	s.ReorderTabs([]domain.TabID{id2})
	tabs = s.Tabs()
	if len(tabs) != 3 || tabs[0].ID != id2 {
		t.Error("顺序中缺失的标签页应附加在末尾")
	}
}

// TestChangeTabGroup 测试分组归属变更与颜色同步
func TestChangeTabGroup(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	gid := s.CreateGroup("扫描任务", "#10b981")

	s.ChangeTabGroup(id, gid)

	tab := s.Tabs()[0]
	if tab.GroupID != gid {
		t.Error("标签页应归入新分组")
	}
	if tab.Color != "#10b981" {
		t.Errorf("入组时应同步分组颜色，实际 %q", tab.Color)
	}

	// 移出分组时颜色保持不变
	s.ChangeTabGroup(id, "")
	tab = s.Tabs()[0]
	if tab.GroupID != "" {
		t.Error("标签页应移出分组")
	}
	if tab.Color != "#10b981" {
		t.Error("移出分组不应改变颜色")
	}
}

// TestDeleteGroup 测试删除分组时标签页回落为未分组
func TestDeleteGroup(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	gid := s.CreateGroup("临时", "#3b82f6")
	s.ChangeTabGroup(id, gid)

	s.DeleteGroup(gid)

	if len(s.Groups()) != 0 {
		t.Error("分组应被删除")
	}
	tab := s.Tabs()[0]
	if tab.GroupID != "" {
		t.Error("删除分组后标签页应回落为未分组")
	}
	if len(s.Tabs()) != 1 {
		t.Error("删除分组不应删除标签页")
	}
}

// TestPayloadSetAutoGrow 测试按下标写入时载荷集自动扩容
func TestPayloadSetAutoGrow(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()

	s.AddPayloadItem(id, 2, "admin")

	tab := s.Tabs()[0]
	if len(tab.PayloadSets) != 3 {
		t.Fatalf("预期扩容到 3 个载荷集，实际 %d", len(tab.PayloadSets))
	}
	if len(tab.PayloadSets[1].Items) != 0 {
		t.Error("补齐的中间载荷集应为空")
	}
	if len(tab.PayloadSets[2].Items) != 1 || tab.PayloadSets[2].Items[0] != "admin" {
		t.Error("载荷项应落在下标 2 的载荷集里")
	}
	if tab.PayloadSets[2].ID != 3 {
		t.Errorf("补齐的载荷集 ID 应顺延，实际 %d", tab.PayloadSets[2].ID)
	}
}

// TestPayloadItems 测试载荷项的增删清
func TestPayloadItems(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()

	s.AddPayloadItem(id, 0, "a")
	s.AddPayloadItem(id, 0, "b")
	s.AddPayloadItem(id, 0, "c")
	s.RemovePayloadItem(id, 0, 1)

	items := s.Tabs()[0].PayloadSets[0].Items
	if len(items) != 2 || items[0] != "a" || items[1] != "c" {
		t.Errorf("预期 [a c]，实际 %v", items)
	}

	// 越界删除静默忽略
	s.RemovePayloadItem(id, 0, 9)
	s.RemovePayloadItem(id, 9, 0)

	s.ClearPayloadItems(id, 0)
	if len(s.Tabs()[0].PayloadSets[0].Items) != 0 {
		t.Error("清空后载荷集应为空")
	}
}

// TestSubscribe 测试每个原子变更通知一次订阅者
func TestSubscribe(t *testing.T) {
	s := newTestStore()
	count := 0
	s.Subscribe(func() { count++ })

	id := s.AddTab()
	s.RenameTab(id, "x")
	s.CloseTab(id)

	if count != 3 {
		t.Errorf("预期通知 3 次，实际 %d", count)
	}

	// 无效变更不通知
	s.RenameTab("missing", "y")
	if count != 3 {
		t.Error("针对不存在标签页的变更不应通知订阅者")
	}
}

// TestTabsSnapshotIsolation 测试 Tabs 返回的快照与存储互不影响
func TestTabsSnapshotIsolation(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	c := NewController(s, logger.Nop())
	c.AddResult(id, domain.AttackResult{ID: 1, Payload: []string{"x"}})

	snapshot := s.Tabs()
	snapshot[0].Name = "edited"
	snapshot[0].Results[0].Color = "#ef4444"
	snapshot[0].PayloadSets[0].Items = append(snapshot[0].PayloadSets[0].Items, "injected")

	fresh := s.Tabs()[0]
	if fresh.Name == "edited" {
		t.Error("修改快照不应影响存储中的标签页名称")
	}
	if fresh.Results[0].Color != "" {
		t.Error("修改快照不应影响存储中的结果颜色")
	}
	if len(fresh.PayloadSets[0].Items) != 0 {
		t.Error("修改快照不应影响存储中的载荷集")
	}
}

// TestConcurrentResultsWithSubscriber 测试多协程追加结果时订阅者
// 能安全序列化快照，且不丢结果
func TestConcurrentResultsWithSubscriber(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	c := NewController(s, logger.Nop())

	s.Subscribe(func() {
		if _, err := json.Marshal(s.Tabs()); err != nil {
			t.Errorf("快照序列化失败: %v", err)
		}
	})

	const workers = 4
	const perWorker = 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				c.AddResult(id, domain.AttackResult{
					ID:      int64(base + i),
					Payload: []string{"p"},
				})
			}
		}(w * perWorker)
	}
	wg.Wait()

	if got := len(s.Tabs()[0].Results); got != workers*perWorker {
		t.Errorf("预期 %d 条结果，实际 %d", workers*perWorker, got)
	}
}

// TestSetResultColor 测试结果标记颜色
func TestSetResultColor(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	c := NewController(s, logger.Nop())
	if _, err := c.Start(id); err != nil {
		t.Fatalf("启动攻击失败: %v", err)
	}
	c.AddResult(id, domain.AttackResult{ID: 1, Payload: []string{"x"}})

	s.SetResultColor(id, 1, "#f59e0b")

	if got := s.Tabs()[0].Results[0].Color; got != "#f59e0b" {
		t.Errorf("预期颜色 #f59e0b，实际 %q", got)
	}
}
