package intruder

import (
	"testing"

	"raider/internal/logger"
	"raider/pkg/domain"
)

// listSet 构造一个 simple-list 载荷集
func listSet(items ...string) domain.PayloadSet {
	return domain.PayloadSet{Type: domain.PayloadSimpleList, Items: items}
}

// nItems 生成 n 个占位载荷
func nItems(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "p"
	}
	return out
}

// TestComputeTotal 测试各攻击类型的总量估算
func TestComputeTotal(t *testing.T) {
	positions := func(n int) []domain.PayloadPosition {
		return make([]domain.PayloadPosition, n)
	}

	tests := []struct {
		name string
		tab  domain.AttackTab
		want int64
	}{
		{
			name: "sniper 位置数乘以第一个载荷集",
			tab: domain.AttackTab{
				AttackType:       domain.AttackSniper,
				PayloadPositions: positions(3),
				PayloadSets:      []domain.PayloadSet{listSet(nItems(5)...)},
			},
			want: 15,
		},
		{
			name: "sniper 无位置按 1 计",
			tab: domain.AttackTab{
				AttackType:  domain.AttackSniper,
				PayloadSets: []domain.PayloadSet{listSet(nItems(7)...)},
			},
			want: 7,
		},
		{
			name: "sniper 空载荷集按兜底值计",
			tab: domain.AttackTab{
				AttackType:       domain.AttackSniper,
				PayloadPositions: positions(2),
			},
			want: 20,
		},
		{
			name: "battering-ram 取第一个载荷集",
			tab: domain.AttackTab{
				AttackType:       domain.AttackBatteringRam,
				PayloadPositions: positions(4),
				PayloadSets:      []domain.PayloadSet{listSet(nItems(6)...)},
			},
			want: 6,
		},
		{
			name: "pitchfork 取最小载荷集",
			tab: domain.AttackTab{
				AttackType:       domain.AttackPitchfork,
				PayloadPositions: positions(2),
				PayloadSets: []domain.PayloadSet{
					listSet(nItems(5)...),
					listSet(nItems(3)...),
				},
			},
			want: 3,
		},
		{
			name: "pitchfork 空载荷集按兜底值参与取小",
			tab: domain.AttackTab{
				AttackType: domain.AttackPitchfork,
				PayloadSets: []domain.PayloadSet{
					listSet(nItems(25)...),
					listSet(),
				},
			},
			want: 10,
		},
		{
			name: "cluster-bomb 取乘积",
			tab: domain.AttackTab{
				AttackType:       domain.AttackClusterBomb,
				PayloadPositions: positions(2),
				PayloadSets: []domain.PayloadSet{
					listSet(nItems(3)...),
					listSet(nItems(4)...),
				},
			},
			want: 12,
		},
		{
			name: "未知类型返回兜底值",
			tab: domain.AttackTab{
				AttackType: domain.AttackType("unknown"),
			},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(&tt.tab); got != tt.want {
				t.Errorf("预期 %d，实际 %d", tt.want, got)
			}
		})
	}
}

// TestAttackLifecycle 测试启动、推进、自动完成的完整生命周期
func TestAttackLifecycle(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	s.UpdateAttackType(id, domain.AttackClusterBomb)
	s.UpdatePayloadPositions(id, []domain.PayloadPosition{{Index: 0}, {Index: 1}})
	s.UpdatePayloadSets(id, []domain.PayloadSet{
		listSet("a", "b", "c"),
		listSet("1", "2", "3", "4"),
	})

	c := NewController(s, logger.Nop())
	clock := int64(1000)
	c.now = func() int64 { clock += 10; return clock }

	total, err := c.Start(id)
	if err != nil {
		t.Fatalf("启动攻击失败: %v", err)
	}
	if total != 12 {
		t.Fatalf("预期总量 12，实际 %d", total)
	}

	tab := s.Tabs()[0]
	if !tab.IsRunning {
		t.Error("启动后应处于运行状态")
	}
	if tab.Progress.StartTime == 0 || tab.Progress.EndTime != 0 {
		t.Error("启动时应写入开始时间且结束时间为空")
	}

	// 运行中再次启动应报错
	if _, err := c.Start(id); err != domain.ErrAttackRunning {
		t.Errorf("预期 ErrAttackRunning，实际 %v", err)
	}

	for i := 0; i < 12; i++ {
		c.AddResult(id, domain.AttackResult{ID: int64(i + 1)})
	}

	tab = s.Tabs()[0]
	if tab.IsRunning {
		t.Error("进度到达总量后应自动完成")
	}
	if tab.Progress.Current != 12 {
		t.Errorf("预期进度 12，实际 %d", tab.Progress.Current)
	}
	if tab.Progress.EndTime == 0 {
		t.Error("自动完成后应写入结束时间")
	}

	// 迟到结果照常追加，但不改写已写入的结束时间
	endTime := tab.Progress.EndTime
	c.AddResult(id, domain.AttackResult{ID: 13})
	tab = s.Tabs()[0]
	if len(tab.Results) != 13 {
		t.Error("迟到结果应照常追加")
	}
	if tab.IsRunning {
		t.Error("迟到结果不应让攻击回到运行状态")
	}
	if tab.Progress.EndTime != endTime {
		t.Error("结束时间只写一次")
	}
}

// TestAttackRestart 测试重新启动会清空旧结果并重置进度
func TestAttackRestart(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	s.UpdatePayloadSets(id, []domain.PayloadSet{listSet("a", "b")})

	c := NewController(s, logger.Nop())
	if _, err := c.Start(id); err != nil {
		t.Fatalf("启动攻击失败: %v", err)
	}
	c.AddResult(id, domain.AttackResult{ID: 1})
	if err := c.Stop(id); err != nil {
		t.Fatalf("停止攻击失败: %v", err)
	}

	if _, err := c.Start(id); err != nil {
		t.Fatalf("重新启动失败: %v", err)
	}

	tab := s.Tabs()[0]
	if len(tab.Results) != 0 {
		t.Error("重新启动应清空旧结果")
	}
	if tab.Progress.Current != 0 || tab.Progress.EndTime != 0 {
		t.Error("重新启动应重置进度")
	}
}

// TestStop 测试停止的边界：未运行报错、结束时间只写一次
func TestStop(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	c := NewController(s, logger.Nop())

	if err := c.Stop(id); err != domain.ErrAttackNotRunning {
		t.Errorf("预期 ErrAttackNotRunning，实际 %v", err)
	}
	if err := c.Stop("missing"); err != domain.ErrTabNotFound {
		t.Errorf("预期 ErrTabNotFound，实际 %v", err)
	}

	if _, err := c.Start(id); err != nil {
		t.Fatalf("启动攻击失败: %v", err)
	}
	if err := c.Stop(id); err != nil {
		t.Fatalf("停止攻击失败: %v", err)
	}

	tab := s.Tabs()[0]
	if tab.IsRunning {
		t.Error("停止后应处于非运行状态")
	}
	if tab.Progress.EndTime == 0 {
		t.Error("停止时应写入结束时间")
	}
}

// TestStartMissingTab 测试对不存在的标签页启动攻击
func TestStartMissingTab(t *testing.T) {
	s := newTestStore()
	c := NewController(s, logger.Nop())
	if _, err := c.Start("missing"); err != domain.ErrTabNotFound {
		t.Errorf("预期 ErrTabNotFound，实际 %v", err)
	}
}
