package intruder

import (
	"testing"

	"raider/internal/logger"
	"raider/pkg/domain"
)

func TestMatchResults(t *testing.T) {
	results := []domain.AttackResult{
		{ID: 1, Response: "HTTP/1.1 200 OK\n\nWelcome admin"},
		{ID: 2, Response: "HTTP/1.1 403 Forbidden\n\nAccess denied"},
		{ID: 3, Response: "HTTP/1.1 200 OK\n\nWelcome guest"},
	}

	matched, err := MatchResults(results, `Welcome \w+`)
	if err != nil {
		t.Fatalf("筛选失败: %v", err)
	}
	if len(matched) != 2 || matched[0] != 1 || matched[1] != 3 {
		t.Errorf("预期命中 [1 3]，实际 %v", matched)
	}

	matched, err = MatchResults(results, `418`)
	if err != nil {
		t.Fatalf("筛选失败: %v", err)
	}
	if len(matched) != 0 {
		t.Errorf("预期无命中，实际 %v", matched)
	}
}

func TestMatchResultsInvalidPattern(t *testing.T) {
	if _, err := MatchResults(nil, `[`); err == nil {
		t.Error("预期非法正则返回错误，实际为 nil")
	}
}

func TestSelectResults(t *testing.T) {
	s := newTestStore()
	id := s.AddTab()
	c := NewController(s, logger.Nop())
	c.AddResult(id, domain.AttackResult{ID: 1, Response: "a"})
	c.AddResult(id, domain.AttackResult{ID: 2, Response: "b"})
	c.AddResult(id, domain.AttackResult{ID: 3, Response: "c"})

	s.SelectResults(id, []int64{1, 3})

	tab := s.Tabs()[0]
	if !tab.Results[0].Selected || tab.Results[1].Selected || !tab.Results[2].Selected {
		t.Errorf("预期选中 1 与 3，实际 %v %v %v",
			tab.Results[0].Selected, tab.Results[1].Selected, tab.Results[2].Selected)
	}

	// 再次筛选覆盖旧选中态
	s.SelectResults(id, []int64{2})
	tab = s.Tabs()[0]
	if tab.Results[0].Selected || !tab.Results[1].Selected || tab.Results[2].Selected {
		t.Errorf("预期仅选中 2，实际 %v %v %v",
			tab.Results[0].Selected, tab.Results[1].Selected, tab.Results[2].Selected)
	}
}
