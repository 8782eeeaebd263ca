package gui

import (
	"raider/internal/storage/model"
	"raider/internal/tabs"
	"raider/internal/viewer"
	"raider/pkg/domain"
)

// TabData 单个标签页数据
type TabData struct {
	Tab *domain.AttackTab `json:"tab"`
}

// TabListData 标签页与分组的全量快照
type TabListData struct {
	Tabs   []*domain.AttackTab `json:"tabs"`
	Groups []domain.TabGroup   `json:"groups"`
}

// GroupData 单个分组数据
type GroupData struct {
	Group domain.TabGroup `json:"group"`
}

// PositionsData 载荷位置数据
type PositionsData struct {
	Positions []domain.PayloadPosition `json:"positions"`
}

// RequestData 请求模板数据
type RequestData struct {
	FullRequest string `json:"fullRequest"`
}

// AttackData 攻击启动数据
type AttackData struct {
	AttackID string `json:"attackId"`
	Total    int64  `json:"total"`
}

// ResultsData 攻击结果列表数据
type ResultsData struct {
	Results  []domain.AttackResult `json:"results"`
	Progress domain.Progress       `json:"progress"`
	Running  bool                  `json:"running"`
}

// ResultViewData 单条结果的展示数据
type ResultViewData struct {
	Result   domain.AttackResult `json:"result"`
	Request  viewer.Message      `json:"request"`
	Response viewer.Message      `json:"response"`
}

// HistoryData 攻击历史数据
type HistoryData struct {
	Records []model.AttackRecord `json:"records"`
	Total   int64                `json:"total"`
}

// SettingsData 设置数据
type SettingsData struct {
	Settings map[string]string `json:"settings"`
}

// SettingData 单个设置数据
type SettingData struct {
	Value string `json:"value"`
}

// GrepData 结果筛选命中的 ID 列表
type GrepData struct {
	Matched []int64 `json:"matched"`
}

// TabIDData 新建标签页返回的 ID
type TabIDData struct {
	TabID string `json:"tabId"`
}

// StateData 界面状态快照数据
type StateData struct {
	StateJSON string `json:"stateJson"`
}

// ColorsData 颜色选项数据
type ColorsData struct {
	Colors []tabs.ColorOption `json:"colors"`
}

// TransformData 编解码结果数据
type TransformData struct {
	Output string `json:"output"`
}

// MessageData 报文展示数据
type MessageData struct {
	Message viewer.Message `json:"message"`
}

// VersionData 版本数据
type VersionData struct {
	Version string `json:"version"`
}
