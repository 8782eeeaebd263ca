package model

import (
	"time"
)

// Setting 用户设置表
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// 预定义的设置 Key
const (
	SettingKeyLanguage        = "language"          // 界面语言
	SettingKeyTheme           = "theme"             // 主题
	SettingKeyWindowBounds    = "window_bounds"     // 窗口大小和位置
	SettingKeyConcurrency     = "attack_concurrency"
	SettingKeyRequestTimeout  = "request_timeout"
	SettingKeyFollowRedirects = "follow_redirects"
)

// UIStateRecord 界面状态表，按模块保存标签页与分组的快照
type UIStateRecord struct {
	// Key 形如 "<module>:<kind>"，例如 "intruder:tabs"
	Key       string    `gorm:"primaryKey" json:"key"`
	StateJSON string    `gorm:"type:text" json:"stateJson"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttackRecord 攻击历史表，一条记录对应一次完成或停止的攻击
type AttackRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AttackID    string    `gorm:"uniqueIndex;not null" json:"attackId"`
	TabID       string    `gorm:"index" json:"tabId"`
	TabName     string    `json:"tabName"`
	AttackType  string    `gorm:"index" json:"attackType"`
	TargetURL   string    `json:"targetUrl"`
	Total       int64     `json:"total"`
	Current     int64     `json:"current"`
	ResultsJSON string    `gorm:"type:text" json:"resultsJson"` // 结果数组 JSON
	StartTime   int64     `gorm:"index" json:"startTime"`
	EndTime     int64     `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
}
