package domain

// TabID 标签页ID
type TabID string

// GroupID 分组ID，空串表示未分组
type GroupID string

// AttackID 攻击运行ID，用于事件关联
type AttackID string

// AttackType 攻击类型，决定载荷集与载荷位置的组合策略
type AttackType string

const (
	AttackSniper       AttackType = "sniper"        // 逐位置轮替，共用一个载荷集
	AttackBatteringRam AttackType = "battering-ram" // 同一载荷填充所有位置
	AttackPitchfork    AttackType = "pitchfork"     // 各载荷集并行推进
	AttackClusterBomb  AttackType = "cluster-bomb"  // 全部载荷集的笛卡尔积
)

// PayloadSetType 载荷集类型
type PayloadSetType string

const (
	PayloadSimpleList PayloadSetType = "simple-list"
	PayloadNumbers    PayloadSetType = "numbers"
	PayloadBruteForce PayloadSetType = "brute-force"
	PayloadCustom     PayloadSetType = "custom"
)

// PayloadPosition 请求模板中的一个载荷位置
// Start/End 是提取时刻 fullRequest 文本中的字符偏移，模板一经编辑即失效，
// 必须整体重新提取，不做增量修补
type PayloadPosition struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Value     string `json:"value"`
	ParamName string `json:"paramName,omitempty"` // 启发式推断，可能为空
	Index     int    `json:"index"`               // 扫描顺序序号，用于与载荷集对应
}

// ProcessingRule 载荷处理规则，按顺序应用于每个载荷值
type ProcessingRule struct {
	ID     int               `json:"id"`
	Type   string            `json:"type"`
	Config map[string]string `json:"config,omitempty"`
}

// 处理规则类型
const (
	RuleAddPrefix = "add-prefix"
	RuleAddSuffix = "add-suffix"
	RuleToUpper   = "to-upper"
	RuleToLower   = "to-lower"
	RuleMD5       = "md5"
	RuleBase64    = "base64"
)

// EncodingConfig 载荷替换前的编码配置
type EncodingConfig struct {
	Enabled      bool   `json:"enabled"`
	URLEncode    bool   `json:"urlEncode"`
	CharacterSet string `json:"characterSet"`
}

// NumberRange 数字类型载荷集的生成范围
type NumberRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
	Step int64 `json:"step"`
}

// BruteForceConfig 暴力枚举类型载荷集的生成配置
type BruteForceConfig struct {
	Charset string `json:"charset"`
	MinLen  int    `json:"minLen"`
	MaxLen  int    `json:"maxLen"`
}

// PayloadProcessing 载荷处理配置
type PayloadProcessing struct {
	Rules    []ProcessingRule `json:"rules"`
	Encoding EncodingConfig   `json:"encoding"`
}

// PayloadSet 一个有序的候选载荷集合及其处理规则
type PayloadSet struct {
	ID         int               `json:"id"`
	Type       PayloadSetType    `json:"type"`
	Items      []string          `json:"items"`
	Numbers    *NumberRange      `json:"numbers,omitempty"`    // 仅 numbers 类型使用
	BruteForce *BruteForceConfig `json:"bruteForce,omitempty"` // 仅 brute-force 类型使用
	Processing PayloadProcessing `json:"processing"`
}

// Target 攻击目标信息
// FullRequest 是唯一权威的可编辑原始请求文本，其余字段是便捷投影，可能过期
type Target struct {
	URL         string `json:"url"`
	Method      string `json:"method"`
	Headers     string `json:"headers"`
	Body        string `json:"body"`
	FullRequest string `json:"fullRequest"`
}

// Progress 攻击进度
// Current 在运行期间单调不减；EndTime 在运行结束时设置且仅设置一次，0 表示尚未设置
type Progress struct {
	Total     int64 `json:"total"`
	Current   int64 `json:"current"`
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// AttackResult 单次请求的攻击结果，全仓库唯一的规范结果类型
// Payload 与消耗的载荷位置按顺序一一对应
type AttackResult struct {
	ID       int64    `json:"id"`
	Payload  []string `json:"payload"`
	Status   int      `json:"status"`
	Length   int      `json:"length"`
	TimeMs   int64    `json:"timeMs"`
	Time     int64    `json:"timestamp"`
	Request  string   `json:"request"`
	Response string   `json:"response"`
	Color    string   `json:"color,omitempty"`
	Selected bool     `json:"selected,omitempty"`
}

// AttackTab 一个打开的攻击会话标签页
type AttackTab struct {
	ID               TabID             `json:"id"`
	Name             string            `json:"name"`
	Color            string            `json:"color"`
	GroupID          GroupID           `json:"groupId"` // 弱引用，展示前需对照现存分组校验
	Target           Target            `json:"target"`
	AttackType       AttackType        `json:"attackType"`
	PayloadPositions []PayloadPosition `json:"payloadPositions"`
	PayloadSets      []PayloadSet      `json:"payloadSets"`
	Results          []AttackResult    `json:"results"`
	IsActive         bool              `json:"isActive"`
	IsRunning        bool              `json:"isRunning"`
	Progress         Progress          `json:"progress"`
}

// Clone 返回载荷集的深拷贝
func (s PayloadSet) Clone() PayloadSet {
	c := s
	c.Items = make([]string, len(s.Items))
	copy(c.Items, s.Items)
	if s.Numbers != nil {
		n := *s.Numbers
		c.Numbers = &n
	}
	if s.BruteForce != nil {
		b := *s.BruteForce
		c.BruteForce = &b
	}
	c.Processing.Rules = make([]ProcessingRule, len(s.Processing.Rules))
	for i, r := range s.Processing.Rules {
		c.Processing.Rules[i] = r
		if r.Config != nil {
			cfg := make(map[string]string, len(r.Config))
			for k, v := range r.Config {
				cfg[k] = v
			}
			c.Processing.Rules[i].Config = cfg
		}
	}
	return c
}

// Clone 返回标签页的深拷贝，嵌套切片与配置全部独立
func (t *AttackTab) Clone() *AttackTab {
	c := *t
	c.PayloadPositions = make([]PayloadPosition, len(t.PayloadPositions))
	copy(c.PayloadPositions, t.PayloadPositions)
	c.PayloadSets = make([]PayloadSet, len(t.PayloadSets))
	for i, set := range t.PayloadSets {
		c.PayloadSets[i] = set.Clone()
	}
	c.Results = make([]AttackResult, len(t.Results))
	for i, r := range t.Results {
		c.Results[i] = r
		c.Results[i].Payload = make([]string, len(r.Payload))
		copy(c.Results[i].Payload, r.Payload)
	}
	return &c
}

// TabGroup 标签页分组
// 分组到标签页的关系始终由过滤标签页计算得出，分组自身不持有反向集合
type TabGroup struct {
	ID    GroupID `json:"id"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
}

// AttackSpec 提交给执行器的攻击快照
type AttackSpec struct {
	Attack     AttackID          `json:"attack"`
	Tab        TabID             `json:"tab"`
	Target     Target            `json:"target"`
	Template   string            `json:"template"`
	AttackType AttackType        `json:"attackType"`
	Positions  []PayloadPosition `json:"positions"`
	Sets       []PayloadSet      `json:"sets"`
}
