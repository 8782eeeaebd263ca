// Package payload 负责载荷集展开、处理规则应用与按攻击类型的载荷组合生成。
package payload

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"raider/pkg/domain"
)

// maxGenerated 单个载荷集展开的上限，防止暴力枚举配置把内存耗尽
const maxGenerated = 1_000_000

// Count 返回载荷集展开后的载荷数量，配置不完整时返回 0。
// 生成型载荷集（numbers / brute-force）不做实际展开，只做算术。
func Count(set domain.PayloadSet) int {
	switch set.Type {
	case domain.PayloadSimpleList, domain.PayloadCustom:
		return len(set.Items)
	case domain.PayloadNumbers:
		if set.Numbers == nil || set.Numbers.Step <= 0 || set.Numbers.To < set.Numbers.From {
			return 0
		}
		n := (set.Numbers.To-set.Numbers.From)/set.Numbers.Step + 1
		if n > maxGenerated {
			return maxGenerated
		}
		return int(n)
	case domain.PayloadBruteForce:
		cfg := set.BruteForce
		if cfg == nil || cfg.Charset == "" || cfg.MinLen < 1 || cfg.MaxLen < cfg.MinLen {
			return 0
		}
		base := len([]rune(cfg.Charset))
		total := 0
		size := 1
		for l := 1; l <= cfg.MaxLen; l++ {
			size *= base
			if l >= cfg.MinLen {
				total += size
			}
			if total >= maxGenerated {
				return maxGenerated
			}
		}
		return total
	default:
		return 0
	}
}

// Expand 展开一个载荷集并应用其处理规则与编码，返回最终写入请求的载荷。
// 没有可用载荷时返回 ErrNoPayloads。
func Expand(set domain.PayloadSet) ([]string, error) {
	var raw []string
	switch set.Type {
	case domain.PayloadSimpleList, domain.PayloadCustom:
		raw = append([]string(nil), set.Items...)
	case domain.PayloadNumbers:
		raw = expandNumbers(set.Numbers)
	case domain.PayloadBruteForce:
		raw = expandBruteForce(set.BruteForce)
	default:
		return nil, domain.ErrInvalidPayloadSet
	}
	if len(raw) == 0 {
		return nil, domain.ErrNoPayloads
	}

	out := make([]string, len(raw))
	for i, item := range raw {
		out[i] = process(item, set.Processing)
	}
	return out, nil
}

// expandNumbers 按范围和步长展开数字载荷
func expandNumbers(r *domain.NumberRange) []string {
	if r == nil || r.Step <= 0 || r.To < r.From {
		return nil
	}
	out := make([]string, 0, 64)
	for v := r.From; v <= r.To; v += r.Step {
		out = append(out, strconv.FormatInt(v, 10))
		if len(out) >= maxGenerated {
			break
		}
	}
	return out
}

// expandBruteForce 按字符集与长度范围枚举所有组合。
// 末位变化最快，与数字进位同序。
func expandBruteForce(cfg *domain.BruteForceConfig) []string {
	if cfg == nil || cfg.Charset == "" || cfg.MinLen < 1 || cfg.MaxLen < cfg.MinLen {
		return nil
	}
	charset := []rune(cfg.Charset)
	out := make([]string, 0, 64)

	for length := cfg.MinLen; length <= cfg.MaxLen; length++ {
		indexes := make([]int, length)
		buf := make([]rune, length)
		for {
			for i, idx := range indexes {
				buf[i] = charset[idx]
			}
			out = append(out, string(buf))
			if len(out) >= maxGenerated {
				return out
			}
			// 进位
			pos := length - 1
			for pos >= 0 {
				indexes[pos]++
				if indexes[pos] < len(charset) {
					break
				}
				indexes[pos] = 0
				pos--
			}
			if pos < 0 {
				break
			}
		}
	}
	return out
}

// process 依次应用处理规则，最后按编码配置做 URL 编码
func process(item string, p domain.PayloadProcessing) string {
	for _, rule := range p.Rules {
		item = applyRule(item, rule)
	}
	if p.Encoding.Enabled && p.Encoding.URLEncode {
		item = url.QueryEscape(item)
	}
	return item
}

// applyRule 应用单条处理规则，未知规则原样返回
func applyRule(item string, rule domain.ProcessingRule) string {
	switch rule.Type {
	case domain.RuleAddPrefix:
		return rule.Config["value"] + item
	case domain.RuleAddSuffix:
		return item + rule.Config["value"]
	case domain.RuleToUpper:
		return strings.ToUpper(item)
	case domain.RuleToLower:
		return strings.ToLower(item)
	case domain.RuleMD5:
		sum := md5.Sum([]byte(item))
		return hex.EncodeToString(sum[:])
	case domain.RuleBase64:
		return base64.StdEncoding.EncodeToString([]byte(item))
	default:
		return item
	}
}

// Combinations 按攻击类型生成载荷向量序列，向量长度等于位置数，
// 向量的第 i 个元素替换第 i 个载荷位置：
//   - sniper：逐位置轮流替换，未轮到的位置保留原值
//   - battering-ram：同一载荷写入全部位置
//   - pitchfork：各载荷集并行推进，长度取最短
//   - cluster-bomb：全组合笛卡尔积，末位载荷集变化最快
//
// positions 提供 sniper 模式下未替换位置的原值。
func Combinations(attackType domain.AttackType, positions []domain.PayloadPosition, sets [][]string) ([][]string, error) {
	n := len(positions)
	if n == 0 {
		return nil, domain.ErrNoPayloads
	}
	if len(sets) == 0 || len(sets[0]) == 0 {
		return nil, domain.ErrNoPayloads
	}

	switch attackType {
	case domain.AttackSniper:
		out := make([][]string, 0, n*len(sets[0]))
		for pos := 0; pos < n; pos++ {
			for _, p := range sets[0] {
				vec := make([]string, n)
				for i, position := range positions {
					if i == pos {
						vec[i] = p
					} else {
						vec[i] = position.Value
					}
				}
				out = append(out, vec)
			}
		}
		return out, nil

	case domain.AttackBatteringRam:
		out := make([][]string, 0, len(sets[0]))
		for _, p := range sets[0] {
			vec := make([]string, n)
			for i := range vec {
				vec[i] = p
			}
			out = append(out, vec)
		}
		return out, nil

	case domain.AttackPitchfork:
		if len(sets) < n {
			return nil, domain.ErrInvalidPayloadSet
		}
		min := len(sets[0])
		for _, set := range sets[1:n] {
			if len(set) < min {
				min = len(set)
			}
		}
		out := make([][]string, 0, min)
		for i := 0; i < min; i++ {
			vec := make([]string, n)
			for j := 0; j < n; j++ {
				vec[j] = sets[j][i]
			}
			out = append(out, vec)
		}
		return out, nil

	case domain.AttackClusterBomb:
		if len(sets) < n {
			return nil, domain.ErrInvalidPayloadSet
		}
		total := 1
		for j := 0; j < n; j++ {
			if len(sets[j]) == 0 {
				return nil, domain.ErrNoPayloads
			}
			total *= len(sets[j])
			if total > maxGenerated {
				total = maxGenerated
				break
			}
		}
		out := make([][]string, 0, total)
		indexes := make([]int, n)
		for {
			vec := make([]string, n)
			for j := 0; j < n; j++ {
				vec[j] = sets[j][indexes[j]]
			}
			out = append(out, vec)
			if len(out) >= maxGenerated {
				return out, nil
			}
			pos := n - 1
			for pos >= 0 {
				indexes[pos]++
				if indexes[pos] < len(sets[pos]) {
					break
				}
				indexes[pos] = 0
				pos--
			}
			if pos < 0 {
				break
			}
		}
		return out, nil

	default:
		return nil, domain.ErrInvalidPayloadSet
	}
}

// Apply 把载荷向量写入请求模板。位置按 Start 倒序替换，
// 保证前面位置的偏移不受影响。
func Apply(template string, positions []domain.PayloadPosition, payloads []string) string {
	type repl struct {
		start, end int
		value      string
	}
	repls := make([]repl, 0, len(positions))
	for i, pos := range positions {
		if i >= len(payloads) {
			break
		}
		if pos.Start < 0 || pos.End > len(template) || pos.Start > pos.End {
			continue
		}
		repls = append(repls, repl{start: pos.Start, end: pos.End, value: payloads[i]})
	}
	// 倒序替换
	for i := len(repls) - 1; i >= 0; i-- {
		r := repls[i]
		template = template[:r.start] + r.value + template[r.end:]
	}
	return template
}
