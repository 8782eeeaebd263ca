package intruder

import (
	"raider/internal/regexutil"
	"raider/pkg/domain"
)

// grepPatterns 结果筛选共享的正则缓存，同一模式只编译一次
var grepPatterns = regexutil.New()

// MatchResults 在响应报文上执行正则筛选，返回匹配的结果 ID 列表。
// 模式非法时返回编译错误。
func MatchResults(results []domain.AttackResult, pattern string) ([]int64, error) {
	re, err := grepPatterns.Get(pattern)
	if err != nil {
		return nil, err
	}

	var matched []int64
	for _, result := range results {
		if re.MatchString(result.Response) {
			matched = append(matched, result.ID)
		}
	}
	return matched, nil
}
