package service

import "gorm.io/datatypes"

// toJSONMap 维度得分 map 转 JSONB 存储类型
func toJSONMap(scores map[string]float64) datatypes.JSONMap {
	if scores == nil {
		return nil
	}
	m := make(datatypes.JSONMap, len(scores))
	for k, v := range scores {
		m[k] = v
	}
	return m
}

// fromJSONMap JSONB 取出后数值统一还原为 float64
// 键集允许记录间不一致，缺键不补零
func fromJSONMap(m datatypes.JSONMap) map[string]float64 {
	if m == nil {
		return nil
	}
	scores := make(map[string]float64, len(m))
	for k, v := range m {
		switch n := v.(type) {
		case float64:
			scores[k] = n
		case int:
			scores[k] = float64(n)
		case int64:
			scores[k] = float64(n)
		}
	}
	return scores
}
