package agent

import "strings"

// entityVocabulary is the curated, bilingual keyword list used for entity
// extraction. Matching is case-insensitive exact substring with no stemming;
// duplicates are removed while preserving first-seen order.
var entityVocabulary = []string{
	// aircraft types
	"drone", "uav", "evtol", "helicopter", "无人机", "直升机",
	// purposes
	"logistics", "patrol", "survey", "tourism", "物流", "巡检", "测绘", "旅游",
	// regions
	"shenzhen", "guangzhou", "zhuhai", "nanshan", "bao'an", "深圳", "广州", "珠海",
	// metrics
	"flight volume", "flights", "sorties", "duration", "distance", "飞行量", "架次", "时长",
	// dimensions
	"year", "month", "quarter", "region", "aircraft type", "年份", "月份", "区域",
	// domain concepts
	"low altitude economy", "airspace", "route", "低空经济", "空域", "航线",
}

// canonicalEntity maps a matched vocabulary term back to its display form.
var canonicalEntity = map[string]string{
	"evtol":     "eVTOL",
	"shenzhen":  "Shenzhen",
	"guangzhou": "Guangzhou",
	"zhuhai":    "Zhuhai",
	"nanshan":   "Nanshan",
	"bao'an":    "Bao'an",
}

// extractEntities returns the vocabulary terms present in the query.
func extractEntities(query string) []string {
	lower := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []string
	for _, term := range entityVocabulary {
		if !strings.Contains(lower, strings.ToLower(term)) {
			continue
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		if canonical, ok := canonicalEntity[term]; ok {
			out = append(out, canonical)
		} else {
			out = append(out, term)
		}
	}
	return out
}
