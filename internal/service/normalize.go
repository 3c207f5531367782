package service

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"AwardSync/internal/model"
)

// NormalizeURL 去掉首尾空白、查询参数和一个结尾斜杠，避免无意义的格式差异被当成变更
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if idx := strings.Index(u, "?"); idx >= 0 {
		u = u[:idx]
	}
	return strings.TrimSuffix(u, "/")
}

// SanitizeField 把任意字段值规范成可比较的字符串：
// 带 url 的结构化引用取规范化 URL，字符串去空白，数字转十进制字符串，其余为空
func SanitizeField(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case model.ImageRef:
		return NormalizeURL(v.URL)
	case *model.ImageRef:
		if v == nil {
			return ""
		}
		return NormalizeURL(v.URL)
	case map[string]any:
		if u, ok := v["url"].(string); ok && u != "" {
			return NormalizeURL(u)
		}
		return ""
	case string:
		return strings.TrimSpace(v)
	case model.FlexString:
		return strings.TrimSpace(v.Text)
	case json.Number:
		return model.FormatNumber(v.String())
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// BuildSlug 小写后把连续的非字母数字替换为单个连字符
func BuildSlug(name string) string {
	if name == "" {
		return ""
	}
	return slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
}

// CanonicalFields 由 Airtable 记录生成要写入 Webflow 的字段
func CanonicalFields(record *model.SourceRecord) *model.AwardFields {
	return &model.AwardFields{
		Name:             record.Name,
		Year:             record.Year,
		Slug:             BuildSlug(record.Name),
		AwardWinnerImage: record.ImageURL,
		AirtableID:       record.ID,
	}
}
