package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// SourceRecord Airtable 中的一条获奖记录（只读快照）
type SourceRecord struct {
	ID       string     // Airtable 记录ID，即 Webflow 侧的 airtableid
	Name     string     // 获奖者姓名
	Year     FlexString // 获奖年份
	ImageURL string     // 获奖图片地址，可为空
}

// AwardFields 写入 Webflow 的规范字段
type AwardFields struct {
	Name             string     `json:"name"`
	Year             FlexString `json:"year"` // 数字年份按数字写出
	Slug             string     `json:"slug"`
	AwardWinnerImage string     `json:"award-winner-image"`
	AirtableID       string     `json:"airtableid"`
}

// FlexString 兼容 JSON 数字与字符串：Text 为比较用的十进制文本（2020 与 "2020" 相同），
// Numeric 记录原值是否为数字，写回 Webflow 时保持原来的 JSON 类型
type FlexString struct {
	Text    string
	Numeric bool
}

// TextValue 文本值
func TextValue(s string) FlexString {
	return FlexString{Text: s}
}

// NumberValue 数字值；s 不是合法数字时退化为文本
func NumberValue(s string) FlexString {
	s = strings.TrimSpace(s)
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return FlexString{Text: s}
	}
	return FlexString{Text: FormatNumber(s), Numeric: true}
}

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexString{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = TextValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = NumberValue(n.String())
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if f.Numeric {
		return []byte(f.Text), nil
	}
	return json.Marshal(f.Text)
}

func (f FlexString) String() string { return f.Text }

// FormatNumber 数字字符串去掉多余的小数零："2020.0" → "2020"；非数字原样返回
func FormatNumber(s string) string {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImageRef Webflow 图片字段：读取时是 {fileId,url,alt} 对象，旧数据可能是纯 URL 字符串
type ImageRef struct {
	FileID string `json:"fileId,omitempty"`
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
}

func (i *ImageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = ImageRef{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = ImageRef{URL: s}
		return nil
	}
	type plain ImageRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*i = ImageRef(p)
	return nil
}
