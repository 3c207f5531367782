package service

import (
	"AwardSync/internal/model"
)

// Duplicate 同一 airtableid 被多个 Webflow 条目引用
type Duplicate struct {
	AirtableID      string `json:"airtable_id"`
	KeptItemID      string `json:"kept_item_id"`
	DuplicateItemID string `json:"duplicate_item_id"`
}

// Correlation 一轮同步的关联结果
type Correlation struct {
	TargetByKey map[string]*model.TargetItem // airtableid → 条目（列表中第一个）
	SourceIDs   map[string]struct{}          // 本轮 Airtable 记录ID集合
	Duplicates  []Duplicate                  // 重复引用，不参与更新
}

// Correlate 各扫描一遍两侧快照。重复的 airtableid 以列表中第一个条目为准，其余记入 Duplicates
func Correlate(sources []*model.SourceRecord, targets []*model.TargetItem) *Correlation {
	c := &Correlation{
		TargetByKey: make(map[string]*model.TargetItem, len(targets)),
		SourceIDs:   make(map[string]struct{}, len(sources)),
	}
	for _, t := range targets {
		if t == nil || t.FieldData.AirtableID == "" {
			continue
		}
		key := t.FieldData.AirtableID
		if kept, ok := c.TargetByKey[key]; ok {
			c.Duplicates = append(c.Duplicates, Duplicate{
				AirtableID:      key,
				KeptItemID:      kept.ID,
				DuplicateItemID: t.ID,
			})
			continue
		}
		c.TargetByKey[key] = t
	}
	for _, s := range sources {
		if s == nil || s.ID == "" {
			continue
		}
		c.SourceIDs[s.ID] = struct{}{}
	}
	return c
}

// IsOrphan 条目有 airtableid 但本轮源数据中已不存在
func (c *Correlation) IsOrphan(t *model.TargetItem) bool {
	if t == nil || t.FieldData.AirtableID == "" {
		return false
	}
	_, ok := c.SourceIDs[t.FieldData.AirtableID]
	return !ok
}
