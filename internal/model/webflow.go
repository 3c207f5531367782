package model

import "time"

// TargetItem Webflow CMS 集合中的一个条目（v2 API 结构）
type TargetItem struct {
	ID            string          `json:"id"`
	CmsLocaleID   string          `json:"cmsLocaleId,omitempty"`
	LastPublished *time.Time      `json:"lastPublished"` // 从未发布为 null
	LastUpdated   *time.Time      `json:"lastUpdated"`
	CreatedOn     *time.Time      `json:"createdOn,omitempty"`
	IsArchived    bool            `json:"isArchived"`
	IsDraft       bool            `json:"isDraft"`
	FieldData     TargetFieldData `json:"fieldData"`
}

// TargetFieldData 集合字段，airtableid 是与 Airtable 记录关联的唯一外键
type TargetFieldData struct {
	Name             string     `json:"name"`
	Year             FlexString `json:"year"`
	Slug             string     `json:"slug"`
	AwardWinnerImage ImageRef   `json:"award-winner-image"`
	AirtableID       string     `json:"airtableid"`
}

// NeedsPublish 从未发布，或发布后又被修改过
func (t *TargetItem) NeedsPublish() bool {
	if t.LastPublished == nil {
		return true
	}
	return t.LastUpdated != nil && t.LastUpdated.After(*t.LastPublished)
}

// WebflowListResponse 条目列表接口返回
type WebflowListResponse struct {
	Items      []*TargetItem     `json:"items"`
	Pagination WebflowPagination `json:"pagination"`
}

// WebflowPagination 分页信息
type WebflowPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// WebflowItemPayload 创建/更新条目的请求体，归档与草稿标记固定为 false
type WebflowItemPayload struct {
	IsArchived bool         `json:"isArchived"`
	IsDraft    bool         `json:"isDraft"`
	FieldData  *AwardFields `json:"fieldData"`
}

// WebflowCollection 站点下的集合
type WebflowCollection struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Slug        string `json:"slug"`
}

// WebflowCollectionsResponse 站点集合列表
type WebflowCollectionsResponse struct {
	Collections []WebflowCollection `json:"collections"`
}

// PublishRequest 批量发布请求体
type PublishRequest struct {
	ItemIDs []string `json:"itemIds"`
}

// PublishResult 批量发布返回
type PublishResult struct {
	PublishedItemIDs []string `json:"publishedItemIds"`
	Errors           []string `json:"errors,omitempty"`
}
