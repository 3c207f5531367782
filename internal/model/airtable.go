package model

// AirtableListResponse Airtable 列表接口返回；Offset 非空表示还有下一页
type AirtableListResponse struct {
	Records []AirtableRecord `json:"records"`
	Offset  string           `json:"offset,omitempty"`
}

// AirtableRecord 获奖者表的一行
type AirtableRecord struct {
	ID          string              `json:"id"`          // 记录ID（recXXX）
	CreatedTime string              `json:"createdTime"` // 创建时间
	Fields      AirtableAwardFields `json:"fields"`
}

// AirtableAwardFields 只解析同步用到的列，列名与表头一致
type AirtableAwardFields struct {
	Name             string               `json:"Name"`
	Year             FlexString           `json:"Year"` // 数字列或文本列均可
	AwardWinnerImage []AirtableAttachment `json:"Award winner image"`
}

// AirtableAttachment 附件列中的单个文件
type AirtableAttachment struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// ToSourceRecord 转换为同步用的源记录：只取第一张获奖图片
func (r *AirtableRecord) ToSourceRecord() *SourceRecord {
	rec := &SourceRecord{
		ID:   r.ID,
		Name: r.Fields.Name,
		Year: r.Fields.Year,
	}
	if len(r.Fields.AwardWinnerImage) > 0 {
		rec.ImageURL = r.Fields.AwardWinnerImage[0].URL
	}
	return rec
}
