package model

import (
	"time"

	"gorm.io/datatypes"
)

// 同步任务类型
const (
	RunKindSync    = "sync"
	RunKindPublish = "publish"
)

// 同步任务状态
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusAborted = "aborted"
)

// SyncRun 每次同步/发布扫描的执行记录
type SyncRun struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement;comment:自增主键ID"`
	RunUUID     string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null;comment:执行唯一ID"`
	Kind        string         `gorm:"column:kind;type:varchar(16);index;not null;comment:类型：sync/publish"`
	Status      string         `gorm:"column:status;type:varchar(16);not null;comment:状态：running/success/partial/aborted"`
	SourceCount int            `gorm:"column:source_count;type:int;default:0;comment:Airtable 记录数"`
	TargetCount int            `gorm:"column:target_count;type:int;default:0;comment:Webflow 条目数"`
	Created     int            `gorm:"column:created;type:int;default:0;comment:新建数"`
	Updated     int            `gorm:"column:updated;type:int;default:0;comment:更新数"`
	Deleted     int            `gorm:"column:deleted;type:int;default:0;comment:删除数"`
	Skipped     int            `gorm:"column:skipped;type:int;default:0;comment:无变化跳过数"`
	Published   int            `gorm:"column:published;type:int;default:0;comment:发布数"`
	Failed      int            `gorm:"column:failed;type:int;default:0;comment:失败数"`
	Errors      datatypes.JSON `gorm:"column:errors;type:jsonb;comment:失败明细"`
	StartedAt   time.Time      `gorm:"column:started_at;type:timestamp;not null;comment:开始时间"`
	FinishedAt  *time.Time     `gorm:"column:finished_at;type:timestamp;comment:结束时间"`
}

// DuplicateLink 多个 Webflow 条目指向同一 airtableid，留待人工处理
type DuplicateLink struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AirtableID      string    `gorm:"column:airtable_id;type:varchar(64);not null;uniqueIndex:uq_airtable_duplicate"`
	KeptItemID      string    `gorm:"column:kept_item_id;type:varchar(64);not null;comment:参与同步的条目"`
	DuplicateItemID string    `gorm:"column:duplicate_item_id;type:varchar(64);not null;uniqueIndex:uq_airtable_duplicate"`
	Resolved        bool      `gorm:"column:resolved;type:boolean;default:false"`
	FirstSeenAt     time.Time `gorm:"column:first_seen_at;type:timestamp;default:now()"`
	LastSeenAt      time.Time `gorm:"column:last_seen_at;type:timestamp;default:now()"`
}

func (SyncRun) TableName() string       { return "sync_runs" }
func (DuplicateLink) TableName() string { return "duplicate_links" }
