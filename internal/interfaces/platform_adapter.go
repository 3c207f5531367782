package interfaces

import (
	"context"

	"AwardSync/internal/model"
)

// SourceAdapter 数据源（Airtable），每次同步读取全量快照
type SourceAdapter interface {
	GetName() string
	FetchSourceRecords(ctx context.Context) ([]*model.SourceRecord, error)
}

// TargetAdapter 目标集合（Webflow CMS）
type TargetAdapter interface {
	GetName() string
	FetchTargetItems(ctx context.Context) ([]*model.TargetItem, error)
	CreateTargetItem(ctx context.Context, fields *model.AwardFields) (*model.TargetItem, error)
	UpdateTargetItem(ctx context.Context, itemID string, fields *model.AwardFields) (*model.TargetItem, error)
	DeleteTargetItem(ctx context.Context, itemID string) error
	PublishTargetItems(ctx context.Context, itemIDs []string) (*model.PublishResult, error)
}

// ContentFetcher 下载远程资源原始字节（图片指纹用）
type ContentFetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
