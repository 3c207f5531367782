package repository

import (
	"context"
	"time"

	"AwardSync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncRunRepository 同步执行记录与重复关联的仓储
type SyncRunRepository interface {
	// CreateRun 记录一次执行的开始
	CreateRun(ctx context.Context, run *model.SyncRun) error
	// FinishRun 写回计数、状态与结束时间
	FinishRun(ctx context.Context, run *model.SyncRun) error
	// ListRuns 最近的执行记录，kind 为空表示全部
	ListRuns(ctx context.Context, kind string, limit int) ([]*model.SyncRun, error)
	// UpsertDuplicates 记录重复引用，已存在的只刷新 last_seen_at
	UpsertDuplicates(ctx context.Context, links []*model.DuplicateLink) error
	// ListDuplicates 重复引用列表
	ListDuplicates(ctx context.Context, includeResolved bool) ([]*model.DuplicateLink, error)
}

type syncRunRepository struct {
	db *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepository{db: db}
}

func (r *syncRunRepository) CreateRun(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepository) FinishRun(ctx context.Context, run *model.SyncRun) error {
	if run.ID == 0 {
		return r.db.WithContext(ctx).Create(run).Error
	}
	return r.db.WithContext(ctx).Model(&model.SyncRun{}).Where("id = ?", run.ID).Updates(map[string]interface{}{
		"status":       run.Status,
		"source_count": run.SourceCount,
		"target_count": run.TargetCount,
		"created":      run.Created,
		"updated":      run.Updated,
		"deleted":      run.Deleted,
		"skipped":      run.Skipped,
		"published":    run.Published,
		"failed":       run.Failed,
		"errors":       run.Errors,
		"finished_at":  run.FinishedAt,
	}).Error
}

func (r *syncRunRepository) ListRuns(ctx context.Context, kind string, limit int) ([]*model.SyncRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	db := r.db.WithContext(ctx).Model(&model.SyncRun{})
	if kind != "" {
		db = db.Where("kind = ?", kind)
	}
	var list []*model.SyncRun
	if err := db.Order("started_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *syncRunRepository) UpsertDuplicates(ctx context.Context, links []*model.DuplicateLink) error {
	if len(links) == 0 {
		return nil
	}
	now := time.Now()
	for _, l := range links {
		if l.FirstSeenAt.IsZero() {
			l.FirstSeenAt = now
		}
		l.LastSeenAt = now
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "airtable_id"}, {Name: "duplicate_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kept_item_id", "last_seen_at"}),
	}).Create(&links).Error
}

func (r *syncRunRepository) ListDuplicates(ctx context.Context, includeResolved bool) ([]*model.DuplicateLink, error) {
	db := r.db.WithContext(ctx).Model(&model.DuplicateLink{})
	if !includeResolved {
		db = db.Where("resolved = ?", false)
	}
	var list []*model.DuplicateLink
	if err := db.Order("last_seen_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
