package service

import (
	"AwardSync/internal/config"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"AwardSync/internal/interfaces"
	"AwardSync/internal/model"
	"AwardSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SyncReport 一轮同步的结果
type SyncReport struct {
	RunUUID     string         `json:"run_uuid"`
	SourceCount int            `json:"source_count"`
	TargetCount int            `json:"target_count"`
	Created     int            `json:"created"`
	Updated     int            `json:"updated"`
	Deleted     int            `json:"deleted"`
	Skipped     int            `json:"skipped"`
	Duplicates  []Duplicate    `json:"duplicates,omitempty"`
	Failures    []ApplyFailure `json:"failures,omitempty"`
	Aborted     bool           `json:"aborted"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// SyncService Airtable → Webflow 单向同步，Airtable 为准
type SyncService struct {
	source   interfaces.SourceAdapter
	target   interfaces.TargetAdapter
	content  interfaces.ContentFetcher
	cfg      config.SyncConfig
	recorder runRecorder
	logger   *logrus.Logger
	running  atomic.Bool
}

// NewSyncService runs 可为 nil（不记录执行历史）
func NewSyncService(
	source interfaces.SourceAdapter,
	target interfaces.TargetAdapter,
	content interfaces.ContentFetcher,
	runs repository.SyncRunRepository,
	cfg config.SyncConfig,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		source:   source,
		target:   target,
		content:  content,
		cfg:      cfg,
		recorder: runRecorder{repo: runs, logger: logger},
		logger:   logger,
	}
}

// Run 执行一轮完整同步。同一时刻只允许一轮，重入返回 ErrCycleInProgress。
// 快照读取失败或源表为空时整轮终止，不做任何删除；单条写入失败不影响其余记录，汇总为 PartialApplyError
func (s *SyncService) Run(ctx context.Context) (*SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.running.Store(false)

	report := &SyncReport{RunUUID: uuid.NewString(), StartedAt: time.Now()}
	run := s.recorder.start(ctx, model.RunKindSync, report.RunUUID, report.StartedAt)

	err := s.reconcile(ctx, report)
	report.FinishedAt = time.Now()

	run.SourceCount = report.SourceCount
	run.TargetCount = report.TargetCount
	run.Created = report.Created
	run.Updated = report.Updated
	run.Deleted = report.Deleted
	run.Skipped = report.Skipped
	s.recorder.finish(ctx, run, report.Failures, err)

	entry := s.logger.WithFields(logrus.Fields{
		"run_uuid": report.RunUUID,
		"source":   report.SourceCount,
		"target":   report.TargetCount,
		"created":  report.Created,
		"updated":  report.Updated,
		"deleted":  report.Deleted,
		"skipped":  report.Skipped,
		"failed":   len(report.Failures),
		"elapsed":  report.FinishedAt.Sub(report.StartedAt).String(),
	})
	switch {
	case errors.Is(err, ErrEmptySnapshot):
		entry.WithError(err).Error("快照不可用，同步终止，本轮未做任何写入")
	case report.Aborted:
		entry.WithError(err).Error("同步中途终止，已完成的写入见计数")
	case err != nil:
		entry.WithError(err).Warn("同步完成，部分记录失败，下轮重试")
	default:
		entry.Info("同步完成")
	}
	return report, err
}

func (s *SyncService) reconcile(ctx context.Context, report *SyncReport) error {
	// 1. Airtable 全量快照
	sources, err := s.source.FetchSourceRecords(ctx)
	if err != nil {
		report.Aborted = true
		return &EmptySnapshotError{Side: "source", Cause: err}
	}
	report.SourceCount = len(sources)
	if len(sources) == 0 && !s.cfg.AllowEmptySource {
		report.Aborted = true
		return &EmptySnapshotError{Side: "source"}
	}

	// 2. Webflow 全量快照（读取失败时不能创建，否则会整表重复）
	targets, err := s.target.FetchTargetItems(ctx)
	if err != nil {
		report.Aborted = true
		return &EmptySnapshotError{Side: "target", Cause: err}
	}
	report.TargetCount = len(targets)

	// 3. 关联
	corr := Correlate(sources, targets)
	report.Duplicates = corr.Duplicates
	for _, d := range corr.Duplicates {
		s.logger.WithFields(logrus.Fields{
			"airtable_id":       d.AirtableID,
			"kept_item_id":      d.KeptItemID,
			"duplicate_item_id": d.DuplicateItemID,
		}).Warn("多个 Webflow 条目引用同一 airtableid，仅同步第一个，其余待人工处理")
	}
	s.recorder.duplicates(ctx, corr.Duplicates)

	// 每轮新建指纹器，图片缓存只在本轮有效
	differ := NewRecordDiffer(NewFingerprinter(s.content, s.logger))

	// 4. 逐条新建/更新
	for _, rec := range sources {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			return fmt.Errorf("同步被取消: %w", err)
		}
		if rec == nil || rec.ID == "" {
			continue
		}
		fields := CanonicalFields(rec)
		log := s.logger.WithFields(logrus.Fields{"airtable_id": rec.ID, "name": rec.Name})

		existing, ok := corr.TargetByKey[rec.ID]
		if !ok {
			if _, err := s.target.CreateTargetItem(ctx, fields); err != nil {
				log.WithError(err).Warn("新建 Webflow 条目失败，跳过")
				report.Failures = append(report.Failures, newApplyFailure("create", rec.ID, "", err))
				continue
			}
			log.Info("已新建 Webflow 条目")
			report.Created++
			continue
		}

		diff := differ.Diff(ctx, fields, existing)
		if !diff.Any() {
			log.WithField("item_id", existing.ID).Debug("无变化，跳过")
			report.Skipped++
			continue
		}
		if _, err := s.target.UpdateTargetItem(ctx, existing.ID, fields); err != nil {
			log.WithError(err).WithField("item_id", existing.ID).Warn("更新 Webflow 条目失败，跳过")
			report.Failures = append(report.Failures, newApplyFailure("update", rec.ID, existing.ID, err))
			continue
		}
		log.WithFields(logrus.Fields{
			"item_id":    existing.ID,
			"name_diff":  diff.Name,
			"year_diff":  diff.Year,
			"image_diff": diff.Image,
		}).Info("已更新 Webflow 条目")
		report.Updated++
	}

	// 5. 删除 Airtable 中已不存在的条目
	for _, t := range targets {
		if !corr.IsOrphan(t) {
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			return fmt.Errorf("同步被取消: %w", err)
		}
		log := s.logger.WithFields(logrus.Fields{"item_id": t.ID, "airtable_id": t.FieldData.AirtableID})
		if err := s.target.DeleteTargetItem(ctx, t.ID); err != nil {
			log.WithError(err).Warn("删除 Webflow 条目失败，跳过")
			report.Failures = append(report.Failures, newApplyFailure("delete", t.FieldData.AirtableID, t.ID, err))
			continue
		}
		log.Info("Airtable 中已不存在，已删除 Webflow 条目")
		report.Deleted++
	}

	if len(report.Failures) > 0 {
		return &PartialApplyError{Failures: report.Failures}
	}
	return nil
}

// Job 供定时器调用
func (s *SyncService) Job(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}
