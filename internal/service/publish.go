package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"AwardSync/internal/interfaces"
	"AwardSync/internal/model"
	"AwardSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// defaultPublishBatch Webflow 单次发布上限
const defaultPublishBatch = 100

// PublishReport 一次发布扫描的结果
type PublishReport struct {
	RunUUID    string         `json:"run_uuid"`
	Scanned    int            `json:"scanned"`
	Candidates int            `json:"candidates"`
	Published  int            `json:"published"`
	Batches    int            `json:"batches"`
	Failures   []ApplyFailure `json:"failures,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PublishService 定时把未发布或发布后有修改的条目批量发布
type PublishService struct {
	target    interfaces.TargetAdapter
	batchSize int
	recorder  runRecorder
	logger    *logrus.Logger
	running   atomic.Bool
}

func NewPublishService(target interfaces.TargetAdapter, runs repository.SyncRunRepository, batchSize int, logger *logrus.Logger) *PublishService {
	if batchSize <= 0 {
		batchSize = defaultPublishBatch
	}
	return &PublishService{
		target:    target,
		batchSize: batchSize,
		recorder:  runRecorder{repo: runs, logger: logger},
		logger:    logger,
	}
}

// StagedItemIDs 过滤出需要发布的条目：lastPublished 为空，或 lastUpdated 晚于 lastPublished；归档条目不发布
func StagedItemIDs(items []*model.TargetItem) []string {
	var ids []string
	for _, it := range items {
		if it == nil || it.ID == "" || it.IsArchived {
			continue
		}
		if it.NeedsPublish() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Run 执行一次发布扫描，单批失败不影响其余批次
func (s *PublishService) Run(ctx context.Context) (*PublishReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.running.Store(false)

	report := &PublishReport{RunUUID: uuid.NewString(), StartedAt: time.Now()}
	run := s.recorder.start(ctx, model.RunKindPublish, report.RunUUID, report.StartedAt)

	err := s.sweep(ctx, report)
	report.FinishedAt = time.Now()

	run.TargetCount = report.Scanned
	run.Published = report.Published
	s.recorder.finish(ctx, run, report.Failures, err)

	entry := s.logger.WithFields(logrus.Fields{
		"run_uuid":   report.RunUUID,
		"candidates": report.Candidates,
		"published":  report.Published,
		"batches":    report.Batches,
	})
	if err != nil {
		entry.WithError(err).Warn("发布扫描未完全成功")
	} else if report.Candidates > 0 {
		entry.Info("发布扫描完成")
	}
	return report, err
}

func (s *PublishService) sweep(ctx context.Context, report *PublishReport) error {
	items, err := s.target.FetchTargetItems(ctx)
	if err != nil {
		return fmt.Errorf("拉取 Webflow 条目失败: %w", err)
	}
	report.Scanned = len(items)

	ids := StagedItemIDs(items)
	report.Candidates = len(ids)
	if len(ids) == 0 {
		s.logger.Debug("无待发布条目")
		return nil
	}
	s.logger.WithField("item_ids", ids).Debug("待发布条目")

	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		batch := ids[start:end]
		report.Batches++

		result, err := s.target.PublishTargetItems(ctx, batch)
		if err != nil {
			s.logger.WithError(err).WithField("batch_size", len(batch)).Warn("批量发布失败，下轮重试")
			for _, id := range batch {
				report.Failures = append(report.Failures, newApplyFailure("publish", "", id, err))
			}
			continue
		}
		published, refused := splitPublishResult(batch, result)
		if len(refused) > 0 {
			refuseErr := errors.New("webflow 未发布该条目")
			if len(result.Errors) > 0 {
				refuseErr = errors.New(strings.Join(result.Errors, "; "))
			}
			s.logger.WithError(refuseErr).WithField("item_ids", refused).Warn("部分条目发布失败，下轮重试")
			for _, id := range refused {
				report.Failures = append(report.Failures, newApplyFailure("publish", "", id, refuseErr))
			}
		}
		report.Published += published
	}

	if len(report.Failures) > 0 {
		return &PartialApplyError{Failures: report.Failures}
	}
	return nil
}

// splitPublishResult 统计本批发布成功数与被拒条目。
// 返回里没有 publishedItemIds 时：无错误视为整批成功，有错误视为整批未确认
func splitPublishResult(batch []string, result *model.PublishResult) (int, []string) {
	if result == nil {
		return len(batch), nil
	}
	if result.PublishedItemIDs == nil {
		if len(result.Errors) == 0 {
			return len(batch), nil
		}
		return 0, batch
	}
	done := make(map[string]struct{}, len(result.PublishedItemIDs))
	for _, id := range result.PublishedItemIDs {
		done[id] = struct{}{}
	}
	var refused []string
	for _, id := range batch {
		if _, ok := done[id]; !ok {
			refused = append(refused, id)
		}
	}
	return len(batch) - len(refused), refused
}

// Job 供定时器调用
func (s *PublishService) Job(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}
