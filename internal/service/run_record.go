package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"AwardSync/internal/model"
	"AwardSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// runRecorder 把执行记录写入数据库；repo 为 nil 时什么都不做，写库失败只记日志
type runRecorder struct {
	repo   repository.SyncRunRepository
	logger *logrus.Logger
}

func (r runRecorder) start(ctx context.Context, kind, runUUID string, startedAt time.Time) *model.SyncRun {
	run := &model.SyncRun{
		RunUUID:   runUUID,
		Kind:      kind,
		Status:    model.RunStatusRunning,
		StartedAt: startedAt,
	}
	if r.repo == nil {
		return run
	}
	if err := r.repo.CreateRun(ctx, run); err != nil {
		r.logger.WithError(err).WithField("run_uuid", runUUID).Warn("写入执行记录失败")
	}
	return run
}

// finish 写回结果。除 PartialApplyError 外的错误（快照不可用、中途取消）都记为 aborted；
// 退出时 ctx 已取消，最后一次写库不跟随取消
func (r runRecorder) finish(ctx context.Context, run *model.SyncRun, failures []ApplyFailure, runErr error) {
	finished := time.Now()
	run.FinishedAt = &finished
	var partial *PartialApplyError
	aborted := runErr != nil && !errors.As(runErr, &partial)
	switch {
	case aborted:
		run.Status = model.RunStatusAborted
	case len(failures) > 0:
		run.Status = model.RunStatusPartial
	default:
		run.Status = model.RunStatusSuccess
	}
	run.Failed = len(failures)
	run.Errors = encodeRunErrors(failures, runErr, aborted)

	if r.repo == nil {
		return
	}
	if err := r.repo.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		r.logger.WithError(err).WithField("run_uuid", run.RunUUID).Warn("更新执行记录失败")
	}
}

func (r runRecorder) duplicates(ctx context.Context, dups []Duplicate) {
	if r.repo == nil || len(dups) == 0 {
		return
	}
	links := make([]*model.DuplicateLink, 0, len(dups))
	for _, d := range dups {
		links = append(links, &model.DuplicateLink{
			AirtableID:      d.AirtableID,
			KeptItemID:      d.KeptItemID,
			DuplicateItemID: d.DuplicateItemID,
		})
	}
	if err := r.repo.UpsertDuplicates(ctx, links); err != nil {
		r.logger.WithError(err).Warn("写入重复关联失败")
	}
}

func encodeRunErrors(failures []ApplyFailure, runErr error, aborted bool) datatypes.JSON {
	payload := struct {
		Abort    string         `json:"abort,omitempty"`
		Failures []ApplyFailure `json:"failures,omitempty"`
	}{Failures: failures}
	if aborted {
		payload.Abort = runErr.Error()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return b
}
