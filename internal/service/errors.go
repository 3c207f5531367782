package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycleInProgress 上一轮尚未结束
	ErrCycleInProgress = errors.New("cycle already in progress")
	// ErrEmptySnapshot 快照读取失败或为空，本轮不做任何写入（尤其是删除）
	ErrEmptySnapshot = errors.New("empty snapshot")
)

// EmptySnapshotError 某一侧快照不可信
type EmptySnapshotError struct {
	Side  string // source / target
	Cause error  // 为 nil 表示请求成功但返回 0 条
}

func (e *EmptySnapshotError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s 快照读取失败，终止本轮同步: %v", e.Side, e.Cause)
	}
	return fmt.Sprintf("%s 快照为空，终止本轮同步", e.Side)
}

func (e *EmptySnapshotError) Is(target error) bool { return target == ErrEmptySnapshot }

func (e *EmptySnapshotError) Unwrap() error { return e.Cause }

// ApplyFailure 单条写入失败
type ApplyFailure struct {
	Op       string `json:"op"` // create/update/delete/publish
	RecordID string `json:"record_id,omitempty"`
	ItemID   string `json:"item_id,omitempty"`
	Error    string `json:"error"`
	err      error
}

// PartialApplyError 部分记录写入失败，其余记录已正常处理
type PartialApplyError struct {
	Failures []ApplyFailure
}

func (e *PartialApplyError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		id := f.ItemID
		if id == "" {
			id = f.RecordID
		}
		parts = append(parts, fmt.Sprintf("%s %s: %s", f.Op, id, f.Error))
	}
	return fmt.Sprintf("%d 条写入失败: %s", len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialApplyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.err != nil {
			errs = append(errs, f.err)
		}
	}
	return errs
}

func newApplyFailure(op, recordID, itemID string, err error) ApplyFailure {
	return ApplyFailure{Op: op, RecordID: recordID, ItemID: itemID, Error: err.Error(), err: err}
}
