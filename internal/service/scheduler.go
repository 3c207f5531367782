package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Job 定时任务
type Job func(ctx context.Context) error

// RunPeriodically 固定间隔执行 job，runOnStart 时先立即执行一次；ctx 结束后返回。
// 任务在当前 goroutine 中顺序执行，耗时超过间隔时错过的 tick 会被合并；任务出错或 panic 只记日志
func RunPeriodically(ctx context.Context, logger *logrus.Logger, name string, interval time.Duration, runOnStart bool, job Job) error {
	if interval <= 0 {
		return fmt.Errorf("%s 的执行间隔必须大于0", name)
	}
	logger.WithFields(logrus.Fields{"job": name, "interval": interval.String()}).Info("定时任务已启动")

	if runOnStart {
		runJob(ctx, logger, name, job)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.WithField("job", name).Info("定时任务已停止")
			return nil
		case <-ticker.C:
			runJob(ctx, logger, name, job)
		}
	}
}

func runJob(ctx context.Context, logger *logrus.Logger, name string, job Job) {
	defer func() {
		if p := recover(); p != nil {
			logger.WithField("job", name).Errorf("定时任务 panic: %v", p)
		}
	}()

	start := time.Now()
	err := job(ctx)
	entry := logger.WithFields(logrus.Fields{"job": name, "elapsed": time.Since(start).String()})
	switch {
	case err == nil:
		entry.Debug("定时任务执行完成")
	case errors.Is(err, ErrCycleInProgress):
		entry.Info("上一轮尚未结束，跳过本次")
	case ctx.Err() != nil:
		entry.Debug("定时任务因退出而中断")
	default:
		entry.WithError(err).Warn("定时任务执行失败，等待下次调度")
	}
}
