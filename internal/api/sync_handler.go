package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"AwardSync/internal/repository"
	"AwardSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SyncRunner 同步服务
type SyncRunner interface {
	Run(ctx context.Context) (*service.SyncReport, error)
}

// PublishRunner 发布扫描服务
type PublishRunner interface {
	Run(ctx context.Context) (*service.PublishReport, error)
}

type SyncHandler struct {
	syncer    SyncRunner
	publisher PublishRunner
	runs      repository.SyncRunRepository // 未配置数据库时为 nil
	logger    *logrus.Logger
}

func NewSyncHandler(syncer SyncRunner, publisher PublishRunner, runs repository.SyncRunRepository, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		syncer:    syncer,
		publisher: publisher,
		runs:      runs,
		logger:    logger,
	}
}

// Index 存活检查
// GET /
func (h *SyncHandler) Index(c *gin.Context) {
	c.String(http.StatusOK, "Server is running and ready to accept requests.")
}

// Health GET /healthz
func (h *SyncHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "running",
		"history": h.runs != nil,
	})
}

// RunSync 手动触发一轮同步
// POST /sync/run
func (h *SyncHandler) RunSync(c *gin.Context) {
	// 客户端断开不应中断同步
	report, err := h.syncer.Run(context.WithoutCancel(c.Request.Context()))
	h.respond(c, "sync", report, err)
}

// RunPublish 手动触发一次发布扫描
// POST /sync/publish
func (h *SyncHandler) RunPublish(c *gin.Context) {
	report, err := h.publisher.Run(context.WithoutCancel(c.Request.Context()))
	h.respond(c, "publish", report, err)
}

func (h *SyncHandler) respond(c *gin.Context, op string, report any, err error) {
	var partial *service.PartialApplyError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"report": report})
	case errors.Is(err, service.ErrCycleInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &partial):
		c.JSON(http.StatusMultiStatus, gin.H{"report": report, "error": err.Error()})
	default:
		h.logger.WithError(err).WithField("op", op).Error("手动触发失败")
		c.JSON(http.StatusBadGateway, gin.H{"report": report, "error": err.Error()})
	}
}

// ListRuns 最近的执行记录
// GET /sync/runs?kind=sync&limit=20
func (h *SyncHandler) ListRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库，不记录执行历史"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.runs.ListRuns(c.Request.Context(), c.Query("kind"), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": list})
}

// ListDuplicates 待人工处理的重复关联
// GET /sync/duplicates?all=true
func (h *SyncHandler) ListDuplicates(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库，不记录重复关联"})
		return
	}
	includeResolved := c.Query("all") == "true"
	list, err := h.runs.ListDuplicates(c.Request.Context(), includeResolved)
	if err != nil {
		h.logger.WithError(err).Error("ListDuplicates failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": list})
}
