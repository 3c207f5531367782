// internal/adapter/registry.go
package adapter

import (
	"AwardSync/internal/adapter/airtable"
	"AwardSync/internal/adapter/content"
	"AwardSync/internal/adapter/webflow"
	"AwardSync/internal/config"
	"AwardSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Registry 按配置构建同步两端与图片下载器的适配器实例
type Registry struct {
	source  interfaces.SourceAdapter
	target  interfaces.TargetAdapter
	content interfaces.ContentFetcher
}

func NewRegistry(cfg *config.Config, logger *logrus.Logger) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	atCfg := cfg.Platform(config.PlatformAirtable)
	wfCfg := cfg.Platform(config.PlatformWebflow)
	// 图片托管在 Airtable/Webflow 的 CDN 上，不需要鉴权，只复用超时、代理与大小上限
	contentCfg := config.PlatformConfig{
		Timeout:       wfCfg.Timeout,
		Proxy:         wfCfg.Proxy,
		MaxImageBytes: wfCfg.MaxImageBytes,
	}

	r := &Registry{
		source:  airtable.NewAirtableAdapter(&atCfg, logger),
		target:  webflow.NewWebflowAdapter(&wfCfg, logger),
		content: content.NewFetcher(&contentCfg, logger),
	}

	logger.WithFields(logrus.Fields{
		"source":          r.source.GetName(),
		"target":          r.target.GetName(),
		"airtable_table":  atCfg.Table,
		"webflow_target":  firstNonEmpty(wfCfg.CollectionID, wfCfg.CollectionName),
		"publish_batches": wfCfg.PublishBatchSize,
	}).Info("适配器初始化完成")
	return r, nil
}

func (r *Registry) Source() interfaces.SourceAdapter { return r.source }

func (r *Registry) Target() interfaces.TargetAdapter { return r.target }

func (r *Registry) Content() interfaces.ContentFetcher { return r.content }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
