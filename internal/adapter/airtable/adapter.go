package airtable

import (
	"AwardSync/internal/config"
	"AwardSync/internal/utils/httpclient"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"AwardSync/internal/interfaces"
	"AwardSync/internal/model"

	"github.com/sirupsen/logrus"
)

// maxPages 防止 offset 异常时无限翻页
const maxPages = 1000

type Adapter struct {
	cfg        *config.PlatformConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewAirtableAdapter(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.SourceAdapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) GetName() string {
	return config.PlatformAirtable
}

// FetchSourceRecords 按 offset 翻页拉取整张表
func (a *Adapter) FetchSourceRecords(ctx context.Context) ([]*model.SourceRecord, error) {
	var records []*model.SourceRecord
	offset := ""
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("airtable 分页超过%d页，放弃本次读取", maxPages)
		}
		var resp model.AirtableListResponse
		err := httpclient.DoJSON(ctx, a.httpClient, httpclient.Request{
			Platform: a.GetName(),
			Op:       "list_records",
			Method:   http.MethodGet,
			URL:      a.listURL(offset),
			Headers:  map[string]string{"Authorization": "Bearer " + a.cfg.AuthToken},
		}, &resp)
		if err != nil {
			return nil, err
		}
		for i := range resp.Records {
			records = append(records, resp.Records[i].ToSourceRecord())
		}
		if resp.Offset == "" {
			break
		}
		offset = resp.Offset
	}

	a.logger.WithField("count", len(records)).Debug("Airtable 记录拉取完成")
	return records, nil
}

func (a *Adapter) listURL(offset string) string {
	base := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(a.cfg.BaseURL, "/"),
		url.PathEscape(a.cfg.BaseID),
		url.PathEscape(a.cfg.Table))
	q := url.Values{}
	if a.cfg.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(a.cfg.PageSize))
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}
