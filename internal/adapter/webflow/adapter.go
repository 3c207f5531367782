package webflow

import (
	"AwardSync/internal/config"
	"AwardSync/internal/utils/httpclient"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"AwardSync/internal/interfaces"
	"AwardSync/internal/model"

	"github.com/sirupsen/logrus"
)

// acceptVersion 读接口带上的版本头
const acceptVersion = "1.0.0"

type Adapter struct {
	cfg        *config.PlatformConfig
	httpClient *http.Client
	logger     *logrus.Logger

	mu           sync.Mutex
	collectionID string // 配置为空时按 site_id + collection_name 解析一次后缓存
}

func NewWebflowAdapter(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.TargetAdapter {
	return &Adapter{
		cfg:          cfg,
		httpClient:   httpclient.NewHTTPClient(cfg, logger),
		logger:       logger,
		collectionID: cfg.CollectionID,
	}
}

func (w *Adapter) GetName() string {
	return config.PlatformWebflow
}

// FetchTargetItems 按 limit/offset 翻页拉取集合全部条目
func (w *Adapter) FetchTargetItems(ctx context.Context) ([]*model.TargetItem, error) {
	collectionID, err := w.CollectionID(ctx)
	if err != nil {
		return nil, err
	}

	limit := w.cfg.PageSize
	if limit <= 0 {
		limit = 100
	}
	var items []*model.TargetItem
	for offset := 0; ; {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("offset", strconv.Itoa(offset))

		var resp model.WebflowListResponse
		err := httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
			Platform: w.GetName(),
			Op:       "list_items",
			Method:   http.MethodGet,
			URL:      w.itemsURL(collectionID) + "?" + q.Encode(),
			Headers:  w.headers(true),
		}, &resp)
		if err != nil {
			return nil, err
		}
		for _, it := range resp.Items {
			if it != nil {
				items = append(items, it)
			}
		}
		offset += len(resp.Items)
		if len(resp.Items) == 0 || offset >= resp.Pagination.Total {
			break
		}
	}

	w.logger.WithField("count", len(items)).Debug("Webflow 条目拉取完成")
	return items, nil
}

func (w *Adapter) CreateTargetItem(ctx context.Context, fields *model.AwardFields) (*model.TargetItem, error) {
	collectionID, err := w.CollectionID(ctx)
	if err != nil {
		return nil, err
	}
	var item model.TargetItem
	err = httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
		Platform: w.GetName(),
		Op:       "create_item",
		Method:   http.MethodPost,
		URL:      w.itemsURL(collectionID),
		Headers:  w.headers(false),
		Body:     &model.WebflowItemPayload{FieldData: fields},
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (w *Adapter) UpdateTargetItem(ctx context.Context, itemID string, fields *model.AwardFields) (*model.TargetItem, error) {
	collectionID, err := w.CollectionID(ctx)
	if err != nil {
		return nil, err
	}
	var item model.TargetItem
	err = httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
		Platform: w.GetName(),
		Op:       "update_item",
		Method:   http.MethodPatch,
		URL:      w.itemsURL(collectionID) + "/" + url.PathEscape(itemID),
		Headers:  w.headers(false),
		Body:     &model.WebflowItemPayload{FieldData: fields},
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (w *Adapter) DeleteTargetItem(ctx context.Context, itemID string) error {
	collectionID, err := w.CollectionID(ctx)
	if err != nil {
		return err
	}
	return httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
		Platform: w.GetName(),
		Op:       "delete_item",
		Method:   http.MethodDelete,
		URL:      w.itemsURL(collectionID) + "/" + url.PathEscape(itemID),
		Headers:  w.headers(false),
	}, nil)
}

func (w *Adapter) PublishTargetItems(ctx context.Context, itemIDs []string) (*model.PublishResult, error) {
	collectionID, err := w.CollectionID(ctx)
	if err != nil {
		return nil, err
	}
	var result model.PublishResult
	err = httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
		Platform: w.GetName(),
		Op:       "publish_items",
		Method:   http.MethodPost,
		URL:      w.itemsURL(collectionID) + "/publish",
		Headers:  w.headers(false),
		Body:     &model.PublishRequest{ItemIDs: itemIDs},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CollectionID 返回目标集合ID；未配置时在站点集合中按显示名查找
func (w *Adapter) CollectionID(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.collectionID != "" {
		return w.collectionID, nil
	}
	if w.cfg.SiteID == "" || w.cfg.CollectionName == "" {
		return "", fmt.Errorf("webflow 未配置 collection_id，也缺少 site_id/collection_name")
	}

	var resp model.WebflowCollectionsResponse
	err := httpclient.DoJSON(ctx, w.httpClient, httpclient.Request{
		Platform: w.GetName(),
		Op:       "list_collections",
		Method:   http.MethodGet,
		URL:      fmt.Sprintf("%s/sites/%s/collections", w.baseURL(), url.PathEscape(w.cfg.SiteID)),
		Headers:  w.headers(true),
	}, &resp)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Collections {
		if c.DisplayName == w.cfg.CollectionName {
			w.collectionID = c.ID
			w.logger.WithFields(logrus.Fields{
				"collection_id":   c.ID,
				"collection_name": c.DisplayName,
			}).Info("已解析 Webflow 目标集合")
			return c.ID, nil
		}
	}
	names := make([]string, 0, len(resp.Collections))
	for _, c := range resp.Collections {
		names = append(names, c.DisplayName)
	}
	return "", fmt.Errorf("站点%s下未找到集合%q（现有：%s）", w.cfg.SiteID, w.cfg.CollectionName, strings.Join(names, ", "))
}

func (w *Adapter) baseURL() string {
	return strings.TrimRight(w.cfg.BaseURL, "/")
}

func (w *Adapter) itemsURL(collectionID string) string {
	return fmt.Sprintf("%s/collections/%s/items", w.baseURL(), url.PathEscape(collectionID))
}

func (w *Adapter) headers(read bool) map[string]string {
	h := map[string]string{"Authorization": "Bearer " + w.cfg.AuthToken}
	if read {
		h["accept-version"] = acceptVersion
	}
	return h
}
