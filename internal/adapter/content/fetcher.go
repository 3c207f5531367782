package content

import (
	"AwardSync/internal/config"
	"AwardSync/internal/utils/httpclient"
	"context"
	"fmt"
	"io"
	"net/http"

	"AwardSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// Fetcher 下载图片原始字节，供内容指纹比较
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	logger     *logrus.Logger
}

func NewFetcher(cfg *config.PlatformConfig, logger *logrus.Logger) interfaces.ContentFetcher {
	maxBytes := cfg.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &Fetcher{
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &httpclient.TransportError{Platform: "content", Op: "fetch", Err: err}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &httpclient.TransportError{Platform: "content", Op: "fetch", Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.WithError(err).Debug("关闭图片响应体失败")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &httpclient.TransportError{
			Platform:   "content",
			Op:         "fetch",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	// 多读一个字节用于判断是否超限
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &httpclient.TransportError{Platform: "content", Op: "fetch", StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("资源超过%d字节上限: %s", f.maxBytes, rawURL)
	}
	return data, nil
}
