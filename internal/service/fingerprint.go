package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"AwardSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ErrEmptyURL 空地址不做指纹
var ErrEmptyURL = errors.New("empty url")

// Fingerprinter 按内容（而非地址）比较图片：同一张图换了 CDN 地址不算变更，同名文件内容变了算变更。
// 结果按 URL 缓存在实例内，同步服务每轮新建一个实例。
type Fingerprinter struct {
	fetcher interfaces.ContentFetcher
	logger  *logrus.Logger
	cache   map[string]fingerprintResult
}

type fingerprintResult struct {
	digest string
	err    error
}

func NewFingerprinter(fetcher interfaces.ContentFetcher, logger *logrus.Logger) *Fingerprinter {
	return &Fingerprinter{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]fingerprintResult),
	}
}

// Fingerprint 下载并计算 128 位 MD5 内容摘要。
// 下载用原始地址（签名链接离不开查询参数），规范化只用于比较
func (f *Fingerprinter) Fingerprint(ctx context.Context, rawURL string) (string, error) {
	u := strings.TrimSpace(rawURL)
	if NormalizeURL(u) == "" {
		return "", ErrEmptyURL
	}
	if r, ok := f.cache[u]; ok {
		return r.digest, r.err
	}

	data, err := f.fetcher.FetchBytes(ctx, u)
	if err != nil {
		err = fmt.Errorf("下载图片失败 %s: %w", u, err)
		// ctx 取消导致的失败不缓存
		if ctx.Err() == nil {
			f.cache[u] = fingerprintResult{err: err}
		}
		return "", err
	}
	sum := md5.Sum(data)
	digest := hex.EncodeToString(sum[:])
	f.cache[u] = fingerprintResult{digest: digest}
	return digest, nil
}

// ImagesDiffer 两边都空：无差异且不下载；一边为空：有差异且不下载；
// 否则比较内容摘要，任一边下载失败按有差异处理
func (f *Fingerprinter) ImagesDiffer(ctx context.Context, sourceURL, targetURL string) bool {
	a, b := NormalizeURL(sourceURL), NormalizeURL(targetURL)
	if a == "" && b == "" {
		return false
	}
	if a == "" || b == "" {
		return true
	}

	da, errA := f.Fingerprint(ctx, sourceURL)
	db, errB := f.Fingerprint(ctx, targetURL)
	if errA != nil || errB != nil {
		f.logger.WithFields(logrus.Fields{
			"source_image": a,
			"target_image": b,
		}).WithError(errors.Join(errA, errB)).Warn("图片指纹获取失败，按有变更处理")
		return true
	}
	return da != db
}
