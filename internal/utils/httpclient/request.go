package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody 错误响应最多保留的字节数
const maxErrorBody = 2048

// TransportError 网络错误或非 2xx 响应
type TransportError struct {
	Platform   string // airtable / webflow / content
	Op         string // 操作，如 list_items
	StatusCode int    // 0 表示请求未到达对端
	Body       string // 截断后的响应体
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s 请求失败: %v", e.Platform, e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s %s 返回 HTTP %d: %s", e.Platform, e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s 返回 HTTP %d", e.Platform, e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Request 一次 JSON API 调用
type Request struct {
	Platform string
	Op       string
	Method   string
	URL      string
	Headers  map[string]string
	Body     any // 非 nil 时序列化为 JSON
}

// DoJSON 发送请求并把 2xx 响应解析到 out（out 为 nil 时丢弃响应体）
func DoJSON(ctx context.Context, client *http.Client, r Request, out any) error {
	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return fmt.Errorf("%s %s 序列化请求失败: %w", r.Platform, r.Op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return &TransportError{Platform: r.Platform, Op: r.Op, Err: err}
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Platform: r.Platform, Op: r.Op, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &TransportError{
			Platform:   r.Platform,
			Op:         r.Op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s 解析响应失败: %w", r.Platform, r.Op, err)
	}
	return nil
}
