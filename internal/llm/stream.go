package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Event 流式响应中的一个事件，Content 与 Usage 二者只有其一非零值
type Event struct {
	Content string
	Usage   *Usage
}

// UpstreamError 上游返回的错误（非 2xx 状态或错误负载）
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Client 上游 HTTP 客户端
type Client struct {
	httpClient *http.Client
}

// NewClient 创建客户端
// 流式响应可能持续很久，超时要足够宽松
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 180 * time.Second},
	}
}

// NewClientWithHTTPClient 使用自定义 HTTP 客户端创建（测试用）
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{httpClient: httpClient}
}

// OpenStream 向提供商发起流式补全请求
// baseURL 为空时使用提供商默认端点
// 返回的 Stream 必须被读完或显式 Close，否则上游连接不会释放
func (c *Client) OpenStream(ctx context.Context, provider Provider, baseURL, apiKey, modelName string, messages []Message) (*Stream, error) {
	if baseURL == "" {
		baseURL = provider.DefaultBaseURL()
	}
	baseURL = strings.TrimRight(baseURL, "/")

	body, err := json.Marshal(provider.BuildBody(modelName, messages))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range provider.BuildHeaders(apiKey) {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		defer cancel()
		return nil, readUpstreamError(resp)
	}

	return newStream(resp.Body, cancel), nil
}

// readUpstreamError 从错误响应中提取错误消息
func readUpstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error.Message != "" {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: payload.Error.Message}
	}
	return &UpstreamError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}
}

// Stream 增量响应流，由消费方拉取
// 不可重启；读到 io.EOF 或错误后即终止
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	pending []Event
	done    bool
}

func newStream(body io.ReadCloser, cancel context.CancelFunc) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if cancel == nil {
		cancel = func() {}
	}
	return &Stream{
		body:    body,
		scanner: scanner,
		cancel:  cancel,
	}
}

// chunkPayload SSE 行内的 JSON 负载
// 同时接受流式（delta）和非流式（message）两种形态——个别提供商
// 在 stream:true 下仍会返回完整消息
type chunkPayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Recv 返回下一个事件，流结束时返回 io.EOF
func (s *Stream) Recv() (*Event, error) {
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return &ev, nil
	}
	if s.done {
		return nil, io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			s.finish()
			return nil, io.EOF
		}

		var chunk chunkPayload
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// 无法解析的行静默跳过
			continue
		}

		var events []Event
		if len(chunk.Choices) > 0 {
			if c := chunk.Choices[0].Delta.Content; c != "" {
				events = append(events, Event{Content: c})
			} else if c := chunk.Choices[0].Message.Content; c != "" {
				events = append(events, Event{Content: c})
			}
		}
		if chunk.Usage != nil {
			events = append(events, Event{Usage: chunk.Usage})
		}
		if len(events) == 0 {
			continue
		}

		s.pending = events[1:]
		return &events[0], nil
	}

	err := s.scanner.Err()
	s.finish()
	if err != nil {
		return nil, fmt.Errorf("upstream stream failed: %w", err)
	}
	return nil, io.EOF
}

// Close 终止流并中断上游请求
func (s *Stream) Close() {
	s.finish()
}

func (s *Stream) finish() {
	if s.done {
		return
	}
	s.done = true
	s.cancel()
	s.body.Close()
}
