package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultPushPlusURL     = "http://www.pushplus.plus/send"
	defaultPushPlusTimeout = 5 * time.Second
	pushPlusSuccessCode    = 200
)

// PushPlus posts markdown messages to the PushPlus webhook.
type PushPlus struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewPushPlus constructs a PushPlus channel. An empty endpoint uses the public service.
func NewPushPlus(endpoint, token string, timeout time.Duration) *PushPlus {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = defaultPushPlusURL
	}
	if timeout <= 0 {
		timeout = defaultPushPlusTimeout
	}
	return &PushPlus{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name implements Channel.
func (p *PushPlus) Name() string { return "pushplus" }

type pushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Template string `json:"template"`
}

type pushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send implements Channel.
func (p *PushPlus) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(pushPlusRequest{
		Token:    p.token,
		Title:    msg.Title,
		Content:  msg.Markdown,
		Template: "markdown",
	})
	if err != nil {
		return fmt.Errorf("encode pushplus request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pushplus request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("send pushplus notification: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushplus returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	var decoded pushPlusResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		// Non-JSON 2xx bodies count as accepted.
		return nil
	}
	if decoded.Code != 0 && decoded.Code != pushPlusSuccessCode {
		return fmt.Errorf("pushplus rejected message: code %d: %s", decoded.Code, decoded.Msg)
	}
	return nil
}
