package printer

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

// AgentClient posts jobs to the local print agent.
type AgentClient struct {
	endpoint string
	inner    *http.Client
}

func NewAgentClient(baseURL string, timeout time.Duration) *AgentClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AgentClient{
		endpoint: strings.TrimRight(baseURL, "/") + "/print",
		inner:    &http.Client{Timeout: timeout},
	}
}

func (c *AgentClient) Print(ctx context.Context, job Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.inner.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("print failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
