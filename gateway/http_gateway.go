// gateway/http_gateway.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	shell_errors "github.com/jeevanhealth/shell/errors"
)

// HTTP invokes gateway operations as JSON POSTs against a base URL:
// Invoke(ctx, "addPatient", args, &out) => POST <baseURL>/addPatient.
type HTTP struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (h *HTTP) Invoke(ctx context.Context, op string, args any, result any) error {
	var body io.Reader
	if args != nil {
		payload, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode %s args: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/"+op, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shell_errors.ErrGatewayUnavailable, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d", shell_errors.ErrOperationFailed, op, resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
