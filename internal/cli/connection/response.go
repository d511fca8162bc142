package connection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
)

// maxErrorBody caps how much of an error body is read.
const maxErrorBody = 64 << 10

// ParseResponse decodes a success body into target, or returns an
// *domain.APIError for any status >= 400. The body is always closed.
// A nil target discards the body.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.APIError{
			Status: resp.StatusCode,
			Detail: errorDetail(body),
		}
	}

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorDetail extracts a readable message from an error body. The backend
// answers {"detail": "..."} or, for validation errors, {"detail": [...]};
// older gateways answer {"code": "...", "message": "..."}.
func errorDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Code    string          `json:"code"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return truncate(string(body), 200)
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
			Loc []any  `json:"loc"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				msgs = append(msgs, it.Msg)
			}
			return strings.Join(msgs, "; ")
		}
		return truncate(string(envelope.Detail), 200)
	}

	switch {
	case envelope.Code != "" && envelope.Message != "":
		return envelope.Code + ": " + envelope.Message
	case envelope.Message != "":
		return envelope.Message
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
