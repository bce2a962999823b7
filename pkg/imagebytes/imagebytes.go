// Package imagebytes normalizes the heterogeneous "image response"
// payloads produced by upstream APIs into a canonical byte slice: raw
// bytes, readers, base64 strings, remote URLs, and the dictionary
// shapes used by image-generation and chat-completion endpoints.
package imagebytes

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrUnsupportedPayload is returned when no known shape matches.
var ErrUnsupportedPayload = errors.New("imagebytes: unsupported payload shape")

const defaultFetchTimeout = 20 * time.Second

// Coercer turns loosely shaped image payloads into bytes, downloading
// from remote URLs when a payload only carries a reference.
type Coercer struct {
	httpClient *http.Client
}

// NewCoercer creates a Coercer whose URL downloads use the given
// timeout (a zero timeout selects the default of 20 seconds).
func NewCoercer(timeout time.Duration) *Coercer {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Coercer{httpClient: &http.Client{Timeout: timeout}}
}

// Bytes normalizes raw into image bytes. Supported shapes:
//   - []byte, io.Reader
//   - images-API style: {"data": [{"b64_json": ...}]} or {"data": [{"url": ...}]}
//   - chat-completion style: choices[0].message.content[*].image_url.url
//   - ad-hoc: {"image_bytes": ...}, {"image_b64": ...}, {"url": ...}
func (c *Coercer) Bytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case io.Reader:
		return io.ReadAll(v)
	case map[string]any:
		return c.fromMap(v)
	}
	return nil, ErrUnsupportedPayload
}

func (c *Coercer) fromMap(m map[string]any) ([]byte, error) {
	// Images-API style response.
	if data, ok := m["data"].([]any); ok && len(data) > 0 {
		if item, ok := data[0].(map[string]any); ok {
			for _, key := range []string{"b64_json", "b64", "image_b64"} {
				if b64, ok := item[key].(string); ok && b64 != "" {
					return base64.StdEncoding.DecodeString(b64)
				}
			}
			if u, ok := item["url"].(string); ok && u != "" {
				return c.download(u)
			}
		}
	}

	// Chat-completion style response carrying an image_url block.
	if u := chatImageURL(m); u != "" {
		return c.download(u)
	}

	if v, ok := m["image_bytes"]; ok && v != nil {
		switch b := v.(type) {
		case []byte:
			return b, nil
		case string:
			return base64.StdEncoding.DecodeString(b)
		}
	}

	if b64, ok := m["image_b64"].(string); ok && b64 != "" {
		return base64.StdEncoding.DecodeString(b64)
	}

	if u, ok := m["url"].(string); ok && u != "" {
		return c.download(u)
	}

	return nil, ErrUnsupportedPayload
}

func chatImageURL(m map[string]any) string {
	choices, ok := m["choices"].([]any)
	if !ok || len(choices) == 0 {
		return ""
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return ""
	}
	msg, ok := choice["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, ok := msg["content"].([]any)
	if !ok {
		return ""
	}
	for _, raw := range content {
		block, ok := raw.(map[string]any)
		if !ok || block["type"] != "image_url" {
			continue
		}
		if img, ok := block["image_url"].(map[string]any); ok {
			if u, ok := img["url"].(string); ok {
				return u
			}
		}
	}
	return ""
}

func (c *Coercer) download(url string) ([]byte, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image from %s: status %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
