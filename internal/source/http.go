package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// loadHTTP fetches a remote origin with a bounded timeout. The format is
// chosen by content type, falling back to the URL extension; on expiry or
// any transport failure the caller sees ErrUnavailable, never a hang.
func (l *FileLoader) loadHTTP(ctx context.Context, origin string) (*Dataset, error) {
	timeout := l.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	client := &http.Client{Timeout: timeout + time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnavailable, origin, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "json") || strings.HasSuffix(origin, ".json"):
		return parseJSON(origin, resp.Body)
	case strings.Contains(contentType, "csv") || strings.HasSuffix(origin, ".csv"):
		return parseCSV(origin, resp.Body)
	default:
		return nil, fmt.Errorf("%w: cannot determine format of %s (content type %q)", ErrUnavailable, origin, contentType)
	}
}
