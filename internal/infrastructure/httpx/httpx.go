package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultMaxBody fits a full 10000 item explorer page with room to spare.
const DefaultMaxBody = 64 << 20

var (
	ErrTransport    = errors.New("transport failure")
	ErrDecode       = errors.New("decode failure")
	ErrBodyTooLarge = errors.New("response too large")
)

// StatusError reports a completed request with a non-200 status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string { return fmt.Sprintf("status %d", e.Code) }

type Client struct {
	HTTP    *http.Client
	Header  http.Header
	MaxBody int64 // DefaultMaxBody when zero
}

// GetJSON issues a single GET and decodes the body into out. Numbers decoded
// into interface values are kept as json.Number.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()
	limit := c.MaxBody
	if limit <= 0 {
		limit = DefaultMaxBody
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, limit))
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	dec := json.NewDecoder(&capReader{r: resp.Body, left: limit})
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, ErrBodyTooLarge) {
			return fmt.Errorf("%w: response exceeds %d bytes", ErrBodyTooLarge, limit)
		}
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// capReader fails with ErrBodyTooLarge once more than left bytes are read.
type capReader struct {
	r    io.Reader
	left int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.left < 0 {
		return 0, ErrBodyTooLarge
	}
	if int64(len(p)) > c.left+1 {
		p = p[:c.left+1]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		return n, ErrBodyTooLarge
	}
	return n, err
}
