package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var _ HTTPClient = (*httpClient)(nil)

const maxBodySize = 4 << 20

var ErrUnexpectedStatus = errors.New("UNEXPECTED_HTTP_STATUS")

type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

type httpClient struct {
	Client *http.Client
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &httpClient{Client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, headers)
	return c.Client.Do(req)
}

func (c *httpClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, headers)
	return c.Client.Do(req)
}

func (c *httpClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

func (c *httpClient) setHeaders(req *http.Request, headers map[string]string) {
	if len(headers) == 0 {
		return
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
}

// PostForm sends values urlencoded and returns the response body of a 2xx answer.
func PostForm(ctx context.Context, c HTTPClient, target string, values url.Values, headers map[string]string) ([]byte, error) {
	h := map[string]string{"Content-Type": "application/x-www-form-urlencoded"}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := c.Post(ctx, target, strings.NewReader(values.Encode()), h)
	if err != nil {
		return nil, err
	}
	return ReadBody(resp)
}

// PostJSON marshals in, posts it and decodes the answer into out when out is not nil.
func PostJSON(ctx context.Context, c HTTPClient, target string, in, out any, headers map[string]string) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	h := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := c.Post(ctx, target, bytes.NewReader(payload), h)
	if err != nil {
		return err
	}

	// out is filled even for non 2xx answers, APIs put their error codes there
	body, err := ReadBody(resp)
	if out == nil || len(body) == 0 {
		return err
	}
	if jsonErr := json.Unmarshal(body, out); err == nil {
		return jsonErr
	}
	return err
}

// GetJSON fetches target and decodes the answer into out.
func GetJSON(ctx context.Context, c HTTPClient, target string, out any, headers map[string]string) error {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	resp, err := c.Get(ctx, target, h)
	if err != nil {
		return err
	}

	body, err := ReadBody(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// ReadBody drains and closes resp. Non 2xx answers are reported as ErrUnexpectedStatus.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return body, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return body, nil
}
