package httpclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Behyna/bankgateway/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockServer() *httptest.Server {
	handler := http.NewServeMux()
	handler.HandleFunc("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message": "success"}`))
	})
	handler.HandleFunc("/form", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Write([]byte(r.PostForm.Get("invoiceUID") + "|" + r.Header.Get("Content-Type")))
	})
	handler.HandleFunc("/json", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"echo":` + string(body) + `}`))
	})
	handler.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})
	return httptest.NewServer(handler)
}

func TestHttpClient_Get(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	resp, err := client.Get(context.Background(), server.URL+"/test", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := httpclient.ReadBody(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"message": "success"}`, string(body))
}

func TestHttpClient_Do(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)
	ctx := context.Background()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/test", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestPostForm(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	body, err := httpclient.PostForm(context.Background(), client, server.URL+"/form",
		url.Values{"invoiceUID": {"abc"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc|application/x-www-form-urlencoded", string(body))
}

func TestPostJSON(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	var out struct {
		Echo struct {
			Amount int64 `json:"amount"`
		} `json:"echo"`
	}
	err := httpclient.PostJSON(context.Background(), client, server.URL+"/json",
		map[string]int64{"amount": 1000}, &out, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), out.Echo.Amount)
}

func TestReadBody_UnexpectedStatus(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	resp, err := client.Get(context.Background(), server.URL+"/fail", nil)
	require.NoError(t, err)

	body, err := httpclient.ReadBody(resp)
	assert.True(t, errors.Is(err, httpclient.ErrUnexpectedStatus))
	assert.Equal(t, "upstream down", string(body))
}

func TestGetJSON(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, httpclient.GetJSON(context.Background(), client, server.URL+"/test", &out, nil))
	assert.Equal(t, "success", out.Message)

	err := httpclient.GetJSON(context.Background(), client, server.URL+"/fail", &out, nil)
	assert.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)
}
