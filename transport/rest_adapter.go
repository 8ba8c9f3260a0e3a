// Package transport performs the wire calls behind the gateway executor.
// Adapters return raw responses and never classify backend failures; that
// belongs to the executor.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-itsm/core"
)

const KindREST = "rest"

const (
	defaultRESTClientTimeout            = 30 * time.Second
	defaultRESTResponseBodyLimit  int64 = 10 << 20 // 10 MiB
	defaultRESTUserAgent                = "go-itsm"
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter drives the backend table API over plain HTTP. Timeouts come
// from the request, falling back to the client's own deadline.
type RESTAdapter struct {
	Client               HTTPDoer
	UserAgent            string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	return &RESTAdapter{
		Client:               client,
		UserAgent:            defaultRESTUserAgent,
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
	}
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"kind": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}

	startedAt := time.Now()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: "+httpReq.Method+" "+httpReq.URL.Path+" failed",
			http.StatusBadGateway,
			map[string]any{"kind": KindREST, "endpoint": httpReq.URL.String()},
		)
	}
	defer httpRes.Body.Close()

	body, err := a.readBody(httpRes, req.MaxResponseBodyBytes)
	if err != nil {
		return core.TransportResponse{}, err
	}

	response := core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    make(map[string]string, len(httpRes.Header)),
		Body:       body,
		Metadata: map[string]any{
			"kind":        KindREST,
			"duration_ms": time.Since(startedAt).Milliseconds(),
		},
	}
	for name, values := range httpRes.Header {
		response.Headers[name] = strings.Join(values, ",")
	}
	return response, nil
}

func (a *RESTAdapter) buildRequest(ctx context.Context, req core.TransportRequest) (*http.Request, error) {
	target, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || target.String() == "" {
		return nil, transportError(
			"transport: request url is missing or invalid",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"kind": KindREST, "endpoint": strings.TrimSpace(req.URL)},
		)
	}
	if len(req.Query) > 0 {
		values := target.Query()
		for name, value := range req.Query {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			values.Set(name, strings.TrimSpace(value))
		}
		target.RawQuery = values.Encode()
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}

	var payload io.Reader
	if len(req.Body) > 0 {
		payload = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: build http request",
			http.StatusBadRequest,
			map[string]any{"kind": KindREST, "endpoint": target.String()},
		)
	}
	if agent := strings.TrimSpace(a.UserAgent); agent != "" {
		httpReq.Header.Set("User-Agent", agent)
	}
	for name, value := range req.Headers {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		httpReq.Header.Set(name, strings.TrimSpace(value))
	}
	return httpReq, nil
}

func (a *RESTAdapter) readBody(res *http.Response, requestLimit int64) ([]byte, error) {
	limit := requestLimit
	if limit <= 0 {
		limit = a.MaxResponseBodyBytes
	}
	if limit <= 0 {
		limit = defaultRESTResponseBodyLimit
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"kind": KindREST, "status_code": res.StatusCode},
		)
	}
	if int64(len(body)) > limit {
		return nil, transportError(
			fmt.Sprintf("transport: response body over %d byte limit", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{"kind": KindREST, "status_code": res.StatusCode, "limit": limit},
		)
	}
	return body, nil
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
