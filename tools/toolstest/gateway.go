// Package toolstest provides a scripted gateway for exercising operation
// handlers without a transport.
package toolstest

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-itsm/core"
)

// Call records one executor invocation.
type Call struct {
	Method string
	URL    string
	Query  map[string]string
	Body   []byte
}

// Gateway replays scripted responses in order and records every call.
type Gateway struct {
	Cfg       core.Config
	Responses []map[string]any
	Errs      []error
	Calls     []Call
}

func New(instanceURL string) *Gateway {
	return &Gateway{
		Cfg: core.Config{
			ServiceName: "itsm-gateway",
			InstanceURL: instanceURL,
			GatewayID:   "test",
			MaxRetries:  core.DefaultMaxRetries,
		},
	}
}

// Enqueue appends a scripted success response.
func (g *Gateway) Enqueue(body map[string]any) *Gateway {
	g.Responses = append(g.Responses, body)
	g.Errs = append(g.Errs, nil)
	return g
}

// EnqueueErr appends a scripted failure.
func (g *Gateway) EnqueueErr(err error) *Gateway {
	g.Responses = append(g.Responses, nil)
	g.Errs = append(g.Errs, err)
	return g
}

func (g *Gateway) Execute(_ context.Context, req core.TransportRequest) (map[string]any, error) {
	g.Calls = append(g.Calls, Call{
		Method: req.Method,
		URL:    req.URL,
		Query:  req.Query,
		Body:   append([]byte(nil), req.Body...),
	})
	if len(g.Responses) == 0 {
		return map[string]any{}, nil
	}
	response, err := g.Responses[0], g.Errs[0]
	g.Responses = g.Responses[1:]
	g.Errs = g.Errs[1:]
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (g *Gateway) Config() core.Config { return g.Cfg }

func (g *Gateway) Logger() core.Logger { return glog.Nop() }

var _ core.Gateway = (*Gateway)(nil)
