package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"github.com/sirupsen/logrus"
)

// ErrUnauthorized is returned when the API refuses the caller's identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRejected is returned when the API answered with an error of its own,
// as opposed to a transport or decoding failure.
var ErrRejected = errors.New("rejected by api")

const requestTimeout = 15 * time.Second

type tokenKey struct{}

// WithToken attaches the caller's access token; it is sent as a bearer header.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the POS GraphQL API.
type Client struct {
	gql *graphql.Client
}

func New(url string) *Client {
	httpClient := &http.Client{Timeout: requestTimeout}
	gql := graphql.NewClient(url, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { logrus.Trace(s) }
	return &Client{gql: gql}
}

func (c *Client) run(ctx context.Context, op, query string, vars map[string]any, out any) error {
	req := graphql.NewRequest(query)
	for k, v := range vars {
		req.Var(k, v)
	}
	if token := tokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, out)
	entry := logrus.WithFields(logrus.Fields{"op": op, "took": time.Since(start)})
	if err != nil {
		entry.WithError(err).Warn("upstream call failed")
		return wrap(op, err)
	}
	entry.Debug("upstream call")
	return nil
}

// apiError keeps the API's message verbatim while classifying it.
type apiError struct {
	op   string
	msg  string
	kind error
}

func (e *apiError) Error() string { return e.op + ": " + e.msg }
func (e *apiError) Unwrap() error { return e.kind }

// wrap tells errors the API answered with apart from failures to reach it.
func wrap(op string, err error) error {
	raw := err.Error()
	msg, answered := strings.CutPrefix(raw, "graphql: ")
	switch {
	case strings.Contains(strings.ToLower(msg), "unauthorized"):
		return &apiError{op: op, msg: msg, kind: ErrUnauthorized}
	case answered:
		return &apiError{op: op, msg: msg, kind: ErrRejected}
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
