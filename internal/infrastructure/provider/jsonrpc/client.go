// Package jsonrpc talks with ERC-4337 bundlers and paymasters over their
// public JSON-RPC methods.
package jsonrpc

import (
	"context"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	pkgerrors "github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/aawalletd/internal/core/ports"
	"github.com/tdex-network/aawalletd/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
)

// Options ...
type Options struct {
	// RateLimit is the max number of requests per second, 0 means unlimited.
	RateLimit int
}

// client wraps an rpc client with a circuit breaker and a rate limiter.
// Every error is classified as ErrProviderUnavailable or
// ErrProviderRejected.
type client struct {
	id      string
	rpc     *rpc.Client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

func newClient(id, endpoint string, opts Options) (*client, error) {
	rpcClient, err := rpc.DialContext(context.Background(), endpoint)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "dialing provider %s", id)
	}

	limiter := ratelimit.NewUnlimited()
	if opts.RateLimit > 0 {
		limiter = ratelimit.New(opts.RateLimit)
	}

	return &client{
		id:      id,
		rpc:     rpcClient,
		cb:      circuitbreaker.NewCircuitBreaker(id),
		limiter: limiter,
	}, nil
}

func (c *client) call(
	ctx context.Context, result interface{}, method string, args ...interface{},
) error {
	c.limiter.Take()

	_, err := c.cb.Execute(func() (interface{}, error) {
		err := c.rpc.CallContext(ctx, result, method, args...)
		if err != nil && isRejection(err) {
			// rejections do not count as breaker failures.
			return nil, &rejectedError{err}
		}
		return nil, err
	})
	if err == nil {
		return nil
	}

	var rejected *rejectedError
	if errors.As(err, &rejected) {
		return pkgerrors.Wrapf(
			ports.ErrProviderRejected, "%s %s: %s", c.id, method, rejected.err,
		)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return pkgerrors.Wrapf(
		ports.ErrProviderUnavailable, "%s %s: %s", c.id, method, err,
	)
}

func (c *client) close() {
	c.rpc.Close()
}

type rejectedError struct {
	err error
}

func (e *rejectedError) Error() string {
	return e.err.Error()
}

// isRejection tells whether the provider answered and refused the request,
// as opposed to being unreachable or overloaded.
func isRejection(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return true
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 &&
			httpErr.StatusCode != http.StatusTooManyRequests
	}
	return false
}
