package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/tieubaoca/docqa-be/utils"
)

// ProviderPolicy wraps every call to the embedding/completion provider with a
// per-attempt timeout and bounded retries on transient failures.
type ProviderPolicy struct {
	Timeout time.Duration
	Retries int
}

func (p ProviderPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return utils.Retry(ctx, p.Retries, IsTransient, func(ctx context.Context) error {
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.Timeout)
			defer cancel()
		}
		return fn(ctx)
	})
}

// IsTransient reports whether err is worth retrying: rate limits, server
// errors, network errors and per-attempt timeouts.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
