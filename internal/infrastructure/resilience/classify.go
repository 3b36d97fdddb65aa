package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
)

var (
	retryable = ErrorClassification{Retryable: true, RecordFailure: true}
	ignored   = ErrorClassification{}
	permanent = ErrorClassification{RecordFailure: true}
)

// Classify applies the rules every adapter shares. Cancellations and deadlines are neither retried
// nor counted against the breaker; an open breaker and network errors are retried. specific decides
// adapter errors in between, and anything left is a permanent failure.
func Classify(err error, specific func(error) (ErrorClassification, bool)) ErrorClassification {
	switch {
	case err == nil:
		return ignored
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ignored
	case IsCircuitOpen(err):
		return retryable
	}
	if specific != nil {
		if class, ok := specific(err); ok {
			return class
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retryable
	}
	return permanent
}

// StatusClassification maps a provider HTTP status: throttling and server errors are retried,
// other client errors are the caller's fault and do not trip the breaker.
func StatusClassification(code int) ErrorClassification {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return retryable
	}
	if code >= 400 && code < 500 {
		return ignored
	}
	return permanent
}

// AsTemporary marks err as domain.ErrTemporary when classifier would retry it, so callers upstream
// can tell "try later" from "give up".
func AsTemporary(op string, err error, classifier ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	return err
}

// RetryAfterHint is implemented by errors that carry a server-provided wait, such as HTTP 429.
type RetryAfterHint interface {
	RetryAfter() time.Duration
}

func retryAfter(err error) time.Duration {
	var hint RetryAfterHint
	if errors.As(err, &hint) {
		return hint.RetryAfter()
	}
	return 0
}
