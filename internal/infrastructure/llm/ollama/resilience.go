package ollama

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

// StatusError is a non-2xx answer from the Ollama API.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
	// Wait is the Retry-After the server sent, zero when absent.
	Wait time.Duration
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("ollama %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("ollama %s: status %d: %s", e.Operation, e.StatusCode, body)
}

func (e *StatusError) RetryAfter() time.Duration { return e.Wait }

func classifyError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			return resilience.ErrorClassification{}, false
		}
		return resilience.StatusClassification(statusErr.StatusCode), true
	})
}

// mapError turns a failed call into a domain error: retryable failures become ErrTemporary and a
// model the server does not have becomes ErrInvalidInput, since retrying cannot fix configuration.
func mapError(operation string, err error) error {
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return domain.WrapError(domain.ErrInvalidInput, operation, err)
	}
	return resilience.AsTemporary(operation, err, classifyError)
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
