package nats

import (
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/fincadocs/internal/core/domain"
	"github.com/kirillkom/fincadocs/internal/infrastructure/resilience"
)

// transientErrors clear up once the connection recovers.
var transientErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
	nats.ErrConnectionReconnecting,
	nats.ErrConnectionDraining,
}

func classifyPublishError(err error) resilience.ErrorClassification {
	return resilience.Classify(err, func(err error) (resilience.ErrorClassification, bool) {
		for _, target := range transientErrors {
			if errors.Is(err, target) {
				return resilience.ErrorClassification{Retryable: true, RecordFailure: true}, true
			}
		}
		if errors.Is(err, nats.ErrMaxPayload) || errors.Is(err, nats.ErrBadSubject) {
			return resilience.ErrorClassification{}, true
		}
		return resilience.ErrorClassification{}, false
	})
}

// mapPublishError reports oversized events and bad subjects as invalid input and connection
// trouble as temporary.
func mapPublishError(err error) error {
	if errors.Is(err, nats.ErrMaxPayload) || errors.Is(err, nats.ErrBadSubject) {
		return domain.WrapError(domain.ErrInvalidInput, "nats publish", err)
	}
	return resilience.AsTemporary("nats publish", err, classifyPublishError)
}
