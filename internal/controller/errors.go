package controller

import (
	"errors"

	"acaradar-web/pkg/upstream"
)

const connectionRefusedMessage = "Connection to API refused"

// upstreamMessage describes an upstream failure for a flash notice. HTTP errors
// carry the upstream's own explanation; prefix is prepended to those only.
func upstreamMessage(err error, prefix string) string {
	if errors.Is(err, upstream.ErrUnavailable) {
		return connectionRefusedMessage
	}
	var httpErr *upstream.HTTPError
	if errors.As(err, &httpErr) {
		return prefix + httpErr.Message
	}
	return prefix + "Unexpected error"
}
