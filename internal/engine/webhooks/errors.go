package webhooks

import "errors"

var (
	// ErrRelayRejected covers a non-2xx answer or a transport failure from the chat service.
	ErrRelayRejected = errors.New("relay rejected notification")

	ErrUnknownChannel = errors.New("unknown notification channel")
	ErrUnknownType    = errors.New("unknown notification type")
	ErrInvalidURL     = errors.New("invalid webhook url")
)
