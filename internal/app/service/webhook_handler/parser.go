package webhook_handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VML-Technologies/VML.Perito-sub005/internal/app/service/statechange"
)

var ErrUnsupportedProvider = errors.New("unsupported webhook provider")

// WebhookParser reads one provider payload.
type WebhookParser interface {
	GetProvider(ctx context.Context) string
	GetEventTime(ctx context.Context) time.Time
	GetOrderID(ctx context.Context) uint
	GetAppointmentID(ctx context.Context) uint
	GetStateChangeRequest(ctx context.Context) (*statechange.RecordStateChangeRequest, error)
	GetData(ctx context.Context) any
}

// ParserFactory builds a parser from the raw request body.
type ParserFactory func(provider string, body []byte, receivedAt time.Time) (WebhookParser, error)

var parsers = map[string]ParserFactory{
	ProviderVirtualInspection: NewInspectionResultParser,
	ProviderFieldInspection:   NewInspectionResultParser,
}

func getParser(provider string, body []byte, receivedAt time.Time) (WebhookParser, error) {
	f, ok := parsers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return f(provider, body, receivedAt)
}
