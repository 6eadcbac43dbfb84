package ports

import (
	"context"

	"polypath/domain/scrape"
)

// SearchProvider discovers learning resources from one external search
// service. Search never returns an error: missing credentials, non-2xx
// responses, parse failures and timeouts all degrade to an empty result with
// one diagnostic line on the sink.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, q scrape.Query, sink Sink) []scrape.Resource
}
