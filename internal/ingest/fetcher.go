package ingest

import "context"

// Request describes one fetch: what to download, which format to select and where
// the extractor must write the result.
type Request struct {
	URL    string
	Format string
	Output string
}

// Fetcher resolves a URL to a local media file at Request.Output.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) error
}

// FetcherFunc adapts a plain function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) error

func (f FetcherFunc) Fetch(ctx context.Context, req Request) error { return f(ctx, req) }

// ExtractionError is returned when the extractor itself reports a failure.
// Message is the extractor's own error text.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string { return e.Message }

func (e *ExtractionError) Unwrap() error { return e.Err }
