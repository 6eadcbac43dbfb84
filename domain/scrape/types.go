package scrape

// Source identifies which search provider discovered a resource.
type Source string

const (
	SourceBrave      Source = "brave"
	SourceParallel   Source = "parallel"
	SourceDuckDuckGo Source = "duckduckgo"
)

// Resource is one discovered learning resource candidate. URL is the
// canonical identity: entries sharing a URL are collapsed during aggregation.
type Resource struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  Source `json:"source"`
	Snippet string `json:"snippet,omitempty"`
}

// Query carries the search inputs handed to a provider. Text is the composed
// web query; Topic is the bare subject for providers that build their own
// objective around it.
type Query struct {
	Text  string
	Topic string
}

// Dedupe collapses resources by URL. The output keeps the position of each
// URL's first occurrence but the field values of its last occurrence, so a
// later provider in merge-priority order overrides earlier metadata for the
// same URL. Entries with an empty URL are dropped.
func Dedupe(in []Resource) []Resource {
	out := make([]Resource, 0, len(in))
	seen := make(map[string]int, len(in))

	for _, r := range in {
		if r.URL == "" {
			continue
		}
		if idx, ok := seen[r.URL]; ok {
			out[idx] = r
			continue
		}
		seen[r.URL] = len(out)
		out = append(out, r)
	}

	return out
}
