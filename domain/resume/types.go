package resume

import "time"

// Record is one stored resume for a user: either ingested from an uploaded
// PDF or generated by the tailoring pipeline. Generated records carry the
// LaTeX source in ParsedText and a "generated:{role}" marker in SourceURL.
type Record struct {
	ID         string
	UserID     string
	SourceURL  string
	ParsedText string
	CreatedAt  time.Time
}
