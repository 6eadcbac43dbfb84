package jobs

import "time"

// Result is one job listing discovered by the sandboxed search.
type Result struct {
	Title   string `json:"title"`
	Company string `json:"company,omitempty"`
	// Location may echo the requested location when the source row omits it.
	Location string `json:"location,omitempty"`
	URL      string `json:"url"`
	Snippet  string `json:"snippet,omitempty"`
}

// Block is the job search context and outcome attached to a roadmap record.
type Block struct {
	Role      string    `json:"role"`
	Location  string    `json:"location,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Results   []Result  `json:"results"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Match is the persisted outcome of one job search request.
type Match struct {
	ID        string
	UserID    string
	Role      string
	Location  string
	Keywords  []string
	Results   []Result
	CreatedAt time.Time
}
