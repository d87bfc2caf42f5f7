package models

import "time"

// Link maps a short Code within a Domain to a long URL.
type Link struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	LongURL        string     `json:"long_url"`
	NormalizedURL  string     `json:"-"`
	DomainID       int64      `json:"domain_id"`
	Permanent      bool       `json:"permanent"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsDeleted reports whether the link has been soft-deleted.
func (l *Link) IsDeleted() bool {
	return l.DeletedAt != nil
}

// IsExpired reports whether the link's expiry, if any, has passed.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Redirectable reports whether the link may be used to serve a redirect:
// not soft-deleted and not expired. Caller is responsible for also
// checking the parent domain's state.
func (l *Link) Redirectable(now time.Time) bool {
	return !l.IsDeleted() && !l.IsExpired(now)
}

// NewLink is the input to LinkStore.Create.
type NewLink struct {
	Code          string
	LongURL       string
	NormalizedURL string
	DomainID      int64
	Permanent     bool
	ExpiresAt     *time.Time
}

// LinkPatch is a partial update to a link row.
//
// ExpiresAt uses a double-optional: nil means "leave unchanged",
// a non-nil pointer to a nil *time.Time means "clear the expiry", and a
// non-nil pointer to a set *time.Time means "set the expiry".
type LinkPatch struct {
	URL           *string
	NormalizedURL *string
	ExpiresAt     **time.Time
	Permanent     *bool
	Restore       bool
}

// ShortenItem is one element of a batch shorten request.
type ShortenItem struct {
	URL        string
	Domain     *string
	CustomCode *string
	ExpiresAt  *time.Time
	Permanent  bool
}

// ShortenResult is the outcome of shortening one ShortenItem.
type ShortenResult struct {
	ID       int64  `json:"id"`
	LongURL  string `json:"long_url"`
	Code     string `json:"code"`
	ShortURL string `json:"short_url"`
}

// LinkFilter scopes a stats listing.
type LinkFilter struct {
	Domain   *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// LinkWithStats joins a Link with its click aggregates for the stats
// listing endpoint.
type LinkWithStats struct {
	Link
	DomainName   string `json:"domain"`
	TotalClicks  int64  `json:"total_clicks"`
	UniqueClicks int64  `json:"unique_clicks"`
}
