package domain

// Pagination defaults and ceiling for trip listings. A student logging twice
// a day produces well under a page per week, so the defaults stay small.
const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// PaginationParams carries the page/limit pair from the HTTP layer down to
// the repo layer. Page is 1-indexed.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams normalizes optional query values into usable
// parameters: nil or out-of-range inputs fall back to the defaults, and the
// limit is clamped to maxLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: defaultPage, Limit: defaultLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, maxLimit)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
