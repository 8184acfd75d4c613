package repository

// ListQuery holds common pagination, sorting and filter parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with sane defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		SortDir: "desc",
		Filters: make(map[string]string),
	}
}
