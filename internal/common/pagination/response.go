package pagination

// Metadata describes the page returned in a listing response.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewMetadata builds the metadata of params for a listing of total items.
func NewMetadata(params Params, total int64) Metadata {
	pages := CalculateTotalPages(total, params.Limit)
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pages,
		HasMore:    params.Page < pages,
	}
}

// Response is the JSON envelope of a paginated listing.
type Response[T any] struct {
	Data       []T      `json:"data"`
	Pagination Metadata `json:"pagination"`
}

// NewResponse wraps data and metadata. A nil slice is encoded as [].
func NewResponse[T any](data []T, metadata Metadata) Response[T] {
	if data == nil {
		data = []T{}
	}
	return Response[T]{
		Data:       data,
		Pagination: metadata,
	}
}
