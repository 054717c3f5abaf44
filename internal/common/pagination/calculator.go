package pagination

// CalculateOffset returns (page-1)*limit.
func CalculateOffset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// CalculateTotalPages returns ceil(total/limit), and 1 for an empty result so
// the first page always exists.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 || limit <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
