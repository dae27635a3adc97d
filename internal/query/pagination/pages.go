package pagination

// maxVisiblePages bounds the page-number row to Telegram's practical
// per-row button count.
const maxVisiblePages = 8

// PageNumbers returns the page numbers to render for a Builder's row of
// page buttons, with 0 standing in for an ellipsis, mirroring
// PaginationBuilder._get_page_numbers's boundary/surrounding/ellipsis
// layout.
func PageNumbers(currentPage, totalPages int) []int {
	if totalPages <= maxVisiblePages {
		pages := make([]int, totalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	var pages []int
	pages = append(pages, 1)

	switch {
	case currentPage <= 3:
		for i := 2; i < min(6, totalPages); i++ {
			pages = append(pages, i)
		}
		if totalPages > 6 {
			pages = append(pages, 0, totalPages)
		}
	case currentPage >= totalPages-2:
		if totalPages > 6 {
			pages = append(pages, 0)
		}
		for i := max(2, totalPages-4); i <= totalPages; i++ {
			pages = append(pages, i)
		}
	default:
		pages = append(pages, 0)
		if currentPage > 2 {
			pages = append(pages, currentPage-1)
		}
		pages = append(pages, currentPage)
		if currentPage < totalPages-1 {
			pages = append(pages, currentPage+1)
		}
		pages = append(pages, 0, totalPages)
	}

	for len(pages) > maxVisiblePages {
		removed := false
		for i := 1; i < len(pages)-1; i++ {
			p := pages[i]
			if p != 1 && p != currentPage && p != totalPages && p != 0 {
				pages = append(pages[:i], pages[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}
	return pages
}

// Page is one computed page button.
type Page struct {
	Number  int
	Offset  int
	Current bool
	Ellipsis bool
}

// BuildPageRow computes the page button row for totalItems/pageSize at
// currentOffset.
func BuildPageRow(totalItems, pageSize, currentOffset int) []Page {
	currentPage := currentOffset/pageSize + 1
	totalPages := 1
	if totalItems > 0 {
		totalPages = (totalItems-1)/pageSize + 1
	}
	if totalPages <= 1 {
		return nil
	}

	numbers := PageNumbers(currentPage, totalPages)
	pages := make([]Page, len(numbers))
	for i, n := range numbers {
		if n == 0 {
			pages[i] = Page{Ellipsis: true}
			continue
		}
		pages[i] = Page{Number: n, Offset: (n - 1) * pageSize, Current: n == currentPage}
	}
	return pages
}
