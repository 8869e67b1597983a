package repository

import "gorm.io/gorm"

// Page one slice of a filtered listing plus the unpaginated total
type Page struct {
	Number int
	Size   int
}

// offset zero-based row offset; pages below 1 clamp to the first page
func (p Page) offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// listPage counts the filtered query then loads one ordered page with its preloads.
// A non-positive page size loads every row.
func listPage[T any](query *gorm.DB, page Page, order string, preloads ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	items := make([]T, 0)
	if total == 0 {
		return items, 0, nil
	}
	paged := query.Order(order)
	for _, association := range preloads {
		paged = paged.Preload(association)
	}
	if page.Size > 0 {
		paged = paged.Limit(page.Size).Offset(page.offset())
	}
	if err := paged.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
