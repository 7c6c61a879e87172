package repository

import "gorm.io/gorm"

// pageWindow turns a 1-based page into limit and offset. ok is false when
// pageSize disables paging.
func pageWindow(page, pageSize int) (limit, offset int, ok bool) {
	if pageSize <= 0 {
		return 0, 0, false
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize, true
}

func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	limit, offset, ok := pageWindow(page, pageSize)
	if query == nil || !ok {
		return query
	}
	return query.Limit(limit).Offset(offset)
}

// findPage counts the rows matched by query and loads one page of them.
func findPage[T any](query *gorm.DB, page, pageSize int, order string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if err := applyPagination(query, page, pageSize).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
