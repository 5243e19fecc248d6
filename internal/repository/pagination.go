package repository

import "gorm.io/gorm"

// newestFirstPage 列表按 id 倒序取第 page 页；pageSize<=0 时不分页
func newestFirstPage(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order("id desc")
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Limit(pageSize).Offset((page - 1) * pageSize)
	}
}
