package models

import (
	"gorm.io/gorm"
)

// Image 代表已上傳到圖床的圖片
// 只記錄儲存時產生的隨機檔名以及對外公開的 URL
type Image struct {
	gorm.Model

	ImageName string `gorm:"column:image_name;type:varchar(255);not null;uniqueIndex;<-:create"`
	ImageURL  string `gorm:"column:image_url;type:text;not null;<-:create"`
}
