package domain

// Category a tag-like classification, many-to-many with Commodity
type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "categories"
}
