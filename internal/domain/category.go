package domain

import "time"

type Category struct {
	ID           int64
	ParentID     *int64
	Name         string
	Description  string
	PictureURL   string
	DisplayOrder int
	Published    bool
	CreatedAt    time.Time
	Children     []Category
}
