package model

import "time"

// TrendingDish is a synthetic entity derived from the top-scored restaurants
// by the trending batch job. At most one exists per restaurant; once created
// it is never refreshed.
type TrendingDish struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	RestaurantID string `gorm:"type:varchar(128);uniqueIndex;not null" json:"restaurant_id"`

	Name         string  `gorm:"not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        string  `gorm:"type:varchar(20)" json:"price"`
	MentionCount int     `gorm:"default:0" json:"mention_count"`
	RecommendPct int     `json:"recommend_pct"` // clamped to [75, 95]
	ViralScore   float64 `json:"viral_score"`

	Restaurant Restaurant `gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (TrendingDish) TableName() string {
	return "trending_dishes"
}
