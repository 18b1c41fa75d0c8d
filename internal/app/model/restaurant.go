package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// StringArray handles PostgreSQL TEXT[]/JSON array columns
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		// SQLite hands TEXT columns back as string.
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan StringArray")
	}
}

// HoursMap maps a lower-case weekday name ("monday" ... "sunday") to a
// free-text hours string such as "10am-10pm" or the literal "Closed".
// A missing day means the restaurant is closed that day.
type HoursMap map[string]string

// Value implements database/sql/driver.Valuer
func (h HoursMap) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	return json.Marshal(h)
}

// Scan implements database/sql.Scanner
func (h *HoursMap) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return errors.New("failed to scan HoursMap")
	}
}

type RestaurantCategory string

const (
	CategoryHawker     RestaurantCategory = "hawker"
	CategoryRestaurant RestaurantCategory = "restaurant"
	CategoryCafe       RestaurantCategory = "cafe"
	CategoryFoodcourt  RestaurantCategory = "foodcourt"
)

// Categories returns every valid restaurant category.
func Categories() []RestaurantCategory {
	return []RestaurantCategory{CategoryHawker, CategoryRestaurant, CategoryCafe, CategoryFoodcourt}
}

// IsValidCategory reports whether c is one of the four fixed categories.
func IsValidCategory(c string) bool {
	for _, cat := range Categories() {
		if string(cat) == c {
			return true
		}
	}
	return false
}

type PriceTier string

const (
	PriceBudget   PriceTier = "$"
	PriceModerate PriceTier = "$$"
	PriceUpscale  PriceTier = "$$$"
	PriceLuxury   PriceTier = "$$$$"
)

// IsValidPriceTier reports whether p is one of the four ordered buckets.
func IsValidPriceTier(p string) bool {
	switch PriceTier(p) {
	case PriceBudget, PriceModerate, PriceUpscale, PriceLuxury:
		return true
	}
	return false
}

type Restaurant struct {
	ID      string `gorm:"primarykey;type:varchar(128)" json:"id"` // Google place id or generated uuid
	Name    string `gorm:"not null;index" json:"name"`
	Address string `gorm:"type:text" json:"address"`
	City    string `gorm:"index" json:"city"`

	Latitude  float64 `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude float64 `gorm:"type:decimal(11,8)" json:"longitude"`

	Category RestaurantCategory `gorm:"type:varchar(20);index;not null;default:'restaurant'" json:"category"`
	Cuisine  string             `json:"cuisine"`

	// Provider ratings, each optional; AggregateRating resolves the precedence.
	Rating            *float64 `json:"rating"`             // explicit aggregate
	GoogleRating      *float64 `json:"google_rating"`      // provider A
	TripAdvisorRating *float64 `json:"tripadvisor_rating"` // provider B

	ReviewCount int      `gorm:"default:0" json:"review_count"`
	ViralScore  float64  `gorm:"index;default:0" json:"viral_score"`
	IsTrending  bool     `gorm:"index;default:false" json:"is_trending"`

	PriceTier PriceTier   `gorm:"type:varchar(4)" json:"price_tier"`
	Hours     HoursMap    `gorm:"type:jsonb" json:"hours"`
	PhotoURLs StringArray `gorm:"type:jsonb" json:"photo_urls"`
	MustTry   StringArray `gorm:"type:jsonb" json:"must_try"`

	IsHalal    bool   `gorm:"index;default:false" json:"is_halal"`
	HalalCert  string `gorm:"type:varchar(50)" json:"halal_cert,omitempty"`

	// TripAdvisor enrichment, populated lazily on detail views.
	TARank       string      `gorm:"type:varchar(50)" json:"ta_rank,omitempty"`
	TAPriceRange string      `gorm:"type:varchar(50)" json:"ta_price_range,omitempty"`
	TATags       StringArray `gorm:"type:jsonb" json:"ta_tags,omitempty"`
	TASnippet    string      `gorm:"type:text" json:"ta_snippet,omitempty"`
	TAEnriched   bool        `gorm:"default:false" json:"ta_enriched"`
	TAEnrichedAt *time.Time  `json:"ta_enriched_at,omitempty"`

	// Request-scoped, never persisted: distance in km from the caller.
	Distance *float64 `gorm:"-" json:"distance,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Restaurant) TableName() string {
	return "restaurants"
}

// AggregateRating resolves the rating precedence: explicit aggregate, then
// Google, then TripAdvisor, then 0. Never returns a value outside [0, 5].
func (r *Restaurant) AggregateRating() float64 {
	for _, candidate := range []*float64{r.Rating, r.GoogleRating, r.TripAdvisorRating} {
		if candidate != nil {
			if *candidate < 0 {
				return 0
			}
			if *candidate > 5 {
				return 5
			}
			return *candidate
		}
	}
	return 0
}

// BeforeSave keeps category and price tier inside their fixed enumerations.
func (r *Restaurant) BeforeSave(tx *gorm.DB) error {
	if r.Category == "" || !IsValidCategory(string(r.Category)) {
		r.Category = CategoryRestaurant
	}
	if r.PriceTier != "" && !IsValidPriceTier(string(r.PriceTier)) {
		r.PriceTier = PriceModerate
	}
	return nil
}
