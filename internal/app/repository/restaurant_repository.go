package repository

import (
	"time"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CandidateFilter bounds the database-side candidate fetch. All the content
// filters (halal, category, open-now, radius, search) run in the service
// layer over the fetched pool, not here.
type CandidateFilter struct {
	Limit int
}

type RestaurantRepository interface {
	Create(restaurant *model.Restaurant) error
	Upsert(restaurant *model.Restaurant) error
	Update(restaurant *model.Restaurant) error
	BulkCreate(restaurants []model.Restaurant, batchSize int) error
	FindByID(id string) (*model.Restaurant, error)
	FindCandidates(filter CandidateFilter) ([]model.Restaurant, error)
	FindTrending(limit int) ([]model.Restaurant, error)
	FindTopByScore(limit int) ([]model.Restaurant, error)
	FindAllForScoring() ([]model.Restaurant, error)
	UpdateTrendingFields(id string, score float64, isTrending bool) error
	UpdateEnrichment(id string, enrichment EnrichmentFields) error
}

// EnrichmentFields carries the lazily fetched TripAdvisor data.
type EnrichmentFields struct {
	Rank       string
	PriceRange string
	Tags       []string
	Snippet    string
	FetchedAt  time.Time
}

type restaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func (r *restaurantRepository) Create(restaurant *model.Restaurant) error {
	logger.Debug("Creating restaurant in database", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"name":          restaurant.Name,
	})

	if err := r.db.Create(restaurant).Error; err != nil {
		logger.Error("Failed to create restaurant in database", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"name":          restaurant.Name,
		})
		return err
	}
	return nil
}

// Upsert inserts a restaurant or, when the id already exists (a rediscovered
// place), refreshes the discovery fields in place. Batch-computed fields
// (viral_score, is_trending) and enrichment fields are left untouched.
func (r *restaurantRepository) Upsert(restaurant *model.Restaurant) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "address", "city", "latitude", "longitude",
			"category", "cuisine", "google_rating", "review_count",
			"price_tier", "hours", "photo_urls", "is_halal", "updated_at",
		}),
	}).Create(restaurant).Error
	if err != nil {
		logger.Error("Failed to upsert restaurant", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"name":          restaurant.Name,
		})
	}
	return err
}

func (r *restaurantRepository) Update(restaurant *model.Restaurant) error {
	if err := r.db.Save(restaurant).Error; err != nil {
		logger.Error("Failed to update restaurant in database", err, map[string]interface{}{
			"restaurant_id": restaurant.ID,
		})
		return err
	}
	return nil
}

func (r *restaurantRepository) BulkCreate(restaurants []model.Restaurant, batchSize int) error {
	logger.Info("Bulk creating restaurants", map[string]interface{}{
		"count":      len(restaurants),
		"batch_size": batchSize,
	})
	return r.db.CreateInBatches(restaurants, batchSize).Error
}

func (r *restaurantRepository) FindByID(id string) (*model.Restaurant, error) {
	var restaurant model.Restaurant
	if err := r.db.First(&restaurant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindCandidates fetches the filter pipeline's input pool in stable
// created_at order.
func (r *restaurantRepository) FindCandidates(filter CandidateFilter) ([]model.Restaurant, error) {
	query := r.db.Model(&model.Restaurant{})
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var restaurants []model.Restaurant
	if err := query.Order("created_at ASC, id ASC").Find(&restaurants).Error; err != nil {
		logger.Error("Failed to find restaurant candidates", err, map[string]interface{}{
			"limit": filter.Limit,
		})
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) FindTrending(limit int) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	query := r.db.Where("is_trending = ?", true).Order("viral_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) FindTopByScore(limit int) ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	query := r.db.Order("viral_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, err
	}
	return restaurants, nil
}

// FindAllForScoring returns every restaurant with just the fields the
// trending batch needs, in stable created_at order so percentile boundaries
// are reproducible between runs.
func (r *restaurantRepository) FindAllForScoring() ([]model.Restaurant, error) {
	var restaurants []model.Restaurant
	err := r.db.
		Select("id", "name", "rating", "google_rating", "trip_advisor_rating", "review_count", "is_halal", "must_try").
		Order("created_at ASC, id ASC").
		Find(&restaurants).Error
	if err != nil {
		logger.Error("Failed to fetch restaurants for scoring", err)
		return nil, err
	}
	return restaurants, nil
}

func (r *restaurantRepository) UpdateTrendingFields(id string, score float64, isTrending bool) error {
	return r.db.Model(&model.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"viral_score": score,
			"is_trending": isTrending,
		}).Error
}

func (r *restaurantRepository) UpdateEnrichment(id string, enrichment EnrichmentFields) error {
	return r.db.Model(&model.Restaurant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ta_rank":        enrichment.Rank,
			"ta_price_range": enrichment.PriceRange,
			"ta_tags":        model.StringArray(enrichment.Tags),
			"ta_snippet":     enrichment.Snippet,
			"ta_enriched":    true,
			"ta_enriched_at": enrichment.FetchedAt,
		}).Error
}
