package repository

import (
	"errors"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/pkg/logger"
	"gorm.io/gorm"
)

type DishRepository interface {
	Create(dish *model.TrendingDish) error
	ExistsForRestaurant(restaurantID string) (bool, error)
	ListTrending(limit int) ([]model.TrendingDish, error)
}

type dishRepository struct {
	db *gorm.DB
}

func NewDishRepository(db *gorm.DB) DishRepository {
	return &dishRepository{db: db}
}

func (r *dishRepository) Create(dish *model.TrendingDish) error {
	if err := r.db.Create(dish).Error; err != nil {
		logger.Error("Failed to create trending dish", err, map[string]interface{}{
			"restaurant_id": dish.RestaurantID,
			"name":          dish.Name,
		})
		return err
	}
	return nil
}

func (r *dishRepository) ExistsForRestaurant(restaurantID string) (bool, error) {
	var dish model.TrendingDish
	err := r.db.Select("id").Where("restaurant_id = ?", restaurantID).First(&dish).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *dishRepository) ListTrending(limit int) ([]model.TrendingDish, error) {
	var dishes []model.TrendingDish
	query := r.db.Order("viral_score DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&dishes).Error; err != nil {
		logger.Error("Failed to list trending dishes", err)
		return nil, err
	}
	return dishes, nil
}
