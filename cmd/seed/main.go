package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/viraleats/viraleats-backend/config"
	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/internal/db"
	"github.com/viraleats/viraleats-backend/internal/storage"
	"github.com/viraleats/viraleats-backend/pkg/halal"
	"github.com/viraleats/viraleats-backend/pkg/places"
	"github.com/xuri/excelize/v2"
)

func main() {
	filePath := flag.String("file", "", "XLSX file with curated restaurants")
	query := flag.String("query", "", "Places text query, e.g. \"nasi lemak\"")
	city := flag.String("city", "Kuala Lumpur", "city appended to the places query")
	mirrorPhotos := flag.Bool("mirror-photos", false, "mirror photos into S3 (needs AWS_S3_BUCKET)")
	flag.Parse()

	if *filePath == "" && *query == "" {
		log.Fatal("Usage: seed -file <xlsx> | seed -query <text> [-city <city>] [-mirror-photos]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())

	if *filePath != "" {
		seedFromXLSX(restaurantRepo, *filePath)
		return
	}

	seedFromPlaces(cfg, restaurantRepo, *query, *city, *mirrorPhotos)
}

func seedFromXLSX(repo repository.RestaurantRepository, filePath string) {
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	restaurants, err := readRestaurantsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total restaurants to import: %d\n", len(restaurants))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	if err := repo.BulkCreate(restaurants, batchSize); err != nil {
		log.Fatal("Failed to bulk create restaurants:", err)
	}

	fmt.Printf("Import completed: %d restaurants\n", len(restaurants))
}

// readRestaurantsFromXLSX expects the columns:
// name | address | city | lat | lng | category | cuisine | halal | price | must-try
func readRestaurantsFromXLSX(filePath string) ([]model.Restaurant, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var restaurants []model.Restaurant
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 5 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		lat, err1 := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		lng, err2 := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err1 != nil || err2 != nil {
			fmt.Printf("Skipping row %d: bad coordinates\n", i+1)
			continue
		}

		r := model.Restaurant{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(row[0]),
			Address:   cell(row, 1),
			City:      cell(row, 2),
			Latitude:  lat,
			Longitude: lng,
			Category:  model.RestaurantCategory(cell(row, 5)),
			Cuisine:   cell(row, 6),
			IsHalal:   strings.EqualFold(cell(row, 7), "yes"),
			PriceTier: model.PriceTier(cell(row, 8)),
		}
		if mustTry := cell(row, 9); mustTry != "" {
			for _, dish := range strings.Split(mustTry, ",") {
				if dish = strings.TrimSpace(dish); dish != "" {
					r.MustTry = append(r.MustTry, dish)
				}
			}
		}
		restaurants = append(restaurants, r)
	}

	return restaurants, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func seedFromPlaces(cfg *config.Config, repo repository.RestaurantRepository, query, city string, mirrorPhotos bool) {
	ctx := context.Background()
	client := places.NewClient(cfg.Places.APIKey, cfg.Places.BaseURL)

	var photoStorage *storage.PhotoStorage
	if mirrorPhotos && cfg.S3.Bucket != "" {
		photoStorage = storage.NewPhotoStorage(
			cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL,
		)
	}

	searchQuery := fmt.Sprintf("%s in %s", query, city)
	fmt.Printf("Searching places: %q\n", searchQuery)

	results, err := client.TextSearch(ctx, searchQuery)
	if err != nil {
		log.Fatal("Places search failed:", err)
	}
	fmt.Printf("Found %d places\n", len(results))

	created := 0
	for _, place := range results {
		restaurant := mapPlaceToRestaurant(place, city)

		// Opening hours need a details call; failures just leave hours empty.
		if hours, err := client.OpeningHours(ctx, place.PlaceID); err == nil {
			restaurant.Hours = model.HoursMap(hours)
		}

		for _, ref := range place.PhotoRefs {
			photoURL := client.PhotoURL(ref, 800)
			if photoStorage != nil {
				if mirrored, err := photoStorage.MirrorPhoto(ctx, photoURL); err == nil {
					photoURL = mirrored
				} else {
					fmt.Printf("Photo mirror failed for %s: %v\n", restaurant.Name, err)
				}
			}
			restaurant.PhotoURLs = append(restaurant.PhotoURLs, photoURL)
			if len(restaurant.PhotoURLs) == 5 {
				break
			}
		}

		if err := repo.Upsert(&restaurant); err != nil {
			fmt.Printf("Failed to save %s: %v\n", restaurant.Name, err)
			continue
		}
		created++
	}

	fmt.Printf("Seeding completed: %d of %d places saved\n", created, len(results))
}

func mapPlaceToRestaurant(place places.Result, city string) model.Restaurant {
	id := place.PlaceID
	if id == "" {
		id = uuid.New().String()
	}

	typesText := strings.Join(place.Types, " ")
	return model.Restaurant{
		ID:           id,
		Name:         place.Name,
		Address:      place.Address,
		City:         city,
		Latitude:     place.Latitude,
		Longitude:    place.Longitude,
		Category:     mapCategory(place.Name, place.Types),
		GoogleRating: place.Rating,
		ReviewCount:  place.UserRatingsTotal,
		PriceTier:    mapPriceLevel(place.PriceLevel),
		IsHalal:      halal.Classify(place.Name, place.Address, typesText),
	}
}

func mapCategory(name string, types []string) model.RestaurantCategory {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "hawker") || strings.Contains(lower, "kopitiam"):
		return model.CategoryHawker
	case strings.Contains(lower, "food court") || strings.Contains(lower, "foodcourt"):
		return model.CategoryFoodcourt
	}
	for _, t := range types {
		if t == "cafe" || t == "bakery" {
			return model.CategoryCafe
		}
	}
	return model.CategoryRestaurant
}

func mapPriceLevel(level *int) model.PriceTier {
	if level == nil {
		return ""
	}
	switch {
	case *level <= 1:
		return model.PriceBudget
	case *level == 2:
		return model.PriceModerate
	case *level == 3:
		return model.PriceUpscale
	default:
		return model.PriceLuxury
	}
}
