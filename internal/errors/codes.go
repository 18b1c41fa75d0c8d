package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// The frontend maps these codes to display messages.

const (
	// ==================== Restaurants (RESTAURANT_) ====================
	RestaurantNotFound = "RESTAURANT_NOT_FOUND"

	// ==================== Dishes (DISH_) ====================
	DishNotFound      = "DISH_NOT_FOUND"
	DishAlreadyExists = "DISH_ALREADY_EXISTS"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput    = "VALIDATION_INVALID_INPUT"
	ValidationRequired        = "VALIDATION_REQUIRED_FIELD"
	ValidationInvalidCategory = "VALIDATION_INVALID_CATEGORY"
	ValidationInvalidLocation = "VALIDATION_INVALID_LOCATION"

	// ==================== Cron / batch (CRON_) ====================
	CronUnauthorized = "CRON_UNAUTHORIZED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalExternalAPI = "INTERNAL_EXTERNAL_API_ERROR"
	InternalCacheError  = "INTERNAL_CACHE_ERROR"
)
