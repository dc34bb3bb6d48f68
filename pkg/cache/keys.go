package cache

import "fmt"

// Cache key builders. All keys share the service prefix so DeletePattern
// can scope invalidation without touching rate-limit keys.

const keyPrefix = "revticket:cache"

// SeatMapKey is the cached seat map for a showtime
func SeatMapKey(showtimeID string) string {
	return fmt.Sprintf("%s:seatmap:%s", keyPrefix, showtimeID)
}

// ShowtimeKey is the cached showtime record
func ShowtimeKey(showtimeID string) string {
	return fmt.Sprintf("%s:showtime:%s", keyPrefix, showtimeID)
}
