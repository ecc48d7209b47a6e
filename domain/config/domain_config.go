package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Service region (South Korea bounding box)
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64

	// Shop constraints
	MaxShopNameLength        int
	MaxShopDescriptionLength int
	MaxShopImages            int
	MaxDeliveryTipTiers      int

	// Review constraints
	MinReviewScore         float64 // exclusive
	MaxReviewScore         float64 // inclusive
	MaxReviewTitleLength   int
	MaxReviewContentLength int
	MaxReviewPhotos        int

	// Reply constraints
	MaxReplyContentLength int

	// Cache retention for every entity kind
	CacheTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinLatitude:  33.0,
		MaxLatitude:  38.7,
		MinLongitude: 124.5,
		MaxLongitude: 132.0,

		MaxShopNameLength:        50,
		MaxShopDescriptionLength: 1000,
		MaxShopImages:            20,
		MaxDeliveryTipTiers:      10,

		MinReviewScore:         0,
		MaxReviewScore:         10,
		MaxReviewTitleLength:   50,
		MaxReviewContentLength: 200,
		MaxReviewPhotos:        10,

		MaxReplyContentLength: 100,

		CacheTTL: 24 * time.Hour,
	}
}

// InRegion reports whether the coordinate lies inside the service region.
func (c *DomainConfig) InRegion(lat, lon float64) bool {
	return lat >= c.MinLatitude && lat <= c.MaxLatitude &&
		lon >= c.MinLongitude && lon <= c.MaxLongitude
}
