package models

import "time"

type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Zone groups spots under a name and price multiplier.
type Zone struct {
	ID              string    `bson:"id" json:"id"`
	Name            string    `bson:"name" json:"name"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Coordinates     GeoPoint  `bson:"coordinates" json:"coordinates"`
	TotalSpots      int       `bson:"totalSpots" json:"totalSpots"`
	AvailableSpots  int       `bson:"availableSpots" json:"availableSpots"`
	PriceMultiplier float64   `bson:"priceMultiplier" json:"priceMultiplier"`
	Features        []string  `bson:"features,omitempty" json:"features,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type ZoneInput struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Coordinates     GeoPoint `json:"coordinates"`
	TotalSpots      int      `json:"totalSpots"`
	AvailableSpots  int      `json:"availableSpots"`
	PriceMultiplier float64  `json:"priceMultiplier"`
	Features        []string `json:"features"`
}
