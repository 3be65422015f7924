package models

import (
	"fmt"
	"strings"
)

// ChargingType values seen in the station catalogue
const (
	ChargingTypeSlow      = "slow"
	ChargingTypeFast      = "fast"
	ChargingTypeSuperFast = "super_fast"
)

type Station struct {
	ID                  string   `json:"id" dynamodbav:"id"`
	Name                string   `json:"name" dynamodbav:"name"`
	Address             *string  `json:"address,omitempty" dynamodbav:"address,omitempty"`
	Lat                 float64  `json:"lat" dynamodbav:"lat"`
	Lng                 float64  `json:"lng" dynamodbav:"lng"`
	Operator            *string  `json:"operator,omitempty" dynamodbav:"operator,omitempty"`
	ChargingType        *string  `json:"chargingType,omitempty" dynamodbav:"chargingType,omitempty"`
	ServiceHours        *string  `json:"serviceHours,omitempty" dynamodbav:"serviceHours,omitempty"`
	Is24h               *bool    `json:"is24h,omitempty" dynamodbav:"is24h,omitempty"`
	TotalConnectors     *int     `json:"totalConnectors,omitempty" dynamodbav:"totalConnectors,omitempty"`
	AvailableConnectors *int     `json:"availableConnectors,omitempty" dynamodbav:"availableConnectors,omitempty"`
	MaxPowerKw          *float64 `json:"maxPowerKw,omitempty" dynamodbav:"maxPowerKw,omitempty"`
	ParkingSpots        *int     `json:"parkingSpots,omitempty" dynamodbav:"parkingSpots,omitempty"`
	Distance            *float64 `json:"distance,omitempty" dynamodbav:"-"`
}

// Location returns the station coordinate
func (s Station) Location() Coordinate {
	return Coordinate{Lat: s.Lat, Lng: s.Lng}
}

// Validate checks the fields the catalogue relies on
func (s Station) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("station ID is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("station %s: name is required", s.ID)
	}
	if s.Lat < -90 || s.Lat > 90 || s.Lng < -180 || s.Lng > 180 {
		return fmt.Errorf("station %s: coordinates out of range (%f, %f)", s.ID, s.Lat, s.Lng)
	}
	if s.AvailableConnectors != nil && s.TotalConnectors != nil && *s.AvailableConnectors > *s.TotalConnectors {
		return fmt.Errorf("station %s: available connectors exceed total", s.ID)
	}
	return nil
}

// Priority orders recommendation results
type Priority string

const (
	PriorityDistance  Priority = "distance"
	PriorityPower     Priority = "power"
	PriorityAvailable Priority = "available"
)

// RecommendationRequest describes what the caller is looking for around a point.
type RecommendationRequest struct {
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	Priority       Priority `json:"priority"`
	MaxDistance    float64  `json:"maxDistance"`
	Limit          int      `json:"limit"`
	MinPower       *float64 `json:"minPower,omitempty"`
	MinAvailable   *int     `json:"minAvailable,omitempty"`
	ChargingType   *string  `json:"chargingType,omitempty"`
	RouteDistances bool     `json:"routeDistances"`
}

const (
	DefaultMaxDistanceKm = 10.0
	DefaultLimit         = 20
)

// WithDefaults fills unset optional fields
func (r RecommendationRequest) WithDefaults() RecommendationRequest {
	if r.Priority == "" {
		r.Priority = PriorityDistance
	}
	if r.MaxDistance <= 0 {
		r.MaxDistance = DefaultMaxDistanceKm
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	return r
}

// Origin returns the request point. Callers must Validate first.
func (r RecommendationRequest) Origin() Coordinate {
	return Coordinate{Lat: *r.Lat, Lng: *r.Lng}
}

func (r RecommendationRequest) Validate() error {
	if r.Lat == nil {
		return fmt.Errorf("lat is required")
	}
	if r.Lng == nil {
		return fmt.Errorf("lng is required")
	}
	if *r.Lat < -90 || *r.Lat > 90 || *r.Lng < -180 || *r.Lng > 180 {
		return fmt.Errorf("coordinates out of range")
	}
	switch r.Priority {
	case "", PriorityDistance, PriorityPower, PriorityAvailable:
	default:
		return fmt.Errorf("invalid priority: %s", r.Priority)
	}
	return nil
}
