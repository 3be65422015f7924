package models

import "strconv"

// DestinationTask is one pair to resolve against the batch origin.
type DestinationTask struct {
	ID          string
	Destination Coordinate
}

// DistanceResult maps task IDs to kilometres. A nil value marks a pair that
// could not be resolved.
type DistanceResult map[string]*float64

// Set stores km for id
func (r DistanceResult) Set(id string, km float64) {
	r[id] = &km
}

// Value returns the distance for id and whether it was resolved.
func (r DistanceResult) Value(id string) (float64, bool) {
	v, ok := r[id]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// BatchProgress is reported after every pair of a batch settles.
type BatchProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TaskID returns id, or the positional index when id is empty.
func TaskID(id string, index int) string {
	if id != "" {
		return id
	}
	return strconv.Itoa(index)
}
