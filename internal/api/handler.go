package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type APIResponse struct {
	ResponseType string `json:"responseType"`
}

func (r APIResponse) GetResponseType() string {
	return r.ResponseType
}

type StationsResponse struct {
	APIResponse
	Stations []models.Station `json:"stations"`
}

type DistancesResponse struct {
	APIResponse
	Distances models.DistanceResult `json:"distances"`
	Progress  models.BatchProgress  `json:"progress"`
}

type ErrorResponse struct {
	APIResponse
	Error string `json:"error"`
}

func NewStationsResponse(stations []models.Station) *StationsResponse {
	if stations == nil {
		stations = []models.Station{}
	}
	return &StationsResponse{
		APIResponse: APIResponse{ResponseType: "stations"},
		Stations:    stations,
	}
}

func NewDistancesResponse(distances models.DistanceResult, progress models.BatchProgress) *DistancesResponse {
	return &DistancesResponse{
		APIResponse: APIResponse{ResponseType: "distances"},
		Distances:   distances,
		Progress:    progress,
	}
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		APIResponse: APIResponse{ResponseType: "error"},
		Error:       message,
	}
}

// Response helpers
func Success(body interface{}) (events.APIGatewayProxyResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Error("Internal Server Error", http.StatusInternalServerError)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(jsonBody),
	}, nil
}

func Error(message string, statusCode int) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(NewErrorResponse(message))

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(body),
	}, nil
}

// DecodeBody unmarshals a JSON request body. A malformed body yields a
// ValidationError.
func DecodeBody(request events.APIGatewayProxyRequest, v interface{}) error {
	if request.Body == "" {
		return NewValidationError("request body is required")
	}
	if err := json.Unmarshal([]byte(request.Body), v); err != nil {
		return NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// ParseCoordinates reads lat and lng (or lon) query parameters. ok is false
// when either is missing.
func ParseCoordinates(params map[string]string) (lat, lng float64, ok bool, err error) {
	latStr, hasLat := params["lat"]
	lngStr, hasLng := params["lng"]
	if !hasLng {
		lngStr, hasLng = params["lon"]
	}

	if !hasLat || !hasLng {
		return 0, 0, false, nil
	}

	lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false, InvalidCoordinatesError{}
	}

	lng, err = strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, false, InvalidCoordinatesError{}
	}

	if err := ValidateCoordinate(models.Coordinate{Lat: lat, Lng: lng}); err != nil {
		return 0, 0, false, err
	}

	return lat, lng, true, nil
}

// ValidateCoordinate checks WGS84 ranges
func ValidateCoordinate(c models.Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return InvalidCoordinatesError{}
	}
	return nil
}

type InvalidCoordinatesError struct{}

func (e InvalidCoordinatesError) Error() string {
	return "Invalid coordinates"
}

// ValidationError is returned for requests that can never succeed as sent
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}
