// Package store persists the charging-station catalogue.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/chargeroute/backend-go/internal/config"
	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

// DynamoDBClient defines the interface for DynamoDB operations we need
type DynamoDBClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStationRepository keeps one item per station, keyed by id
type DynamoStationRepository struct {
	client DynamoDBClient
	config *config.StoreConfig
	sleep  func(time.Duration)
}

func NewDynamoStationRepository(client DynamoDBClient, cfg *config.StoreConfig) *DynamoStationRepository {
	return &DynamoStationRepository{
		client: client,
		config: cfg,
		sleep:  time.Sleep,
	}
}

// FindStationsInRange scans for stations inside bounds
func (r *DynamoStationRepository) FindStationsInRange(ctx context.Context, bounds models.Bounds) ([]models.Station, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.config.StationsTable),
		FilterExpression: aws.String("#lat BETWEEN :minLat AND :maxLat AND #lng BETWEEN :minLng AND :maxLng"),
		ExpressionAttributeNames: map[string]string{
			"#lat": "lat",
			"#lng": "lng",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":minLat": numberValue(bounds.MinLat),
			":maxLat": numberValue(bounds.MaxLat),
			":minLng": numberValue(bounds.MinLng),
			":maxLng": numberValue(bounds.MaxLng),
		},
	}

	var stations []models.Station
	paginator := dynamodb.NewScanPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scanning stations table: %w", err)
		}

		var batch []models.Station
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshaling stations: %w", err)
		}
		stations = append(stations, batch...)
	}

	log.Debug().
		Int("count", len(stations)).
		Float64("minLat", bounds.MinLat).
		Float64("maxLat", bounds.MaxLat).
		Msg("Loaded stations from DynamoDB")

	return stations, nil
}

// SaveStations writes stations in batches, retrying unprocessed items with
// exponential backoff.
func (r *DynamoStationRepository) SaveStations(ctx context.Context, stations []models.Station) error {
	for _, s := range stations {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid station record: %w", err)
		}
	}

	batchSize := r.config.BatchSize
	for i := 0; i < len(stations); i += batchSize {
		end := min(i+batchSize, len(stations))

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, s := range stations[i:end] {
			item, err := attributevalue.MarshalMap(s)
			if err != nil {
				return fmt.Errorf("marshaling station %s: %w", s.ID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := r.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}

	log.Info().Int("count", len(stations)).Msg("Saved stations to DynamoDB")
	return nil
}

func (r *DynamoStationRepository) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := requests
	var lastErr error

	for retry := 0; retry < r.config.MaxBatchRetries; retry++ {
		if retry > 0 {
			r.sleep(time.Duration(1<<(retry-1)) * 100 * time.Millisecond)
		}

		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.config.StationsTable: pending,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}

		pending = out.UnprocessedItems[r.config.StationsTable]
		if len(pending) == 0 {
			return nil
		}
		lastErr = fmt.Errorf("%d items unprocessed", len(pending))
	}

	return fmt.Errorf("batch writing stations after %d retries: %w", r.config.MaxBatchRetries, lastErr)
}

func numberValue(f float64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}
