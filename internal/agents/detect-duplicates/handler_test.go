// internal/agents/detect-duplicates/handler_test.go
package detectduplicates

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"provider-validation/internal/common/database"
	"provider-validation/internal/common/logger"
	"provider-validation/internal/dedupe"
	"provider-validation/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCache struct {
	key     string
	payload []byte
	ttl     time.Duration
	err     error
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.key = key
	c.payload = value.([]byte)
	c.ttl = expiration
	return c.err
}

func createTestHandler(t *testing.T, cache ReportCache) *Handler {
	return NewHandler(&Config{
		Timeout:  10 * time.Second,
		CacheKey: "dedupe:report:latest",
		CacheTTL: time.Hour,
	}, cache, logger.NewTestLogger(t))
}

func createProviders() []models.Provider {
	return []models.Provider{
		{
			ProviderID:    "PRV00001",
			NPI:           "1234567890",
			FirstName:     "John",
			LastName:      "Smith",
			Specialty:     "Cardiology",
			Phone:         "(555) 123-4567",
			Address:       "100 Medical Plaza",
			City:          "Springfield",
			State:         "IL",
			ZipCode:       "62701",
			LicenseNumber: "MD12345",
		},
		{
			ProviderID:    "PRV00002",
			NPI:           "1234567890",
			FirstName:     "John",
			LastName:      "Smith",
			Specialty:     "Cardiology",
			Phone:         "555-123-4567",
			Address:       "100 Medical Plaza",
			City:          "Springfield",
			State:         "IL",
			ZipCode:       "62701",
			LicenseNumber: "MD12345",
		},
		{
			ProviderID: "PRV00003",
			NPI:        "9876543210",
			FirstName:  "Maria",
			LastName:   "Garcia",
			Specialty:  "Dermatology",
			Phone:      "(555) 999-0000",
			Address:    "200 Elm Street",
			City:       "Chicago",
			State:      "IL",
			ZipCode:    "60601",
		},
	}
}

func TestHandler_Execute(t *testing.T) {
	handler := createTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{Providers: createProviders()})
	require.NoError(t, err)
	require.NotNil(t, output)

	r := output.Report
	assert.Equal(t, 3, r.Summary.TotalProvidersAnalyzed)
	assert.Equal(t, 1, r.Summary.PotentialDuplicatesFound)
	assert.Equal(t, 1, r.Summary.MergeCandidates)

	require.Len(t, r.Duplicates, 1)
	assert.Equal(t, "PRV00001", r.Duplicates[0].Provider1.ID)
	assert.Equal(t, "PRV00002", r.Duplicates[0].Provider2.ID)
	assert.Equal(t, "Very High", r.Duplicates[0].Confidence)
}

func TestHandler_Execute_EmptyBatch(t *testing.T) {
	handler := createTestHandler(t, nil)

	output, err := handler.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Zero(t, output.Report.Summary.TotalProvidersAnalyzed)
	assert.Empty(t, output.Report.Duplicates)
}

func TestHandler_Execute_CachesReport(t *testing.T) {
	cache := &recordingCache{}
	handler := createTestHandler(t, cache)

	_, err := handler.Execute(context.Background(), &Input{Providers: createProviders()})
	require.NoError(t, err)

	assert.Equal(t, "dedupe:report:latest", cache.key)
	assert.Equal(t, time.Hour, cache.ttl)

	var cached dedupe.Report
	require.NoError(t, json.Unmarshal(cache.payload, &cached))
	assert.Equal(t, 1, cached.Summary.PotentialDuplicatesFound)
}

func TestHandler_Execute_CacheFailureDoesNotFailJob(t *testing.T) {
	cache := &recordingCache{err: errors.New("connection refused")}
	handler := createTestHandler(t, cache)

	output, err := handler.Execute(context.Background(), &Input{Providers: createProviders()})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Report.Summary.PotentialDuplicatesFound)
}

func TestHandler_Execute_WithRedisClient(t *testing.T) {
	db, mock := redismock.NewClientMock()
	mock.Regexp().ExpectSet("dedupe:report:latest", `.*`, time.Hour).SetVal("OK")

	handler := createTestHandler(t, &database.RedisClient{Client: db})

	_, err := handler.Execute(context.Background(), &Input{Providers: createProviders()})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
