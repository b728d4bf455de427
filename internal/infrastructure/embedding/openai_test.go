package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/backend/internal/domain"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:            "test-api-key",
		BaseURL:           baseURL,
		Model:             "text-embedding-3-small",
		RequestsPerSecond: 1000,
		Burst:             1000,
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, defaultBaseURL, client.baseURL)
	assert.Equal(t, defaultModel, client.model)
	assert.Equal(t, 3072, client.Dimensions())
	assert.Equal(t, defaultModel, client.Model())
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestNewClient_DimensionsFromModel(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", Model: "text-embedding-ada-002"})
	require.NoError(t, err)
	assert.Equal(t, 1536, client.Dimensions())
}

func TestNewClient_UnknownModelNeedsDimensions(t *testing.T) {
	_, err := NewClient(Config{APIKey: "k", Model: "custom-model"})
	assert.Error(t, err)

	client, err := NewClient(Config{APIKey: "k", Model: "custom-model", Dimensions: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, client.Dimensions())
}

func TestEmbed_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, []string{"alpha", "beta"}, req.Input)

		// Vectors deliberately out of order: index restores it.
		response := embeddingResponse{
			Data: []embeddingData{
				{Embedding: make([]float32, 1536), Index: 1},
				{Embedding: make([]float32, 1536), Index: 0},
			},
		}
		response.Data[0].Embedding[0] = 2 // belongs to "beta"
		response.Data[1].Embedding[0] = 1 // belongs to "alpha"

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(1), vectors[0][0])
	assert.Equal(t, float32(2), vectors[1][0])
}

func TestEmbed_EmptyInput(t *testing.T) {
	client, err := NewClient(testConfig("http://unused"))
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbed_RateLimitedIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestEmbed_ServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestEmbed_UnauthorizedIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
	assert.False(t, domain.IsTransient(err))
}

func TestEmbed_NetworkErrorIsTransient(t *testing.T) {
	client, err := NewClient(testConfig("http://127.0.0.1:0"))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsTransient(err))
}

func TestEmbed_VectorCountMismatchIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := embeddingResponse{
			Data: []embeddingData{{Embedding: make([]float32, 1536), Index: 0}},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha", "beta"})
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
}

func TestEmbed_DimensionMismatchIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := embeddingResponse{
			Data: []embeddingData{{Embedding: make([]float32, 8), Index: 0}},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
}

func TestEmbed_APIErrorBodyIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := embeddingResponse{
			Error: &apiError{Message: "model deprecated", Type: "invalid_request_error"},
		}
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"alpha"})
	require.Error(t, err)
	assert.True(t, domain.IsPermanent(err))
	assert.Contains(t, err.Error(), "model deprecated")
}
