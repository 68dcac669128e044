package storage

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Endpoint:     "http://localhost:9000",
		Region:       "eu-west-3",
		AccessKey:    "AKIDEXAMPLE",
		SecretKey:    "secret",
		Bucket:       "spotyz-exports",
		UsePathStyle: true,
	}
}

func TestNewUploaderValidation(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"bucket":      func(c *Config) { c.Bucket = "" },
		"region":      func(c *Config) { c.Region = "" },
		"credentials": func(c *Config) { c.SecretKey = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := NewUploader(cfg)
			assert.Error(t, err)
		})
	}
}

func TestGenerateKey(t *testing.T) {
	u, err := NewUploader(testConfig())
	require.NoError(t, err)

	key := u.generateKey("text/csv; charset=utf-8", time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC))
	assert.Regexp(t, regexp.MustCompile(`^exports/2026/03/07/[0-9a-f-]{36}\.csv$`), key)
}

func TestExtensionFromContentType(t *testing.T) {
	assert.Equal(t, ".csv", extensionFromContentType("text/csv"))
	assert.Equal(t, ".json", extensionFromContentType("Application/JSON"))
	assert.Equal(t, ".bin", extensionFromContentType("image/png"))
}

func TestDownloadURLIsPresigned(t *testing.T) {
	u, err := NewUploader(testConfig())
	require.NoError(t, err)

	raw, err := u.DownloadURL(context.Background(), "exports/2026/03/07/orders.csv")
	require.NoError(t, err)

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", parsed.Host)
	assert.Equal(t, "/spotyz-exports/exports/2026/03/07/orders.csv", parsed.Path)
	assert.NotEmpty(t, parsed.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", parsed.Query().Get("X-Amz-Expires"))
}
