package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VEGGIEBOX_MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("VEGGIEBOX_SHOPIFY_SHOP", "harvest-lane")
	t.Setenv("VEGGIEBOX_SHOPIFY_ACCESS_TOKEN", "shpat_test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.IsDev())
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "veggiebox", cfg.Mongo.Database)
	assert.Equal(t, uint64(20), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, "Pacific/Auckland", cfg.Delivery.Timezone)
	assert.Equal(t, "2021-01", cfg.Shopify.APIVersion)
	assert.Equal(t, 24*time.Hour, cfg.Redis.WebhookTTL)
	assert.Equal(t, 8, cfg.Import.Concurrency)
}

func TestLoadMissingMongoURI(t *testing.T) {
	t.Setenv("VEGGIEBOX_MONGO_URI", "")
	t.Setenv("VEGGIEBOX_SHOPIFY_SHOP", "harvest-lane")
	t.Setenv("VEGGIEBOX_SHOPIFY_ACCESS_TOKEN", "shpat_test")

	_, err := Load()
	require.Error(t, err)
}

func TestShopifyBaseURL(t *testing.T) {
	cfg := ShopifyConfig{ShopName: "harvest-lane", APIVersion: "2021-01"}
	assert.Equal(t, "https://harvest-lane.myshopify.com/admin/api/2021-01", cfg.BaseURL())
}
