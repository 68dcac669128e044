package storefront

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/pkg/logger"
)

type staticPricing map[models.Platform][]models.PricingTier

func (s staticPricing) Tiers(_ context.Context, platform models.Platform) []models.PricingTier {
	return s[platform]
}

func newRouter(t *testing.T, ads GoogleAds) http.Handler {
	t.Helper()
	pages, err := New(staticPricing{
		models.PlatformSpotify: {
			{Followers: 500, Price: decimal.RequireFromString("14.9")},
			{Followers: 1000, Price: decimal.RequireFromString("24.90")},
		},
	}, ads, "https://socialoura.test/", logger.Discard())
	require.NoError(t, err)
	r := chi.NewRouter()
	pages.Register(r)
	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRootRedirects(t *testing.T) {
	rec := get(newRouter(t, GoogleAds{}), "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/instagram", rec.Header().Get("Location"))
}

func TestLandingPage(t *testing.T) {
	h := newRouter(t, GoogleAds{})

	rec := get(h, "/en/spotify")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Grow your Spotify audience")
	assert.Contains(t, body, `data-amount="1490"`)
	assert.Contains(t, body, "€24.90")
	assert.Contains(t, body, `href="/fr/spotify"`)

	rec = get(h, "/fr/spotify")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "14,90 €")
	assert.Contains(t, rec.Body.String(), `lang="fr"`)
}

func TestUnknownLanguageOrPlatform(t *testing.T) {
	h := newRouter(t, GoogleAds{})
	assert.Equal(t, http.StatusNotFound, get(h, "/de/instagram").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/en/myspace").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/es/thank-you").Code)
}

func TestThankYouConversionSnippet(t *testing.T) {
	rec := get(newRouter(t, GoogleAds{}), "/en/thank-you")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you for your order!")
	assert.NotContains(t, rec.Body.String(), "gtag")

	rec = get(newRouter(t, GoogleAds{ID: "AW-123456", ConversionLabel: "abcDEF"}), "/fr/thank-you")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Merci pour votre commande")
	assert.Contains(t, rec.Body.String(), "googletagmanager.com/gtag/js?id=AW-123456")
	assert.Contains(t, rec.Body.String(), "abcDEF")
}

func TestCanonicalLinksUseBaseURL(t *testing.T) {
	h := newRouter(t, GoogleAds{})

	body := get(h, "/fr/tiktok").Body.String()
	assert.Contains(t, body, `<link rel="canonical" href="https://socialoura.test/fr/tiktok">`)
	assert.Contains(t, body, `hreflang="en" href="https://socialoura.test/en/tiktok"`)

	body = get(h, "/en/thank-you").Body.String()
	assert.Contains(t, body, `<link rel="canonical" href="https://socialoura.test/en/thank-you">`)
	assert.Contains(t, body, `hreflang="fr" href="https://socialoura.test/fr/thank-you"`)
}
