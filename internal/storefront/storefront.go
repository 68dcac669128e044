// Package storefront renders the public landing and thank-you pages.
package storefront

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/socialoura/spotyz/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PricingSource supplies the goal options shown on a landing page.
type PricingSource interface {
	Tiers(ctx context.Context, platform models.Platform) []models.PricingTier
}

// GoogleAds enables the conversion snippet on the thank-you page when both fields are set.
type GoogleAds struct {
	ID              string
	ConversionLabel string
}

func (g GoogleAds) Enabled() bool {
	return g.ID != "" && g.ConversionLabel != ""
}

type Pages struct {
	pricing  PricingSource
	ads      GoogleAds
	baseURL  string
	log      *slog.Logger
	landing  *template.Template
	thankYou *template.Template
}

// New builds the page handlers. baseURL prefixes the canonical and alternate
// links, e.g. https://socialoura.com.
func New(pricing PricingSource, ads GoogleAds, baseURL string, logger *slog.Logger) (*Pages, error) {
	landing, err := parse("landing.html")
	if err != nil {
		return nil, err
	}
	thankYou, err := parse("thank_you.html")
	if err != nil {
		return nil, err
	}
	return &Pages{
		pricing:  pricing,
		ads:      ads,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      logger,
		landing:  landing,
		thankYou: thankYou,
	}, nil
}

func parse(page string) (*template.Template, error) {
	tmpl, err := template.New(page).ParseFS(templateFS, "templates/base.html", "templates/"+page)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", page, err)
	}
	return tmpl, nil
}

// Register mounts the page routes on r.
func (p *Pages) Register(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/en/instagram", http.StatusFound)
	})
	r.Get("/{lang}/thank-you", p.handleThankYou)
	r.Get("/{lang}/{platform}", p.handleLanding)
}

type goal struct {
	Followers int
	Price     string
	Amount    int64
}

type platformLink struct {
	Name   string
	Href   string
	Active bool
}

type landingData struct {
	Lang      string
	Copy      copyText
	Platform  models.Platform
	Title     string
	Goals     []goal
	Platforms []platformLink
	Switch    string
	Canonical string
	Alternate string
}

func (p *Pages) handleLanding(w http.ResponseWriter, r *http.Request) {
	lang, ok := language(chi.URLParam(r, "lang"))
	platform := models.Platform(chi.URLParam(r, "platform"))
	if !ok || !platform.Valid() {
		http.NotFound(w, r)
		return
	}
	text := copies[lang]

	tiers := p.pricing.Tiers(r.Context(), platform)
	goals := make([]goal, 0, len(tiers))
	for _, tier := range tiers {
		goals = append(goals, goal{
			Followers: tier.Followers,
			Price:     formatPrice(lang, tier.Price.StringFixed(2)),
			Amount:    tier.Price.Shift(2).Round(0).IntPart(),
		})
	}

	links := make([]platformLink, 0, len(models.Platforms))
	for _, other := range models.Platforms {
		links = append(links, platformLink{
			Name:   displayName(other),
			Href:   "/" + lang + "/" + string(other),
			Active: other == platform,
		})
	}

	p.render(w, p.landing, landingData{
		Lang:      lang,
		Copy:      text,
		Platform:  platform,
		Title:     fmt.Sprintf(text.Headline, displayName(platform)),
		Goals:     goals,
		Platforms: links,
		Switch:    "/" + otherLanguage(lang) + "/" + string(platform),
		Canonical: p.baseURL + r.URL.Path,
		Alternate: p.baseURL + "/" + otherLanguage(lang) + "/" + string(platform),
	})
}

type thankYouData struct {
	Lang   string
	Copy   copyText
	Ads    GoogleAds
	SendTo    string
	Switch    string
	Canonical string
	Alternate string
}

func (p *Pages) handleThankYou(w http.ResponseWriter, r *http.Request) {
	lang, ok := language(chi.URLParam(r, "lang"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data := thankYouData{
		Lang:      lang,
		Copy:      copies[lang],
		Switch:    "/" + otherLanguage(lang) + "/thank-you",
		Canonical: p.baseURL + r.URL.Path,
		Alternate: p.baseURL + "/" + otherLanguage(lang) + "/thank-you",
	}
	if p.ads.Enabled() {
		data.Ads = p.ads
		data.SendTo = p.ads.ID + "/" + p.ads.ConversionLabel
	}
	p.render(w, p.thankYou, data)
}

func (p *Pages) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		p.log.Error("render page", "template", tmpl.Name(), "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func language(lang string) (string, bool) {
	_, ok := copies[lang]
	return lang, ok
}

func otherLanguage(lang string) string {
	if lang == "fr" {
		return "en"
	}
	return "fr"
}

// formatPrice renders "29.90" as €29.90 in English and 29,90 € in French.
func formatPrice(lang, fixed string) string {
	if lang == "fr" {
		return strings.Replace(fixed, ".", ",", 1) + " €"
	}
	return "€" + fixed
}

func displayName(p models.Platform) string {
	switch p {
	case models.PlatformTikTok:
		return "TikTok"
	case models.PlatformYouTube:
		return "YouTube"
	case models.PlatformSpotify:
		return "Spotify"
	default:
		return "Instagram"
	}
}
