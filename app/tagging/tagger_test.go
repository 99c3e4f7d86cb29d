package tagging

import (
	"testing"

	"github.com/leadcomb/lead-comb/app/database"
)

func names(candidates []TagCandidate) map[string]TagCandidate {
	out := make(map[string]TagCandidate, len(candidates))
	for _, c := range candidates {
		out[c.Name] = c
	}
	return out
}

func TestExtractBioKeywords(t *testing.T) {
	contact := &database.Contact{
		Platform: "instagram",
		Bio:      "Certified gym trainer sharing daily workout plans",
	}

	got := names(Extract(contact, nil))

	fitness, ok := got["fitness"]
	if !ok {
		t.Fatal("expected fitness tag from bio keywords")
	}
	if fitness.Confidence != 0.7 {
		t.Errorf("expected confidence 0.7, got %v", fitness.Confidence)
	}
	if fitness.Source != SourceBioAnalysis {
		t.Errorf("expected source %q, got %q", SourceBioAnalysis, fitness.Source)
	}
	if fitness.Color != "#EF4444" {
		t.Errorf("expected category color #EF4444, got %q", fitness.Color)
	}
}

func TestExtractHashtags(t *testing.T) {
	contact := &database.Contact{
		Platform: "instagram",
		Bio:      "Love #sunsets and #go, more at #PhotoDaily",
	}

	got := names(Extract(contact, nil))

	if _, ok := got["go"]; ok {
		t.Error("hashtags of length 2 or less should be skipped")
	}
	for _, name := range []string{"sunsets", "photodaily"} {
		tag, ok := got[name]
		if !ok {
			t.Fatalf("expected hashtag tag %q", name)
		}
		if tag.Confidence != 0.8 || tag.Source != SourceHashtag {
			t.Errorf("tag %q: got confidence %v source %q", name, tag.Confidence, tag.Source)
		}
	}
}

func TestExtractFollowerBands(t *testing.T) {
	tests := []struct {
		followers int
		want      string
	}{
		{100000, "mega-influencer"},
		{99999, "macro-influencer"},
		{10000, "macro-influencer"},
		{9999, "micro-influencer"},
		{1000, "micro-influencer"},
		{999, ""},
	}

	for _, tt := range tests {
		contact := &database.Contact{Platform: "twitter", FollowerCount: tt.followers}
		got := names(Extract(contact, nil))

		for _, band := range []string{"mega-influencer", "macro-influencer", "micro-influencer"} {
			_, present := got[band]
			if band == tt.want && !present {
				t.Errorf("followers=%d: expected %q", tt.followers, band)
			}
			if band != tt.want && present {
				t.Errorf("followers=%d: unexpected %q", tt.followers, band)
			}
		}
	}
}

func TestExtractEngagementBands(t *testing.T) {
	tests := []struct {
		rate *float64
		want string
	}{
		{ptr(12.0), "high-engagement"},
		{ptr(10.0), "high-engagement"},
		{ptr(9.9), "medium-engagement"},
		{ptr(5.0), "medium-engagement"},
		{ptr(2.0), "low-engagement"},
		{ptr(1.9), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		contact := &database.Contact{Platform: "twitter", EngagementRate: tt.rate}
		got := names(Extract(contact, nil))

		for _, band := range []string{"high-engagement", "medium-engagement", "low-engagement"} {
			_, present := got[band]
			if band == tt.want && !present {
				t.Errorf("rate=%v: expected %q", tt.rate, band)
			}
			if band != tt.want && present {
				t.Errorf("rate=%v: unexpected %q", tt.rate, band)
			}
		}
	}
}

func TestExtractDescriptions(t *testing.T) {
	contact := &database.Contact{
		Platform:       "instagram",
		Bio:            "Travel photographer #sunsets",
		Category:       "Digital Creator",
		FollowerCount:  150000,
		EngagementRate: ptr(5.25),
		IsVerified:     true,
	}

	got := names(Extract(contact, nil))

	tests := []struct {
		name string
		want string
	}{
		{"travel", "Industry: travel"},
		{"sunsets", "Hashtag: #sunsets"},
		{"digital-creator", "Category: Digital Creator"},
		{"instagram", "Platform: instagram"},
		{"mega-influencer", "Mega influencer: 150,000 followers"},
		{"medium-engagement", "Medium engagement: 5.2%"},
		{"verified-account", "Verified account"},
	}
	for _, tt := range tests {
		tag, ok := got[tt.name]
		if !ok {
			t.Errorf("expected tag %q", tt.name)
			continue
		}
		if tag.Description != tt.want {
			t.Errorf("tag %q: description %q, want %q", tt.name, tag.Description, tt.want)
		}
	}
}

func TestExtractPlatformAndAccountType(t *testing.T) {
	contact := &database.Contact{
		Platform:   "linkedin",
		IsBusiness: true,
		IsVerified: true,
	}

	got := names(Extract(contact, nil))

	platform, ok := got["linkedin"]
	if !ok {
		t.Fatal("expected platform tag")
	}
	if platform.Color != "#0A66C2" || platform.Confidence != 1.0 {
		t.Errorf("platform tag: got color %q confidence %v", platform.Color, platform.Confidence)
	}
	if _, ok := got["business-account"]; !ok {
		t.Error("expected business-account tag")
	}
	if _, ok := got["verified-account"]; !ok {
		t.Error("expected verified-account tag")
	}
}

func TestExtractMajorCity(t *testing.T) {
	contact := &database.Contact{Platform: "instagram", Location: "Brooklyn, New York, USA"}

	got := names(Extract(contact, nil))

	city, ok := got["major-city"]
	if !ok {
		t.Fatal("expected major-city tag for New York location")
	}
	if city.Source != SourceLocation || city.Confidence != 0.9 {
		t.Errorf("major-city: got source %q confidence %v", city.Source, city.Confidence)
	}

	contact.Location = "Springfield"
	if _, ok := names(Extract(contact, nil))["major-city"]; ok {
		t.Error("unexpected major-city tag for non-listed location")
	}
}

func TestExtractDedupeKeepsFirst(t *testing.T) {
	contact := &database.Contact{
		Platform: "instagram",
		Bio:      "All about fitness",
		Category: "Fitness",
	}

	candidates := Extract(contact, nil)

	count := 0
	var kept TagCandidate
	for _, c := range candidates {
		if c.Name == "fitness" {
			count++
			kept = c
		}
	}
	if count != 1 {
		t.Fatalf("expected single fitness tag, got %d", count)
	}
	if kept.Source != SourceBioAnalysis {
		t.Errorf("expected bio rule to win, got source %q", kept.Source)
	}
}

func TestExtractProfileTags(t *testing.T) {
	contact := &database.Contact{Platform: "tiktok"}

	got := names(Extract(contact, []string{"Street Food!", "  ", "Vlog"}))

	for _, name := range []string{"street-food", "vlog"} {
		tag, ok := got[name]
		if !ok {
			t.Fatalf("expected profile tag %q", name)
		}
		if tag.Source != SourceProfileTags || tag.Confidence != 0.8 {
			t.Errorf("tag %q: got source %q confidence %v", name, tag.Source, tag.Confidence)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Digital Creator", "digital-creator"},
		{"São Paulo", "sao-paulo"},
		{"  Food & Beverage  ", "food--beverage"},
		{"Café", "cafe"},
		{"!!!", ""},
		{"-already-slugged-", "already-slugged"},
	}

	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func ptr(v float64) *float64 { return &v }
