package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MockSource generates canned candidate contacts per platform and scraping
// type. It stands in for a real scraping backend behind the Source interface;
// the pipeline downstream does not care which it talks to.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Source = (*MockSource)(nil)

func NewMockSource(seed int64) *MockSource {
	return &MockSource{rng: rand.New(rand.NewSource(seed))}
}

type generateFunc func(rng *rand.Rand, query string, limit int) []Candidate

var generators = map[string]map[string]generateFunc{
	"instagram": {
		"hashtag":   instagramHashtag,
		"followers": instagramFollowers,
		"location":  instagramLocation,
		"profile":   singleProfile("instagram", "https://instagram.com/"),
	},
	"tiktok": {
		"hashtag":  tiktokHashtag,
		"trending": tiktokTrending,
		"creators": tiktokCreators,
		"profile":  singleProfile("tiktok", "https://tiktok.com/@"),
	},
	"twitter": {
		"keyword":   twitterKeyword,
		"trending":  twitterTrending,
		"followers": twitterFollowers,
		"profile":   singleProfile("twitter", "https://twitter.com/"),
	},
	"facebook": {
		"pages":    facebookPages,
		"groups":   facebookGroups,
		"business": facebookBusiness,
		"profile":  singleProfile("facebook", "https://facebook.com/"),
	},
	"linkedin": {
		"professionals": linkedinProfessionals,
		"companies":     linkedinCompanies,
		"jobtitle":      linkedinJobTitle,
		"profile":       singleProfile("linkedin", "https://linkedin.com/in/"),
	},
	"youtube": {
		"channels":    youtubeChannels,
		"trending":    youtubeTrending,
		"subscribers": youtubeSubscribers,
		"profile":     singleProfile("youtube", "https://youtube.com/@"),
	},
}

func (s *MockSource) Fetch(ctx context.Context, platform, scrapingType, query string, opts Options) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	types, ok := generators[platform]
	if !ok {
		return nil, &FetchError{Platform: platform, ScrapingType: scrapingType, Query: query,
			Err: errors.New("unsupported platform")}
	}
	gen, ok := types[scrapingType]
	if !ok {
		return nil, &FetchError{Platform: platform, ScrapingType: scrapingType, Query: query,
			Err: errors.New("unsupported scraping type")}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	candidates := gen(s.rng, query, limit)
	s.mu.Unlock()

	for i := range candidates {
		candidates[i].Normalize()
	}
	return candidates, nil
}

// title capitalizes queries for display names. A fresh caser per call keeps
// concurrent fetches safe.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func rate(rng *rand.Rand, base, spread float64) *float64 {
	v := base + rng.Float64()*spread
	return &v
}

func instagramHashtag(rng *rand.Rand, query string, limit int) []Candidate {
	categories := []string{"Digital Creator", "Blogger", "Photographer"}
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("instagram_user_%s_%d", query, i),
			Username:       fmt.Sprintf("user_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("User %d #%s", i, query),
			ProfileURL:     fmt.Sprintf("https://instagram.com/user_%s_%d", query, i),
			Bio:            fmt.Sprintf("Love #%s | Content creator | DM for collabs", query),
			FollowerCount:  rng.Intn(10000) + 100,
			FollowingCount: rng.Intn(1000) + 50,
			PostCount:      rng.Intn(500) + 10,
			IsVerified:     rng.Float64() > 0.8,
			IsBusiness:     rng.Float64() > 0.6,
			Category:       pick(rng, categories),
			EngagementRate: rate(rng, 1, 5),
			ScrapingQuery:  query,
		})
	}
	return out
}

func instagramFollowers(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("instagram_follower_%s_%d", query, i),
			Username:       fmt.Sprintf("follower_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Follower %d", i),
			ProfileURL:     fmt.Sprintf("https://instagram.com/follower_%s_%d", query, i),
			Bio:            fmt.Sprintf("Following @%s | Lifestyle and daily routine", query),
			FollowerCount:  rng.Intn(5000) + 20,
			FollowingCount: rng.Intn(2000) + 100,
			PostCount:      rng.Intn(300),
			IsVerified:     rng.Float64() > 0.95,
			IsBusiness:     rng.Float64() > 0.8,
			EngagementRate: rate(rng, 0.5, 4),
			ScrapingQuery:  query,
		})
	}
	return out
}

func instagramLocation(rng *rand.Rand, query string, limit int) []Candidate {
	locations := []string{"New York", "Los Angeles", "London", "Tokyo", "Paris"}
	categories := []string{"Local Business", "Food & Beverage", "Retail", "Service"}
	location := pick(rng, locations)
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("instagram_local_%s_%d", query, i),
			Username:       fmt.Sprintf("local_%s_%d", strings.ToLower(strings.ReplaceAll(location, " ", "")), i),
			DisplayName:    fmt.Sprintf("Local User %d", i),
			ProfileURL:     fmt.Sprintf("https://instagram.com/local_%s_%d", query, i),
			Bio:            fmt.Sprintf("Based in %s | Local business | #%sLife", location, strings.ReplaceAll(location, " ", "")),
			Location:       location,
			FollowerCount:  rng.Intn(2000) + 50,
			FollowingCount: rng.Intn(500) + 20,
			PostCount:      rng.Intn(200) + 5,
			IsBusiness:     rng.Float64() > 0.4,
			Category:       pick(rng, categories),
			EngagementRate: rate(rng, 0.5, 3),
			ScrapingQuery:  query,
		})
	}
	return out
}

func tiktokHashtag(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("tiktok_user_%s_%d", query, i),
			Username:       fmt.Sprintf("tt_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Creator %d", i),
			ProfileURL:     fmt.Sprintf("https://tiktok.com/@tt_%s_%d", query, i),
			Bio:            fmt.Sprintf("#%s videos daily | Music and lifestyle content", query),
			FollowerCount:  rng.Intn(50000) + 500,
			FollowingCount: rng.Intn(1000) + 10,
			PostCount:      rng.Intn(800) + 20,
			IsVerified:     rng.Float64() > 0.9,
			Category:       "Entertainment",
			EngagementRate: rate(rng, 2, 8),
			ScrapingQuery:  query,
		})
	}
	return out
}

func tiktokTrending(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("tiktok_trending_%s_%d", query, i),
			Username:       fmt.Sprintf("trending_%d", i),
			DisplayName:    fmt.Sprintf("Trending Creator %d", i),
			ProfileURL:     fmt.Sprintf("https://tiktok.com/@trending_%d", i),
			Bio:            "Viral content | Brand deals open | Link in bio",
			FollowerCount:  rng.Intn(500000) + 50000,
			FollowingCount: rng.Intn(500),
			PostCount:      rng.Intn(1500) + 100,
			IsVerified:     rng.Float64() > 0.5,
			Category:       "Entertainment",
			EngagementRate: rate(rng, 5, 10),
			ScrapingQuery:  query,
		})
	}
	return out
}

func tiktokCreators(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("tiktok_creator_%s_%d", query, i),
			Username:       fmt.Sprintf("%s_creator_%d", query, i),
			DisplayName:    fmt.Sprintf("%s Creator %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://tiktok.com/@%s_creator_%d", query, i),
			Bio:            fmt.Sprintf("%s niche content | Collabs welcome", query),
			FollowerCount:  rng.Intn(100000) + 1000,
			FollowingCount: rng.Intn(800) + 50,
			PostCount:      rng.Intn(600) + 30,
			IsBusiness:     rng.Float64() > 0.7,
			Category:       title(query),
			EngagementRate: rate(rng, 3, 7),
			ScrapingQuery:  query,
		})
	}
	return out
}

func twitterKeyword(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("twitter_user_%s_%d", query, i),
			Username:       fmt.Sprintf("tw_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Tweeter %d", i),
			ProfileURL:     fmt.Sprintf("https://twitter.com/tw_%s_%d", query, i),
			Bio:            fmt.Sprintf("Tweeting about %s | Opinions my own", query),
			FollowerCount:  rng.Intn(20000) + 50,
			FollowingCount: rng.Intn(5000) + 100,
			PostCount:      rng.Intn(10000) + 200,
			IsVerified:     rng.Float64() > 0.85,
			EngagementRate: rate(rng, 0.5, 3),
			ScrapingQuery:  query,
		})
	}
	return out
}

func twitterTrending(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("twitter_trending_%s_%d", query, i),
			Username:       fmt.Sprintf("trend_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Trend Voice %d", i),
			ProfileURL:     fmt.Sprintf("https://twitter.com/trend_%s_%d", query, i),
			Bio:            fmt.Sprintf("Driving the #%s conversation", query),
			FollowerCount:  rng.Intn(200000) + 5000,
			FollowingCount: rng.Intn(2000) + 50,
			PostCount:      rng.Intn(50000) + 1000,
			IsVerified:     rng.Float64() > 0.6,
			EngagementRate: rate(rng, 1, 6),
			ScrapingQuery:  query,
		})
	}
	return out
}

func twitterFollowers(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("twitter_follower_%s_%d", query, i),
			Username:       fmt.Sprintf("fan_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Follower %d", i),
			ProfileURL:     fmt.Sprintf("https://twitter.com/fan_%s_%d", query, i),
			Bio:            fmt.Sprintf("Following @%s", query),
			FollowerCount:  rng.Intn(3000),
			FollowingCount: rng.Intn(4000) + 200,
			PostCount:      rng.Intn(8000),
			EngagementRate: rate(rng, 0.2, 2),
			ScrapingQuery:  query,
		})
	}
	return out
}

func facebookPages(rng *rand.Rand, query string, limit int) []Candidate {
	categories := []string{"Local Business", "Brand", "Community", "Media"}
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("facebook_page_%s_%d", query, i),
			Username:       fmt.Sprintf("page_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("%s Page %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://facebook.com/page_%s_%d", query, i),
			Bio:            fmt.Sprintf("Official page for %s | Business inquiries via email", query),
			Email:          fmt.Sprintf("contact%d@%s-page.example.com", i, query),
			FollowerCount:  rng.Intn(30000) + 200,
			PostCount:      rng.Intn(1000) + 50,
			IsBusiness:     true,
			Category:       pick(rng, categories),
			EngagementRate: rate(rng, 0.5, 3),
			ScrapingQuery:  query,
		})
	}
	return out
}

func facebookGroups(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("facebook_member_%s_%d", query, i),
			Username:       fmt.Sprintf("member_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Group Member %d", i),
			ProfileURL:     fmt.Sprintf("https://facebook.com/member_%s_%d", query, i),
			Bio:            fmt.Sprintf("Active in %s groups", query),
			FollowerCount:  rng.Intn(2000),
			FollowingCount: rng.Intn(1500) + 100,
			PostCount:      rng.Intn(400),
			EngagementRate: rate(rng, 0.2, 2),
			ScrapingQuery:  query,
		})
	}
	return out
}

func facebookBusiness(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("facebook_biz_%s_%d", query, i),
			Username:       fmt.Sprintf("biz_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("%s Business %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://facebook.com/biz_%s_%d", query, i),
			Bio:            fmt.Sprintf("%s services | Marketing and consulting", query),
			Website:        fmt.Sprintf("https://%s-biz-%d.example.com", query, i),
			Phone:          fmt.Sprintf("+1-555-%04d", rng.Intn(10000)),
			FollowerCount:  rng.Intn(15000) + 500,
			PostCount:      rng.Intn(600) + 20,
			IsBusiness:     true,
			IsVerified:     rng.Float64() > 0.7,
			Category:       "Business",
			EngagementRate: rate(rng, 1, 4),
			ScrapingQuery:  query,
		})
	}
	return out
}

func linkedinProfessionals(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("linkedin_pro_%s_%d", query, i),
			Username:       fmt.Sprintf("pro-%s-%d", query, i),
			DisplayName:    fmt.Sprintf("Professional %d", i),
			ProfileURL:     fmt.Sprintf("https://linkedin.com/in/pro-%s-%d", query, i),
			Bio:            fmt.Sprintf("%s professional | Consulting and sales | Open to opportunities", query),
			FollowerCount:  rng.Intn(8000) + 100,
			FollowingCount: rng.Intn(3000) + 200,
			PostCount:      rng.Intn(300),
			IsVerified:     rng.Float64() > 0.9,
			Category:       title(query),
			EngagementRate: rate(rng, 0.5, 3),
			ScrapingQuery:  query,
		})
	}
	return out
}

func linkedinCompanies(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("linkedin_company_%s_%d", query, i),
			Username:       fmt.Sprintf("company-%s-%d", query, i),
			DisplayName:    fmt.Sprintf("%s Corp %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://linkedin.com/company/%s-%d", query, i),
			Bio:            fmt.Sprintf("Leading %s company | Hiring | Enterprise solutions", query),
			Website:        fmt.Sprintf("https://%s-corp-%d.example.com", query, i),
			FollowerCount:  rng.Intn(100000) + 1000,
			PostCount:      rng.Intn(500) + 50,
			IsBusiness:     true,
			Category:       "Business",
			EngagementRate: rate(rng, 0.5, 2),
			ScrapingQuery:  query,
		})
	}
	return out
}

func linkedinJobTitle(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("linkedin_title_%s_%d", query, i),
			Username:       fmt.Sprintf("%s-%d", strings.ReplaceAll(strings.ToLower(query), " ", "-"), i),
			DisplayName:    fmt.Sprintf("%s %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://linkedin.com/in/%s-%d", strings.ReplaceAll(strings.ToLower(query), " ", "-"), i),
			Bio:            fmt.Sprintf("%s | Building teams and products", query),
			FollowerCount:  rng.Intn(12000) + 300,
			FollowingCount: rng.Intn(2000) + 100,
			PostCount:      rng.Intn(200),
			EngagementRate: rate(rng, 0.5, 4),
			ScrapingQuery:  query,
		})
	}
	return out
}

func youtubeChannels(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("youtube_channel_%s_%d", query, i),
			Username:       fmt.Sprintf("%s_channel_%d", query, i),
			DisplayName:    fmt.Sprintf("%s Channel %d", title(query), i),
			ProfileURL:     fmt.Sprintf("https://youtube.com/@%s_channel_%d", query, i),
			Bio:            fmt.Sprintf("%s videos every week | Subscribe for more", query),
			FollowerCount:  rng.Intn(200000) + 500,
			PostCount:      rng.Intn(1000) + 10,
			IsVerified:     rng.Float64() > 0.8,
			Category:       title(query),
			EngagementRate: rate(rng, 1, 6),
			ScrapingQuery:  query,
		})
	}
	return out
}

func youtubeTrending(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("youtube_trending_%s_%d", query, i),
			Username:       fmt.Sprintf("trending_creator_%d", i),
			DisplayName:    fmt.Sprintf("Trending Creator %d", i),
			ProfileURL:     fmt.Sprintf("https://youtube.com/@trending_creator_%d", i),
			Bio:            "Trending now | New uploads daily | Business: see channel about",
			FollowerCount:  rng.Intn(2000000) + 100000,
			PostCount:      rng.Intn(3000) + 200,
			IsVerified:     true,
			EngagementRate: rate(rng, 3, 9),
			ScrapingQuery:  query,
		})
	}
	return out
}

func youtubeSubscribers(rng *rand.Rand, query string, limit int) []Candidate {
	out := make([]Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, Candidate{
			PlatformUserID: fmt.Sprintf("youtube_sub_%s_%d", query, i),
			Username:       fmt.Sprintf("sub_%s_%d", query, i),
			DisplayName:    fmt.Sprintf("Subscriber %d", i),
			ProfileURL:     fmt.Sprintf("https://youtube.com/@sub_%s_%d", query, i),
			Bio:            fmt.Sprintf("Subscribed to %s", query),
			FollowerCount:  rng.Intn(1000),
			FollowingCount: rng.Intn(500) + 10,
			PostCount:      rng.Intn(50),
			EngagementRate: rate(rng, 0.1, 2),
			ScrapingQuery:  query,
		})
	}
	return out
}

// singleProfile builds the per-platform "profile" generator: one candidate
// for the queried username.
func singleProfile(platform, urlPrefix string) generateFunc {
	return func(rng *rand.Rand, query string, limit int) []Candidate {
		return []Candidate{{
			PlatformUserID: fmt.Sprintf("%s_profile_%s", platform, query),
			Username:       query,
			DisplayName:    title(strings.ReplaceAll(query, "_", " ")),
			ProfileURL:     urlPrefix + query,
			Bio:            fmt.Sprintf("Profile of %s on %s", query, platform),
			FollowerCount:  rng.Intn(100000) + 100,
			FollowingCount: rng.Intn(2000) + 10,
			PostCount:      rng.Intn(1000) + 5,
			IsVerified:     rng.Float64() > 0.7,
			IsBusiness:     rng.Float64() > 0.6,
			EngagementRate: rate(rng, 1, 6),
			ScrapingQuery:  query,
		}}
	}
}
