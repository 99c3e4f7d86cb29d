package tagging

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/leadcomb/lead-comb/app/database"
)

// TagCandidate is one derived tag before persistence.
type TagCandidate struct {
	Name        string
	Color       string
	Description string
	Confidence  float64
	Source      string
}

// Derivation sources.
const (
	SourceBioAnalysis = "bio-analysis"
	SourceHashtag     = "hashtag"
	SourceCategory    = "category"
	SourceLocation    = "location"
	SourceProfileTags = "profile-tags"
	SourcePlatform    = "platform"
	SourceEngagement  = "engagement"
	SourceFollowers   = "followers"
	SourceAccountType = "account-type"
	SourceManual      = "manual"
)

type industryRule struct {
	name     string
	keywords []string
}

// Rule tables are ordered: earlier rules win the name on duplicates.
var industryRules = []industryRule{
	{"fitness", []string{"fitness", "gym", "workout", "health", "exercise", "training"}},
	{"food", []string{"food", "cooking", "recipe", "restaurant", "chef", "culinary", "dining"}},
	{"travel", []string{"travel", "wanderlust", "adventure", "explore", "journey", "trip", "vacation"}},
	{"technology", []string{"tech", "technology", "coding", "programming", "software", "developer", "startup"}},
	{"fashion", []string{"fashion", "style", "outfit", "clothing", "trend", "designer"}},
	{"music", []string{"music", "song", "artist", "band", "concert", "album", "musician"}},
	{"art", []string{"art", "artist", "creative", "design", "painting", "drawing", "illustration"}},
	{"business", []string{"business", "entrepreneur", "startup", "marketing", "sales", "consulting"}},
	{"lifestyle", []string{"lifestyle", "life", "living", "daily", "routine", "habits"}},
}

var categoryColors = map[string]string{
	"fitness":    "#EF4444",
	"food":       "#F59E0B",
	"travel":     "#10B981",
	"technology": "#3B82F6",
	"fashion":    "#8B5CF6",
	"music":      "#EC4899",
	"art":        "#F97316",
	"business":   "#6B7280",
}

var platformColors = map[string]string{
	"instagram": "#E4405F",
	"tiktok":    "#000000",
	"twitter":   "#1DA1F2",
	"facebook":  "#1877F2",
	"linkedin":  "#0A66C2",
	"youtube":   "#FF0000",
}

var palette = []string{
	"#EF4444", "#F59E0B", "#10B981", "#3B82F6", "#8B5CF6",
	"#EC4899", "#F97316", "#06B6D4", "#84CC16", "#F59E0B",
}

var majorCities = []string{
	"new york", "los angeles", "chicago", "houston", "phoenix",
	"philadelphia", "san antonio", "san diego", "dallas", "san jose",
	"austin", "jacksonville", "fort worth", "columbus", "charlotte",
	"san francisco", "indianapolis", "seattle", "denver", "washington",
	"boston", "el paso", "detroit", "nashville", "portland",
	"oklahoma city", "las vegas", "louisville", "baltimore", "milwaukee",
}

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// grouped formats follower counts with thousands separators in descriptions.
var grouped = message.NewPrinter(language.English)

func bandTag(name, color, source, description string) TagCandidate {
	return TagCandidate{Name: name, Color: color, Description: description, Confidence: 1.0, Source: source}
}

// Extract derives tag candidates from a saved contact plus any tags the
// platform reported on the profile itself. The result is deduplicated by
// name, keeping the first occurrence in rule order.
func Extract(contact *database.Contact, profileTags []string) []TagCandidate {
	var out []TagCandidate
	bio := strings.ToLower(contact.Bio)

	for _, rule := range industryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(bio, kw) {
				out = append(out, TagCandidate{
					Name:        rule.name,
					Color:       colorFor(rule.name),
					Description: "Industry: " + rule.name,
					Confidence:  0.7,
					Source:      SourceBioAnalysis,
				})
				break
			}
		}
	}

	for _, m := range hashtagPattern.FindAllStringSubmatch(contact.Bio, -1) {
		word := strings.ToLower(m[1])
		if len(word) > 2 {
			out = append(out, TagCandidate{
				Name:        word,
				Color:       colorFor(word),
				Description: "Hashtag: #" + word,
				Confidence:  0.8,
				Source:      SourceHashtag,
			})
		}
	}

	if contact.Category != "" {
		name := Slug(contact.Category)
		if name != "" {
			out = append(out, TagCandidate{
				Name:        name,
				Color:       colorFor(name),
				Description: "Category: " + contact.Category,
				Confidence:  0.9,
				Source:      SourceCategory,
			})
		}
	}

	if contact.Location != "" {
		location := strings.ToLower(contact.Location)
		for _, city := range majorCities {
			if strings.Contains(location, city) {
				out = append(out, TagCandidate{
					Name:        "major-city",
					Color:       "#F59E0B",
					Description: "Location: " + contact.Location,
					Confidence:  0.9,
					Source:      SourceLocation,
				})
				break
			}
		}
	}

	for _, t := range profileTags {
		name := Slug(t)
		if name != "" {
			out = append(out, TagCandidate{
				Name:        name,
				Color:       colorFor(name),
				Description: "Extracted from profile tags",
				Confidence:  0.8,
				Source:      SourceProfileTags,
			})
		}
	}

	if contact.Platform != "" {
		color, ok := platformColors[contact.Platform]
		if !ok {
			color = colorFor(contact.Platform)
		}
		out = append(out, TagCandidate{
			Name:        contact.Platform,
			Color:       color,
			Description: "Platform: " + contact.Platform,
			Confidence:  1.0,
			Source:      SourcePlatform,
		})
	}

	if contact.EngagementRate != nil {
		switch rate := *contact.EngagementRate; {
		case rate >= 10:
			out = append(out, bandTag("high-engagement", "#EF4444", SourceEngagement,
				fmt.Sprintf("High engagement: %.1f%%", rate)))
		case rate >= 5:
			out = append(out, bandTag("medium-engagement", "#F97316", SourceEngagement,
				fmt.Sprintf("Medium engagement: %.1f%%", rate)))
		case rate >= 2:
			out = append(out, bandTag("low-engagement", "#6B7280", SourceEngagement,
				fmt.Sprintf("Low engagement: %.1f%%", rate)))
		}
	}

	switch followers := contact.FollowerCount; {
	case followers >= 100000:
		out = append(out, bandTag("mega-influencer", "#8B5CF6", SourceFollowers,
			grouped.Sprintf("Mega influencer: %d followers", followers)))
	case followers >= 10000:
		out = append(out, bandTag("macro-influencer", "#A855F7", SourceFollowers,
			grouped.Sprintf("Macro influencer: %d followers", followers)))
	case followers >= 1000:
		out = append(out, bandTag("micro-influencer", "#C084FC", SourceFollowers,
			grouped.Sprintf("Micro influencer: %d followers", followers)))
	}

	if contact.IsBusiness {
		out = append(out, bandTag("business-account", "#10B981", SourceAccountType, "Business account"))
	}
	if contact.IsVerified {
		out = append(out, bandTag("verified-account", "#3B82F6", SourceAccountType, "Verified account"))
	}

	return dedupe(out)
}

func dedupe(candidates []TagCandidate) []TagCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug normalizes a free-form label into a tag name: accents are stripped,
// spaces become hyphens, and anything outside [a-z0-9-] is dropped.
func Slug(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = strings.ReplaceAll(folded, " ", "-")

	var b strings.Builder
	for _, r := range folded {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}

// colorFor picks a stable palette color for a tag name, overridden by the
// category color table when the name matches.
func colorFor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(name))
	return palette[h.Sum32()%uint32(len(palette))]
}
