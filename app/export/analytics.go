package export

import (
	"sort"

	"github.com/leadcomb/lead-comb/app/database"
)

// Analytics summarizes an exported contact set.
type Analytics struct {
	Total                int               `json:"total"`
	PlatformDistribution map[string]int    `json:"platformDistribution"`
	VerifiedCount        int               `json:"verifiedCount"`
	BusinessCount        int               `json:"businessCount"`
	Engagement           EngagementSummary `json:"engagement"`
	AvgInfluenceScore    float64           `json:"avgInfluenceScore"`
	AvgEngagementScore   float64           `json:"avgEngagementScore"`
}

// EngagementSummary aggregates engagement rates over contacts that have one.
type EngagementSummary struct {
	Avg    float64 `json:"avg"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes the analytics block for a contact set.
func Summarize(contacts []database.Contact) Analytics {
	a := Analytics{
		Total:                len(contacts),
		PlatformDistribution: make(map[string]int),
	}

	var rates []float64
	var influenceSum, engagementSum float64
	for i := range contacts {
		c := &contacts[i]
		a.PlatformDistribution[c.Platform]++
		if c.IsVerified {
			a.VerifiedCount++
		}
		if c.IsBusiness {
			a.BusinessCount++
		}
		if c.EngagementRate != nil {
			rates = append(rates, *c.EngagementRate)
		}
		influenceSum += InfluenceScore(c)
		engagementSum += EngagementScore(c)
	}

	if len(contacts) > 0 {
		a.AvgInfluenceScore = round2(influenceSum / float64(len(contacts)))
		a.AvgEngagementScore = round2(engagementSum / float64(len(contacts)))
	}
	if len(rates) > 0 {
		sort.Float64s(rates)
		var sum float64
		for _, r := range rates {
			sum += r
		}
		a.Engagement = EngagementSummary{
			Avg:    round2(sum / float64(len(rates))),
			Median: round2(median(rates)),
			Min:    rates[0],
			Max:    rates[len(rates)-1],
		}
	}
	return a
}

// InfluenceScore rates a contact 0-100 from reach, account standing, and
// activity.
func InfluenceScore(c *database.Contact) float64 {
	score := capped(float64(c.FollowerCount)/2500, 40)
	if c.IsVerified {
		score += 10
	}
	if c.IsBusiness {
		score += 5
	}
	if c.EngagementRate != nil {
		score += capped(*c.EngagementRate*3, 30)
	}
	score += capped(float64(c.PostCount)/100, 15)
	return capped(score, 100)
}

// EngagementScore rates a contact 0-100 from its engagement rate with a small
// reach bonus.
func EngagementScore(c *database.Contact) float64 {
	var base float64
	if c.EngagementRate != nil {
		base = *c.EngagementRate * 10
	}
	base += capped(float64(c.FollowerCount)/10000, 10)
	return capped(base, 100)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func capped(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
