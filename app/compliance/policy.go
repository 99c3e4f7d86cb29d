package compliance

import (
	_ "embed"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yml
var policyYAML []byte

type platformPolicy struct {
	MaxRequestsPerHour int      `yaml:"max_requests_per_hour"`
	MaxRequestsPerDay  int      `yaml:"max_requests_per_day"`
	RequireConsent     bool     `yaml:"require_consent"`
	AllowedTypes       []string `yaml:"allowed_types"`
}

type policy struct {
	Default   platformPolicy            `yaml:"default"`
	Platforms map[string]platformPolicy `yaml:"platforms"`
}

var platformPolicies policy

func init() {
	if err := yaml.Unmarshal(policyYAML, &platformPolicies); err != nil {
		panic("compliance: invalid embedded platform policy: " + err.Error())
	}
}

// policyFor returns the per-platform policy, falling back to the defaults
// for unknown platforms.
func policyFor(platform string) platformPolicy {
	if p, ok := platformPolicies.Platforms[platform]; ok {
		return p
	}
	return platformPolicies.Default
}

// KnownPlatform reports whether the platform has an explicit policy entry.
func KnownPlatform(platform string) bool {
	_, ok := platformPolicies.Platforms[platform]
	return ok
}

// IsTypeAllowed reports whether a scraping type is permitted on a platform.
// Unknown platforms allow nothing.
func IsTypeAllowed(platform, scrapingType string) bool {
	p, ok := platformPolicies.Platforms[platform]
	if !ok {
		return false
	}
	return slices.Contains(p.AllowedTypes, scrapingType)
}

// AllowedTypes returns the scraping types permitted on a platform.
func AllowedTypes(platform string) []string {
	return slices.Clone(policyFor(platform).AllowedTypes)
}
