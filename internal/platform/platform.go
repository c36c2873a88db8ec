// Package platform holds the output format presets and the plan tiers that
// gate them.
package platform

import "strings"

// StylesPerProduct is how many marketing styles the AI backend renders for
// each valid product.
const StylesPerProduct = 3

// DefaultFormat is used when a request names no format or an unknown one.
const DefaultFormat = "instagram"

type Format struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Size        string `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Aspect      string `json:"aspect"`
	Description string `json:"description"`
	Credits     int    `json:"credits"`
}

var formats = []Format{
	{
		Key:         "instagram",
		Label:       "Instagram Reels",
		Size:        "1080x1920",
		Width:       1080,
		Height:      1920,
		Aspect:      "Vertical",
		Description: "Vertical format (9:16) for Instagram Reels",
		Credits:     1,
	},
	{
		Key:         "facebook",
		Label:       "Facebook Photo Ad",
		Size:        "1080x1080",
		Width:       1080,
		Height:      1080,
		Aspect:      "Square",
		Description: "Square format (1:1) for Facebook feed",
		Credits:     1,
	},
	{
		Key:         "youtube",
		Label:       "YouTube Banner",
		Size:        "2560x1440",
		Width:       2560,
		Height:      1440,
		Aspect:      "Landscape",
		Description: "Widescreen format (16:9) for all devices",
		Credits:     2,
	},
}

// Formats returns every supported format in display order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// Get returns the format registered under key.
func Get(key string) (Format, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range formats {
		if f.Key == key {
			return f, true
		}
	}
	return Format{}, false
}

// Resolve returns the format for key, falling back to DefaultFormat.
func Resolve(key string) Format {
	if f, ok := Get(key); ok {
		return f
	}
	f, _ := Get(DefaultFormat)
	return f
}

// RequiredCredits is the most a process request can cost: every uploaded
// image turning out to be a valid product rendered in every style.
func RequiredCredits(imageCount int, f Format, generate bool) int {
	if !generate || imageCount <= 0 {
		return 0
	}
	return imageCount * StylesPerProduct * f.Credits
}

// ChargeFor is what a finished request costs for the images actually produced.
func ChargeFor(generated int, f Format) int {
	if generated <= 0 {
		return 0
	}
	return generated * f.Credits
}

// Plan tiers, matching the user_plan enum.
const (
	PlanFree       = "free"
	PlanStarter    = "starter"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type Plan struct {
	Name           string `json:"name"`
	MonthlyCredits int    `json:"monthly_credits"`
	// RateMultiplier scales the base request rate; 0 means unlimited.
	RateMultiplier int  `json:"rate_multiplier"`
	AllFormats     bool `json:"all_formats"`
}

var plans = map[string]Plan{
	PlanFree:       {Name: PlanFree, MonthlyCredits: 10, RateMultiplier: 1, AllFormats: false},
	PlanStarter:    {Name: PlanStarter, MonthlyCredits: 100, RateMultiplier: 2, AllFormats: true},
	PlanPro:        {Name: PlanPro, MonthlyCredits: 500, RateMultiplier: 5, AllFormats: true},
	PlanEnterprise: {Name: PlanEnterprise, MonthlyCredits: 2000, RateMultiplier: 0, AllFormats: true},
}

// Plans returns every tier from free to enterprise.
func Plans() []Plan {
	return []Plan{plans[PlanFree], plans[PlanStarter], plans[PlanPro], plans[PlanEnterprise]}
}

// PlanFor returns the plan by name. Unknown names are treated as free.
func PlanFor(name string) Plan {
	if p, ok := plans[strings.ToLower(name)]; ok {
		return p
	}
	return plans[PlanFree]
}

// Allows reports whether the plan may render the format. The free tier is
// limited to the default vertical format.
func (p Plan) Allows(f Format) bool {
	return p.AllFormats || f.Key == DefaultFormat
}
