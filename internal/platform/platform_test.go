package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visual-god-backend/internal/platform"
)

func TestResolve_FallsBackToInstagram(t *testing.T) {
	assert.Equal(t, "instagram", platform.Resolve("").Key)
	assert.Equal(t, "instagram", platform.Resolve("tiktok").Key)
	assert.Equal(t, "youtube", platform.Resolve(" YouTube ").Key)
}

func TestFormats_Sizes(t *testing.T) {
	sizes := map[string]string{}
	for _, f := range platform.Formats() {
		sizes[f.Key] = f.Size
	}
	assert.Equal(t, map[string]string{
		"instagram": "1080x1920",
		"facebook":  "1080x1080",
		"youtube":   "2560x1440",
	}, sizes)
}

func TestRequiredCredits(t *testing.T) {
	ig := platform.Resolve("instagram")
	yt := platform.Resolve("youtube")

	assert.Equal(t, 6, platform.RequiredCredits(2, ig, true))
	assert.Equal(t, 12, platform.RequiredCredits(2, yt, true))
	assert.Equal(t, 0, platform.RequiredCredits(2, yt, false))
	assert.Equal(t, 0, platform.RequiredCredits(0, ig, true))
}

func TestChargeFor(t *testing.T) {
	assert.Equal(t, 3, platform.ChargeFor(3, platform.Resolve("facebook")))
	assert.Equal(t, 10, platform.ChargeFor(5, platform.Resolve("youtube")))
	assert.Equal(t, 0, platform.ChargeFor(0, platform.Resolve("youtube")))
}

func TestPlanFor(t *testing.T) {
	assert.Equal(t, 10, platform.PlanFor("free").MonthlyCredits)
	assert.Equal(t, 2000, platform.PlanFor("enterprise").MonthlyCredits)
	assert.Equal(t, platform.PlanFree, platform.PlanFor("platinum").Name)
}

func TestPlanAllows(t *testing.T) {
	free := platform.PlanFor(platform.PlanFree)
	starter := platform.PlanFor(platform.PlanStarter)

	assert.True(t, free.Allows(platform.Resolve("instagram")))
	assert.False(t, free.Allows(platform.Resolve("youtube")))
	assert.True(t, starter.Allows(platform.Resolve("youtube")))
}

func TestPlans_TierOrder(t *testing.T) {
	plans := platform.Plans()
	require.Len(t, plans, 4)
	assert.Equal(t, platform.PlanFree, plans[0].Name)
	assert.Equal(t, platform.PlanEnterprise, plans[3].Name)
	assert.Equal(t, 0, plans[3].RateMultiplier)
}
