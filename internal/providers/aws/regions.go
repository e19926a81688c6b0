package aws

import "github.com/samber/lo"

// Regions the API advertises for analysis runs. Kept to the regions the
// analyses are routinely run against rather than the full catalog.
var supportedRegions = []string{
	"us-east-1",
	"us-east-2",
	"us-west-1",
	"us-west-2",
	"eu-central-1",
	"eu-west-1",
	"eu-west-2",
	"ap-northeast-1",
	"ap-northeast-2",
	"ap-southeast-1",
	"ap-southeast-2",
	"ca-central-1",
	"sa-east-1",
}

// SupportedRegions returns the switchable region list.
func SupportedRegions() []string {
	out := make([]string, len(supportedRegions))
	copy(out, supportedRegions)
	return out
}

// IsSupportedRegion reports whether region is in the switchable list.
func IsSupportedRegion(region string) bool {
	return lo.Contains(supportedRegions, region)
}
