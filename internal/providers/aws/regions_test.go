package aws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSupportedRegions(t *testing.T) {
	r := require.New(t)

	regions := SupportedRegions()
	r.Len(regions, 13)
	r.Contains(regions, "eu-west-1")

	r.True(IsSupportedRegion("us-east-1"))
	r.False(IsSupportedRegion("xx-fake-1"))
	r.False(IsSupportedRegion(""))

	// Mutating the returned slice must not leak into the package list.
	regions[0] = "mutated"
	r.True(IsSupportedRegion("us-east-1"))
}
