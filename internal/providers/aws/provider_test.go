package aws

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func pinNow(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := nowFn
	nowFn = func() time.Time { return fixed }
	t.Cleanup(func() { nowFn = prev })
}

func newTestProvider(ce CostExplorerAPI, cw CloudWatchAPI, ec2Client EC2API) *Provider {
	return NewFromClients(logrus.New(), "eu-west-1", ce, cw, ec2Client)
}

func TestProviderIdentity(t *testing.T) {
	r := require.New(t)

	p := newTestProvider(nil, nil, nil)
	r.Equal("aws", p.GetName())
	r.Equal("eu-west-1", p.GetRegion())
}
