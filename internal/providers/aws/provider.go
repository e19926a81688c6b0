// Package aws implements the provider interface on top of Cost Explorer,
// CloudWatch and EC2.
package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// Used to pin query windows in tests.
var nowFn = time.Now

// CostExplorerAPI is the slice of the Cost Explorer client the provider uses.
type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, params *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

// CloudWatchAPI is the slice of the CloudWatch client the provider uses.
type CloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// EC2API is the slice of the EC2 client the provider uses. It also
// satisfies the SDK paginator client interfaces.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
}

// Config selects the account slice the provider reads from.
type Config struct {
	Region  string
	Profile string
}

// Provider implements providers.Provider against a single AWS region.
type Provider struct {
	log          logrus.FieldLogger
	region       string
	costexplorer CostExplorerAPI
	cloudwatch   CloudWatchAPI
	ec2          EC2API
}

// New creates a provider backed by real AWS clients.
func New(ctx context.Context, log logrus.FieldLogger, cfg Config) (*Provider, error) {
	if cfg.Region == "" {
		return nil, errors.New("aws region is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	if !IsSupportedRegion(sdkCfg.Region) {
		log.Warnf("region %s is not in the supported region list", sdkCfg.Region)
	}

	return NewFromClients(
		log,
		sdkCfg.Region,
		costexplorer.NewFromConfig(sdkCfg),
		cloudwatch.NewFromConfig(sdkCfg),
		ec2.NewFromConfig(sdkCfg),
	), nil
}

// NewFromClients wires explicit API clients. Tests use it to inject fakes.
func NewFromClients(log logrus.FieldLogger, region string, ce CostExplorerAPI, cw CloudWatchAPI, ec2Client EC2API) *Provider {
	return &Provider{
		log:          log.WithField("component", "aws_provider"),
		region:       region,
		costexplorer: ce,
		cloudwatch:   cw,
		ec2:          ec2Client,
	}
}

// GetName returns the provider name.
func (p *Provider) GetName() string {
	return "aws"
}

// GetRegion returns the region the provider reads from.
func (p *Provider) GetRegion() string {
	return p.region
}

// Helper functions
func stringPtr(s string) *string {
	return &s
}

func int32Ptr(i int32) *int32 {
	return &i
}
