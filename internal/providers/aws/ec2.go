package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/costscope/costscope/internal/analysis"
	"github.com/costscope/costscope/internal/metrics"
)

// Lifecycle states that still warrant tags. Terminated instances are
// gone for good and excluded.
var taggableInstanceStates = []string{"pending", "running", "shutting-down", "stopped", "stopping"}

func (p *Provider) runningInstanceIDs(ctx context.Context) ([]string, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: stringPtr("instance-state-name"), Values: []string{"running"}},
		},
	}

	ids := []string{}
	paginator := ec2.NewDescribeInstancesPaginator(p.ec2, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing running instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if instance.InstanceId == nil {
					continue
				}
				ids = append(ids, *instance.InstanceId)
			}
		}
	}

	return ids, nil
}

// GetTaggedResources lists instances and volumes together with their tags.
// When volume listing fails after instances were already gathered, the
// instances collected so far are returned alongside the error.
func (p *Provider) GetTaggedResources(ctx context.Context) ([]analysis.TaggedResource, error) {
	resources := []analysis.TaggedResource{}

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: stringPtr("instance-state-name"), Values: taggableInstanceStates},
		},
	}
	instancePages := ec2.NewDescribeInstancesPaginator(p.ec2, input)
	for instancePages.HasMorePages() {
		page, err := instancePages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing instances for tag check: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if instance.InstanceId == nil {
					metrics.IncSkippedRecords("instance")
					continue
				}
				resources = append(resources, analysis.TaggedResource{
					ResourceID:   *instance.InstanceId,
					ResourceType: analysis.ResourceTypeInstance,
					Region:       p.region,
					Tags:         tagSet(instance.Tags),
				})
			}
		}
	}

	volumePages := ec2.NewDescribeVolumesPaginator(p.ec2, &ec2.DescribeVolumesInput{})
	for volumePages.HasMorePages() {
		page, err := volumePages.NextPage(ctx)
		if err != nil {
			return resources, fmt.Errorf("describing volumes for tag check: %w", err)
		}
		for _, volume := range page.Volumes {
			if volume.VolumeId == nil {
				metrics.IncSkippedRecords("volume")
				continue
			}
			resources = append(resources, analysis.TaggedResource{
				ResourceID:   *volume.VolumeId,
				ResourceType: analysis.ResourceTypeVolume,
				Region:       p.region,
				Tags:         tagSet(volume.Tags),
			})
		}
	}

	return resources, nil
}

// GetVolumes lists every volume in the region regardless of state.
func (p *Provider) GetVolumes(ctx context.Context) ([]analysis.VolumeDescriptor, error) {
	volumes := []analysis.VolumeDescriptor{}

	paginator := ec2.NewDescribeVolumesPaginator(p.ec2, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing volumes: %w", err)
		}
		for _, volume := range page.Volumes {
			if volume.VolumeId == nil {
				metrics.IncSkippedRecords("volume")
				continue
			}
			descriptor := analysis.VolumeDescriptor{
				VolumeID:   *volume.VolumeId,
				Region:     p.region,
				VolumeType: string(volume.VolumeType),
				State:      analysis.AttachmentState(volume.State),
				Tags:       tagSet(volume.Tags),
				CreatedAt:  volume.CreateTime,
			}
			if volume.Size != nil {
				descriptor.SizeGiB = *volume.Size
			}
			volumes = append(volumes, descriptor)
		}
	}

	return volumes, nil
}

func tagSet(tags []types.Tag) analysis.TagSet {
	if len(tags) == 0 {
		return nil
	}
	set := make(analysis.TagSet, len(tags))
	for _, tag := range tags {
		if tag.Key == nil {
			continue
		}
		var value string
		if tag.Value != nil {
			value = *tag.Value
		}
		set[*tag.Key] = value
	}
	return set
}
