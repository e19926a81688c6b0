package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/require"

	"github.com/costscope/costscope/internal/analysis"
)

type fakeEC2 struct {
	instancePages  []*ec2.DescribeInstancesOutput
	instanceInputs []*ec2.DescribeInstancesInput
	instanceErr    error
	instanceCalls  int

	volumePages  []*ec2.DescribeVolumesOutput
	volumeInputs []*ec2.DescribeVolumesInput
	volumeErr    error
	volumeCalls  int
}

func (f *fakeEC2) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.instanceInputs = append(f.instanceInputs, params)
	if f.instanceErr != nil {
		return nil, f.instanceErr
	}
	page := f.instancePages[f.instanceCalls]
	f.instanceCalls++
	return page, nil
}

func (f *fakeEC2) DescribeVolumes(_ context.Context, params *ec2.DescribeVolumesInput, _ ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error) {
	f.volumeInputs = append(f.volumeInputs, params)
	if f.volumeErr != nil {
		return nil, f.volumeErr
	}
	page := f.volumePages[f.volumeCalls]
	f.volumeCalls++
	return page, nil
}

func instancePage(ids ...string) *ec2.DescribeInstancesOutput {
	instances := make([]types.Instance, 0, len(ids))
	for _, id := range ids {
		instances = append(instances, types.Instance{InstanceId: stringPtr(id)})
	}
	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{Instances: instances}},
	}
}

func TestGetTaggedResources(t *testing.T) {
	ctx := context.Background()

	t.Run("lists instances and volumes with tags", func(t *testing.T) {
		r := require.New(t)

		client := &fakeEC2{
			instancePages: []*ec2.DescribeInstancesOutput{{
				Reservations: []types.Reservation{{
					Instances: []types.Instance{
						{
							InstanceId: stringPtr("i-tagged"),
							Tags: []types.Tag{
								{Key: stringPtr("Project"), Value: stringPtr("billing")},
								{Key: stringPtr("Owner"), Value: stringPtr("fin-ops")},
							},
						},
						{InstanceId: stringPtr("i-bare")},
					},
				}},
			}},
			volumePages: []*ec2.DescribeVolumesOutput{{
				Volumes: []types.Volume{
					{
						VolumeId: stringPtr("vol-0abc"),
						Tags:     []types.Tag{{Key: stringPtr("Project"), Value: stringPtr("billing")}},
					},
				},
			}},
		}
		p := newTestProvider(nil, nil, client)

		resources, err := p.GetTaggedResources(ctx)
		r.NoError(err)
		r.Len(resources, 3)

		r.Equal("i-tagged", resources[0].ResourceID)
		r.Equal(analysis.ResourceTypeInstance, resources[0].ResourceType)
		r.Equal("eu-west-1", resources[0].Region)
		r.Equal(analysis.TagSet{"Project": "billing", "Owner": "fin-ops"}, resources[0].Tags)

		r.Equal("i-bare", resources[1].ResourceID)
		r.Nil(resources[1].Tags)

		r.Equal("vol-0abc", resources[2].ResourceID)
		r.Equal(analysis.ResourceTypeVolume, resources[2].ResourceType)

		r.Len(client.instanceInputs, 1)
		filter := client.instanceInputs[0].Filters[0]
		r.Equal("instance-state-name", *filter.Name)
		r.Equal(taggableInstanceStates, filter.Values)
	})

	t.Run("volume failure returns instances with the error", func(t *testing.T) {
		r := require.New(t)

		client := &fakeEC2{
			instancePages: []*ec2.DescribeInstancesOutput{instancePage("i-1", "i-2")},
			volumeErr:     errors.New("access denied"),
		}
		p := newTestProvider(nil, nil, client)

		resources, err := p.GetTaggedResources(ctx)
		r.ErrorContains(err, "access denied")
		r.Len(resources, 2)
	})

	t.Run("instance failure returns nothing", func(t *testing.T) {
		r := require.New(t)

		client := &fakeEC2{instanceErr: errors.New("boom")}
		p := newTestProvider(nil, nil, client)

		resources, err := p.GetTaggedResources(ctx)
		r.Error(err)
		r.Nil(resources)
	})

	t.Run("follows instance pagination", func(t *testing.T) {
		r := require.New(t)

		first := instancePage("i-1")
		first.NextToken = stringPtr("next")
		client := &fakeEC2{
			instancePages: []*ec2.DescribeInstancesOutput{first, instancePage("i-2")},
			volumePages:   []*ec2.DescribeVolumesOutput{{}},
		}
		p := newTestProvider(nil, nil, client)

		resources, err := p.GetTaggedResources(ctx)
		r.NoError(err)
		r.Len(resources, 2)
		r.Len(client.instanceInputs, 2)
	})
}

func TestGetVolumes(t *testing.T) {
	ctx := context.Background()

	t.Run("maps volume fields", func(t *testing.T) {
		r := require.New(t)
		created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		client := &fakeEC2{volumePages: []*ec2.DescribeVolumesOutput{{
			Volumes: []types.Volume{
				{
					VolumeId:   stringPtr("vol-in-use"),
					Size:       int32Ptr(100),
					VolumeType: types.VolumeTypeGp2,
					State:      types.VolumeStateInUse,
					CreateTime: &created,
					Tags:       []types.Tag{{Key: stringPtr("Owner"), Value: stringPtr("fin-ops")}},
				},
				{
					VolumeId:   stringPtr("vol-free"),
					Size:       int32Ptr(8),
					VolumeType: types.VolumeTypeGp3,
					State:      types.VolumeStateAvailable,
				},
			},
		}}}
		p := newTestProvider(nil, nil, client)

		volumes, err := p.GetVolumes(ctx)
		r.NoError(err)
		r.Len(volumes, 2)

		r.Equal("vol-in-use", volumes[0].VolumeID)
		r.Equal("eu-west-1", volumes[0].Region)
		r.Equal(int32(100), volumes[0].SizeGiB)
		r.Equal("gp2", volumes[0].VolumeType)
		r.NotEqual(analysis.VolumeAvailable, volumes[0].State)
		r.Equal(&created, volumes[0].CreatedAt)
		r.Equal(analysis.TagSet{"Owner": "fin-ops"}, volumes[0].Tags)

		r.Equal(analysis.VolumeAvailable, volumes[1].State)
		r.Nil(volumes[1].CreatedAt)
	})

	t.Run("skips volumes without an id", func(t *testing.T) {
		r := require.New(t)

		client := &fakeEC2{volumePages: []*ec2.DescribeVolumesOutput{{
			Volumes: []types.Volume{
				{Size: int32Ptr(10)},
				{VolumeId: stringPtr("vol-ok"), Size: int32Ptr(10)},
			},
		}}}
		p := newTestProvider(nil, nil, client)

		volumes, err := p.GetVolumes(ctx)
		r.NoError(err)
		r.Len(volumes, 1)
		r.Equal("vol-ok", volumes[0].VolumeID)
	})

	t.Run("propagates listing errors", func(t *testing.T) {
		r := require.New(t)

		client := &fakeEC2{volumeErr: errors.New("throttled")}
		p := newTestProvider(nil, nil, client)

		_, err := p.GetVolumes(ctx)
		r.ErrorContains(err, "throttled")
	})
}
