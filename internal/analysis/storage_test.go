package analysis

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestStorageClassifier(t *testing.T) {
	log := logrus.New()
	asOf := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("unattached volume with known age", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())
		created := asOf.AddDate(0, 0, -45)

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", Region: "eu-west-1", SizeGiB: 100, VolumeType: "gp3", State: VolumeAvailable, CreatedAt: &created},
		}, asOf)
		r.Len(findings.Unattached, 1)
		r.Empty(findings.GP2Migration)

		finding := findings.Unattached[0]
		r.Equal("vol-0abc", finding.VolumeID)
		r.Equal(int32(100), finding.SizeGiB)
		r.NotNil(finding.AgeDays)
		r.Equal(45, *finding.AgeDays)
		r.Equal("unattached volume, 45 days", finding.Reason)
	})

	t.Run("unattached volume without creation time", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", SizeGiB: 8, VolumeType: "gp3", State: VolumeAvailable},
		}, asOf)
		r.Len(findings.Unattached, 1)
		r.Nil(findings.Unattached[0].AgeDays)
		r.Equal("unattached volume", findings.Unattached[0].Reason)
	})

	t.Run("attached gp2 flagged for migration", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", Region: "eu-west-1", SizeGiB: 200, VolumeType: "gp2", State: VolumeAttached},
		}, asOf)
		r.Empty(findings.Unattached)
		r.Len(findings.GP2Migration, 1)

		finding := findings.GP2Migration[0]
		r.Equal("vol-0abc", finding.VolumeID)
		r.NotNil(finding.CurrentType)
		r.Equal("gp2", *finding.CurrentType)
		r.Contains(finding.Reason, "gp3")
	})

	t.Run("unattached gp2 reported once as unattached", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", SizeGiB: 50, VolumeType: "gp2", State: VolumeAvailable},
		}, asOf)
		r.Len(findings.Unattached, 1)
		r.Empty(findings.GP2Migration)
	})

	t.Run("attached gp3 is not flagged", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", SizeGiB: 50, VolumeType: "gp3", State: VolumeAttached},
			{VolumeID: "vol-0def", SizeGiB: 50, VolumeType: "io1", State: VolumeAttached},
		}, asOf)
		r.Empty(findings.Unattached)
		r.Empty(findings.GP2Migration)
	})

	t.Run("age clamps to zero for future creation time", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())
		created := asOf.Add(2 * time.Hour)

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "vol-0abc", SizeGiB: 8, VolumeType: "gp3", State: VolumeAvailable, CreatedAt: &created},
		}, asOf)
		r.Len(findings.Unattached, 1)
		r.NotNil(findings.Unattached[0].AgeDays)
		r.Equal(0, *findings.Unattached[0].AgeDays)
	})

	t.Run("skips malformed volume records", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify([]VolumeDescriptor{
			{VolumeID: "", SizeGiB: 100, VolumeType: "gp2", State: VolumeAttached},
			{VolumeID: "vol-negative", SizeGiB: -1, VolumeType: "gp2", State: VolumeAttached},
			{VolumeID: "vol-ok", SizeGiB: 10, VolumeType: "gp2", State: VolumeAttached},
		}, asOf)
		r.Empty(findings.Unattached)
		r.Len(findings.GP2Migration, 1)
		r.Equal("vol-ok", findings.GP2Migration[0].VolumeID)
	})

	t.Run("empty input yields empty groups", func(t *testing.T) {
		r := require.New(t)
		classifier := NewStorageClassifier(log, DefaultConfig())

		findings := classifier.Classify(nil, asOf)
		r.NotNil(findings.Unattached)
		r.NotNil(findings.GP2Migration)
		r.Empty(findings.Unattached)
		r.Empty(findings.GP2Migration)
	})
}
