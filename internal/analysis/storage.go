package analysis

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/costscope/costscope/internal/metrics"
)

// gp2MigrationReason is the display text for gp3 migration candidates.
const gp2MigrationReason = "gp2 volume, migrating to gp3 offers the same performance at up to 20% lower cost"

// StorageClassifier flags EBS volumes that are unattached or still on the
// legacy gp2 type.
type StorageClassifier struct {
	cfg Config
	log logrus.FieldLogger
}

// NewStorageClassifier creates a storage optimization classifier.
func NewStorageClassifier(log logrus.FieldLogger, cfg Config) *StorageClassifier {
	return &StorageClassifier{
		cfg: cfg,
		log: log.WithField("component", "storage_classifier"),
	}
}

// Classify runs both storage rules over the volume inventory. An unattached
// volume is never also reported as a gp2 candidate: the unattached rule
// takes precedence so a single volume cannot be counted in two optimization
// categories. asOf anchors the age computation so runs are reproducible.
// Volumes without an id or with a non-positive size are skipped with a note.
func (c *StorageClassifier) Classify(volumes []VolumeDescriptor, asOf time.Time) StorageFindings {
	findings := StorageFindings{
		Unattached:   []StorageFinding{},
		GP2Migration: []StorageFinding{},
	}
	for _, volume := range volumes {
		if volume.VolumeID == "" || volume.SizeGiB <= 0 {
			c.log.Warnf("skipping volume record %q: missing id or size", volume.VolumeID)
			metrics.IncSkippedRecords("volume")
			continue
		}
		if volume.State == VolumeAvailable {
			findings.Unattached = append(findings.Unattached, c.unattachedFinding(volume, asOf))
			continue
		}
		if volume.VolumeType == "gp2" {
			currentType := volume.VolumeType
			findings.GP2Migration = append(findings.GP2Migration, StorageFinding{
				VolumeID:    volume.VolumeID,
				Region:      volume.Region,
				SizeGiB:     volume.SizeGiB,
				CurrentType: &currentType,
				Reason:      gp2MigrationReason,
			})
		}
	}
	return findings
}

func (c *StorageClassifier) unattachedFinding(volume VolumeDescriptor, asOf time.Time) StorageFinding {
	finding := StorageFinding{
		VolumeID: volume.VolumeID,
		Region:   volume.Region,
		SizeGiB:  volume.SizeGiB,
		Reason:   "unattached volume",
	}
	if volume.CreatedAt != nil {
		age := int(asOf.Sub(*volume.CreatedAt).Hours() / 24)
		if age < 0 {
			age = 0
		}
		finding.AgeDays = &age
		finding.Reason = fmt.Sprintf("unattached volume, %d days", age)
	}
	return finding
}
