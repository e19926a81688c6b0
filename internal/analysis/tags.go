package analysis

import (
	"github.com/sirupsen/logrus"

	"github.com/costscope/costscope/internal/metrics"
)

// TagChecker finds resources missing tags from the required-tag list.
type TagChecker struct {
	cfg Config
	log logrus.FieldLogger
}

// NewTagChecker creates a tag compliance checker.
func NewTagChecker(log logrus.FieldLogger, cfg Config) *TagChecker {
	return &TagChecker{
		cfg: cfg,
		log: log.WithField("component", "tag_checker"),
	}
}

// MissingTags returns the required keys absent from the tag set, in the
// same order as the required-tag list. Keys are case-sensitive. A nil tag
// set is missing everything.
func (c *TagChecker) MissingTags(tags TagSet) []string {
	missing := []string{}
	for _, key := range c.cfg.RequiredTags {
		if _, ok := tags[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// CheckResources returns a finding per resource missing at least one
// required tag. Fully tagged resources are excluded entirely, and an empty
// required-tag list produces no findings. Records without a resource id are
// skipped with a note.
func (c *TagChecker) CheckResources(resources []TaggedResource) []TagFinding {
	findings := []TagFinding{}
	if len(c.cfg.RequiredTags) == 0 {
		c.log.Warn("no required tags configured, skipping tag compliance check")
		return findings
	}
	for _, resource := range resources {
		if resource.ResourceID == "" {
			c.log.Warnf("skipping %s record: missing resource id", resource.ResourceType)
			metrics.IncSkippedRecords("tagged_resource")
			continue
		}
		missing := c.MissingTags(resource.Tags)
		if len(missing) == 0 {
			continue
		}
		findings = append(findings, TagFinding{
			ResourceID:   resource.ResourceID,
			ResourceType: resource.ResourceType,
			Region:       resource.Region,
			MissingTags:  missing,
		})
	}
	return findings
}
