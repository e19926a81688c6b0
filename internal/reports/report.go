// Package reports turns analysis results into CLI-facing reports and
// renders them as text tables or JSON.
package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/costscope/costscope/internal/analysis"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Report types selectable from the CLI.
const (
	TypeCost    = "cost"
	TypeIdle    = "idle"
	TypeTags    = "tags"
	TypeStorage = "storage"
	TypeAnomaly = "anomaly"
	TypeAll     = "all"
)

// Report is the outcome of one analysis run against a provider. Sections
// that were not requested, or whose fetch failed, are null; a failed
// section leaves its error message in Errors under the section name.
type Report struct {
	Provider    string    `json:"provider"`
	Region      string    `json:"region"`
	GeneratedAt time.Time `json:"generated_at"`

	analysis.Overview
	Errors map[string]string `json:"errors,omitempty"`
}

// Output renders the report to w in the given format.
func (r *Report) Output(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		return r.outputJSON(w)
	case FormatTable:
		return r.outputTable(w)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Report) outputJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

func (r *Report) outputTable(w io.Writer) error {
	fmt.Fprintf(w, "Cost report for %s (%s)\n", r.Provider, r.Region)
	fmt.Fprintf(w, "Generated: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	if r.CostByService != nil {
		r.costSection(w)
	}
	if r.IdleInstances != nil {
		r.idleSection(w)
	}
	if r.UntaggedResources != nil {
		r.tagsSection(w)
	}
	if r.Storage != nil {
		r.storageSection(w)
	}
	if r.Anomaly != nil {
		r.anomalySection(w)
	}
	if len(r.Errors) > 0 {
		r.errorsSection(w)
	}

	return nil
}

func (r *Report) costSection(w io.Writer) {
	fmt.Fprintf(w, "Cost by Service (%d):\n", len(r.CostByService))
	if len(r.CostByService) == 0 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
		return
	}

	// Most expensive first, name as tie-breaker.
	services := lo.Keys(r.CostByService)
	sort.Slice(services, func(i, j int) bool {
		left, right := r.CostByService[services[i]], r.CostByService[services[j]]
		if left != right {
			return left > right
		}
		return services[i] < services[j]
	})

	table := newTable(w, []string{"Service", "Cost (USD)"})
	var total float64
	for _, service := range services {
		cost := r.CostByService[service]
		total += cost
		table.Append([]string{service, fmt.Sprintf("%.2f", cost)})
	}
	table.SetFooter([]string{"TOTAL", fmt.Sprintf("%.2f", total)})
	table.SetFooterAlignment(tablewriter.ALIGN_LEFT)
	table.Render()
	fmt.Fprintln(w)
}

func (r *Report) idleSection(w io.Writer) {
	fmt.Fprintf(w, "Idle Instances (%d):\n", len(r.IdleInstances))
	if len(r.IdleInstances) == 0 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
		return
	}

	table := newTable(w, []string{"Instance ID", "Region", "Avg CPU %", "Max CPU %", "Reason"})
	for _, finding := range r.IdleInstances {
		table.Append([]string{
			finding.InstanceID,
			finding.Region,
			fmt.Sprintf("%.2f", finding.AvgCPU),
			fmt.Sprintf("%.2f", finding.MaxCPU),
			finding.Reason,
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

func (r *Report) tagsSection(w io.Writer) {
	fmt.Fprintf(w, "Untagged Resources (%d):\n", len(r.UntaggedResources))
	if len(r.UntaggedResources) == 0 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
		return
	}

	table := newTable(w, []string{"Resource ID", "Type", "Region", "Missing Tags"})
	for _, finding := range r.UntaggedResources {
		table.Append([]string{
			finding.ResourceID,
			finding.ResourceType,
			finding.Region,
			strings.Join(finding.MissingTags, ", "),
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

func (r *Report) storageSection(w io.Writer) {
	fmt.Fprintf(w, "Unattached Volumes (%d):\n", len(r.Storage.Unattached))
	if len(r.Storage.Unattached) == 0 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
	} else {
		table := newTable(w, []string{"Volume ID", "Region", "Size GiB", "Age Days", "Reason"})
		for _, finding := range r.Storage.Unattached {
			age := "n/a"
			if finding.AgeDays != nil {
				age = fmt.Sprintf("%d", *finding.AgeDays)
			}
			table.Append([]string{
				finding.VolumeID,
				finding.Region,
				fmt.Sprintf("%d", finding.SizeGiB),
				age,
				finding.Reason,
			})
		}
		table.Render()
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "GP2 Volumes (%d):\n", len(r.Storage.GP2Migration))
	if len(r.Storage.GP2Migration) == 0 {
		fmt.Fprintln(w, "  none")
		fmt.Fprintln(w)
		return
	}
	table := newTable(w, []string{"Volume ID", "Region", "Size GiB", "Current Type", "Reason"})
	for _, finding := range r.Storage.GP2Migration {
		current := "n/a"
		if finding.CurrentType != nil {
			current = *finding.CurrentType
		}
		table.Append([]string{
			finding.VolumeID,
			finding.Region,
			fmt.Sprintf("%d", finding.SizeGiB),
			current,
			finding.Reason,
		})
	}
	table.Render()
	fmt.Fprintln(w)
}

func (r *Report) anomalySection(w io.Writer) {
	fmt.Fprintln(w, "Cost Anomaly Check:")

	verdict := "no"
	switch {
	case r.Anomaly.InsufficientData:
		verdict = "insufficient data"
	case r.Anomaly.IsAnomaly:
		verdict = "YES"
	}

	table := newTable(w, []string{"Latest Date", "Latest Cost", "Average", "Std Dev", "Threshold", "History Days", "Anomaly"})
	table.Append([]string{
		r.Anomaly.LatestDate.Format("2006-01-02"),
		fmt.Sprintf("%.2f", r.Anomaly.LatestCost),
		fmt.Sprintf("%.2f", r.Anomaly.AverageCost),
		fmt.Sprintf("%.2f", r.Anomaly.StdDev),
		fmt.Sprintf("%.2f", r.Anomaly.Threshold),
		fmt.Sprintf("%d", r.Anomaly.HistoryDays),
		verdict,
	})
	table.Render()
	fmt.Fprintln(w)
}

func (r *Report) errorsSection(w io.Writer) {
	fmt.Fprintln(w, "Errors:")
	sections := lo.Keys(r.Errors)
	sort.Strings(sections)
	for _, section := range sections {
		fmt.Fprintf(w, "  %s: %s\n", section, r.Errors[section])
	}
	fmt.Fprintln(w)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}
