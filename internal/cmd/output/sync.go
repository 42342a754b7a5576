package output

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/assetsync/internal/export"
	"github.com/agentstation/assetsync/pkg/reconcile"
	"github.com/agentstation/assetsync/pkg/sync"
)

// title capitalizes an action name. Casers are stateful, so each call gets
// its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// Plans renders dry-run plans as a summary table followed by one row per
// planned mutation.
type Plans []*reconcile.Plan

// Tables implements Tabular.
func (ps Plans) Tables(wide bool) []Data {
	summary := Data{
		Headers:         []string{"Feed", "Create", "Update", "Retag", "Reactivate", "Deactivate", "Model Age", "Skipped", "In Sync"},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
	headers := []string{"Feed", "Action", "Asset ID", "Name", "Changes"}
	if wide {
		headers = append(headers, "Serial", "External ID", "Predicates")
	}
	detail := Data{Headers: headers}

	for _, p := range ps {
		counts := p.Counts()
		summary.Rows = append(summary.Rows, []string{
			p.Feed.String(),
			strconv.Itoa(counts[reconcile.ActionCreate]),
			strconv.Itoa(counts[reconcile.ActionUpdate]),
			strconv.Itoa(counts[reconcile.ActionRetag]),
			strconv.Itoa(counts[reconcile.ActionReactivate]),
			strconv.Itoa(counts[reconcile.ActionDeactivate]),
			strconv.Itoa(counts[reconcile.ActionModelAge]),
			strconv.Itoa(len(p.Skipped)),
			strconv.Itoa(p.InSync),
		})

		for _, c := range p.Creates {
			row := []string{p.Feed.String(), title(string(reconcile.ActionCreate)), "-", c.Record.Name, "new record"}
			if wide {
				row = append(row, c.Record.SerialNumber, c.Source.ExternalID, "-")
			}
			detail.Rows = append(detail.Rows, row)
		}
		for _, u := range p.Updates {
			row := []string{
				p.Feed.String(),
				title(string(u.Action)),
				strconv.Itoa(u.Registry.ID),
				u.Registry.Name,
				orDash(strings.Join(u.Patch.Fields(), ", ")),
			}
			if wide {
				row = append(row, orDash(u.Registry.SerialNumber), orDash(u.Source.ExternalID), orDash(strings.Join(u.FailedNames(), ", ")))
			}
			detail.Rows = append(detail.Rows, row)
		}
		for _, m := range p.ModelAges {
			row := []string{p.Feed.String(), title(string(reconcile.ActionModelAge)), strconv.Itoa(m.ModelID), m.ModelName, "age " + m.Value()}
			if wide {
				row = append(row, "-", "-", "-")
			}
			detail.Rows = append(detail.Rows, row)
		}
	}

	if len(detail.Rows) == 0 {
		return []Data{summary}
	}
	return []Data{summary, detail}
}

// Results renders finished runs, plus a table of per-record failures when
// there are any.
type Results []*sync.Result

// Tables implements Tabular.
func (rs Results) Tables(wide bool) []Data {
	summary := Data{
		Headers:         []string{"Feed", "Source", "Registry", "Applied", "Failed", "In Sync", "Skipped", "Duration"},
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
	if wide {
		summary.Headers = append(summary.Headers, "Run ID", "Breakdown")
		summary.ColumnAlignment = append(summary.ColumnAlignment, AlignLeft, AlignLeft)
	}
	failures := Data{Headers: []string{"Feed", "Action", "Asset ID", "Name", "Error"}}

	for _, r := range rs {
		row := []string{
			r.Feed.String(),
			strconv.Itoa(r.SourceRecords),
			strconv.Itoa(r.RegistryRecords),
			strconv.Itoa(r.TotalApplied()),
			strconv.Itoa(r.TotalFailed()),
			strconv.Itoa(r.InSync),
			strconv.Itoa(r.Skipped),
			r.Duration.Round(time.Millisecond).String(),
		}
		if wide {
			row = append(row, r.RunID, orDash(breakdown(r.Applied)))
		}
		summary.Rows = append(summary.Rows, row)

		for _, f := range r.Failures {
			id := "-"
			if f.AssetID != 0 {
				id = strconv.Itoa(f.AssetID)
			}
			failures.Rows = append(failures.Rows, []string{r.Feed.String(), title(string(f.Action)), id, orDash(f.Name), f.Error})
		}
	}

	if len(failures.Rows) == 0 {
		return []Data{summary}
	}
	return []Data{summary, failures}
}

// Discovery renders the vendor and model export preview.
type Discovery export.Discovery

// Tables implements Tabular.
func (d Discovery) Tables(bool) []Data {
	vendors := Data{Headers: []string{"Vendor"}}
	for _, v := range d.Vendors {
		vendors.Rows = append(vendors.Rows, []string{v})
	}
	models := Data{Headers: []string{"Model", "Manufacturer"}}
	for _, m := range d.Models {
		models.Rows = append(models.Rows, []string{m.Name, m.Vendor})
	}
	return []Data{vendors, models}
}

// FormatPlans writes plans in format.
func FormatPlans(w io.Writer, format Format, plans []*reconcile.Plan) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, Plans(plans))
	}
	return NewFormatter(format).Format(w, plans)
}

// FormatResults writes run results in format.
func FormatResults(w io.Writer, format Format, results []*sync.Result) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, Results(results))
	}
	return NewFormatter(format).Format(w, results)
}

// FormatDiscovery writes an export preview in format.
func FormatDiscovery(w io.Writer, format Format, d export.Discovery) error {
	if format.IsTable() {
		return NewFormatter(format).Format(w, Discovery(d))
	}
	return NewFormatter(format).Format(w, d)
}

// FormatAny writes data in format with no table layout.
func FormatAny(w io.Writer, format Format, data any) error {
	return NewFormatter(format).Format(w, data)
}

func breakdown(counts map[reconcile.Action]int) string {
	actions := make([]string, 0, len(counts))
	for a, n := range counts {
		if n > 0 {
			actions = append(actions, string(a))
		}
	}
	sort.Strings(actions)
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, a+"="+strconv.Itoa(counts[reconcile.Action(a)]))
	}
	return strings.Join(parts, " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
