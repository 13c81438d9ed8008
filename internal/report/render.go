package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/xtxerr/utiltrack/internal/metrics"
)

const timeFormat = "2006-01-02 15:04:05"

// RenderSystem writes system samples as a table, one row per sample.
func RenderSystem(w io.Writer, samples []metrics.SystemSample) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "CPU %", "Load 1m", "Mem %", "Mem Used", "Swap %"})

	for _, s := range samples {
		load := "-"
		if s.LoadAvg1 != nil {
			load = fmt.Sprintf("%.2f", *s.LoadAvg1)
		}
		table.Append([]string{
			s.Timestamp.Format(timeFormat),
			fmt.Sprintf("%.1f", s.CPUPercent),
			load,
			fmt.Sprintf("%.1f", s.MemoryPercent),
			formatBytes(s.MemoryUsed),
			fmt.Sprintf("%.1f", s.SwapPercent),
		})
	}
	table.Render()
}

// RenderDisks writes disk samples as a table.
func RenderDisks(w io.Writer, samples []metrics.DiskSample) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Device", "Mountpoint", "Total", "Used", "Free", "Use %"})

	for _, d := range samples {
		table.Append([]string{
			d.Timestamp.Format(timeFormat),
			d.Device,
			d.Mountpoint,
			formatBytes(d.Total),
			formatBytes(d.Used),
			formatBytes(d.Free),
			fmt.Sprintf("%.1f", d.Percent),
		})
	}
	table.Render()
}

// RenderTemperatures writes temperature samples as a table.
func RenderTemperatures(w io.Writer, samples []metrics.TemperatureSample) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Sensor", "Label", "Current", "High", "Critical"})

	for _, t := range samples {
		table.Append([]string{
			t.Timestamp.Format(timeFormat),
			t.Sensor,
			t.Label,
			fmt.Sprintf("%.1f", t.Current),
			formatOptional(t.High),
			formatOptional(t.Critical),
		})
	}
	table.Render()
}

// RenderGPUs writes GPU samples as a table.
func RenderGPUs(w io.Writer, samples []metrics.GPUSample) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "GPU", "Name", "Util %", "Mem Used", "Temp", "Power W", "Fan %"})

	for _, g := range samples {
		table.Append([]string{
			g.Timestamp.Format(timeFormat),
			fmt.Sprintf("%d", g.Index),
			g.Name,
			fmt.Sprintf("%.1f", g.Utilization),
			formatBytes(g.MemoryUsed),
			formatOptional(g.Temperature),
			formatOptional(g.PowerDraw),
			formatOptional(g.FanSpeed),
		})
	}
	table.Render()
}

// RenderSummary writes named summaries as a table.
func RenderSummary(w io.Writer, rows map[string]*Summary, order []string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Count", "Avg", "Min", "Max", "P50", "P90", "P95", "P99"})

	for _, name := range order {
		s, ok := rows[name]
		if !ok {
			continue
		}
		table.Append([]string{
			name,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%.1f", s.Avg),
			fmt.Sprintf("%.1f", s.Min),
			fmt.Sprintf("%.1f", s.Max),
			fmt.Sprintf("%.1f", s.P50),
			fmt.Sprintf("%.1f", s.P90),
			fmt.Sprintf("%.1f", s.P95),
			fmt.Sprintf("%.1f", s.P99),
		})
	}
	table.Render()
}

// formatBytes renders a byte count with a binary-unit suffix.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
