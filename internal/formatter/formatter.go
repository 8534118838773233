// package formatter renders run summaries, plans and catalogs as tables, JSON or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/northis/ym-api-organizer/internal/models"
	"github.com/northis/ym-api-organizer/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "text", "json" or "csv" (case-insensitive). Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, json or csv)", shared.ErrInvalidArgument, s)
	}
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryToText renders a run summary as counts followed by tables of acquired and failed tracks.
func SummaryToText(s *models.RunSummary) []byte {
	var buf bytes.Buffer

	if s.Playlist != "" {
		fmt.Fprintf(&buf, "Playlist: %s\n", s.Playlist)
	}
	fmt.Fprintf(&buf, "Remote: %d  Local: %d  Missing: %d  Selected: %d\n", s.RemoteCount, s.LocalCount, s.Missing, s.Selected)
	fmt.Fprintf(&buf, "Acquired: %d  Failed: %d  Remaining: %d\n", len(s.Succeeded), len(s.Failed), s.Remaining())
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		fmt.Fprintf(&buf, "Duration: %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	}
	if s.Interrupted {
		buf.WriteString("Interrupted: remaining tracks will be picked up by the next run\n")
	}

	if len(s.Succeeded) > 0 {
		rows := make([][]string, len(s.Succeeded))
		for i, a := range s.Succeeded {
			rows[i] = []string{strconv.Itoa(a.SequenceID), a.Artist, a.Title, a.Filename}
		}
		buf.WriteString("\n")
		buf.WriteString(renderTable([]string{"ID", "Artist", "Title", "File"}, rows, []columnAlignment{alignRight}))
		buf.WriteString("\n")
	}

	if len(s.Failed) > 0 {
		rows := make([][]string, len(s.Failed))
		for i, f := range s.Failed {
			rows[i] = []string{f.Artist, f.Title, f.Reason}
		}
		buf.WriteString("\nFailed:\n")
		buf.WriteString(renderTable([]string{"Artist", "Title", "Reason"}, rows, nil))
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// SummaryToCSV renders one row per acquired or failed track with columns: Status, ID, Artist, Title, File, Reason
func SummaryToCSV(s *models.RunSummary) ([]byte, error) {
	rows := make([][]string, 0, len(s.Succeeded)+len(s.Failed))
	for _, a := range s.Succeeded {
		rows = append(rows, []string{"acquired", strconv.Itoa(a.SequenceID), a.Artist, a.Title, a.Filename, ""})
	}
	for _, f := range s.Failed {
		rows = append(rows, []string{"failed", "", f.Artist, f.Title, "", f.Reason})
	}
	return writeCSV([]string{"Status", "ID", "Artist", "Title", "File", "Reason"}, rows)
}

// RenderSummary encodes s in format f.
func RenderSummary(s *models.RunSummary, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(s, true)
	case FormatCSV:
		return SummaryToCSV(s)
	default:
		return SummaryToText(s), nil
	}
}

// WriteReport writes the summary to path in format f.
func WriteReport(path string, s *models.RunSummary, f Format) error {
	data, err := RenderSummary(s, f)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// PendingToText renders the tracks a run would acquire.
func PendingToText(pending []models.PendingTrack, missing int) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Missing: %d  Selected: %d  Left for later runs: %d\n", missing, len(pending), missing-len(pending))
	if len(pending) == 0 {
		buf.WriteString("Nothing to do.\n")
		return buf.Bytes()
	}

	rows := make([][]string, len(pending))
	for i, p := range pending {
		rows[i] = []string{strconv.Itoa(p.SequenceID), p.Track.Artist, p.Track.FullTitle(), p.Track.Album}
	}
	buf.WriteString("\n")
	buf.WriteString(renderTable([]string{"ID", "Artist", "Title", "Album"}, rows, []columnAlignment{alignRight}))
	buf.WriteString("\n")
	return buf.Bytes()
}

// RenderPending encodes the pending list in format f.
func RenderPending(pending []models.PendingTrack, missing int, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(pending, true)
	case FormatCSV:
		rows := make([][]string, len(pending))
		for i, p := range pending {
			rows[i] = []string{strconv.Itoa(p.SequenceID), p.Track.Artist, p.Track.Title, p.Track.Album, p.Track.WebURL}
		}
		return writeCSV([]string{"ID", "Artist", "Title", "Album", "URL"}, rows)
	default:
		return PendingToText(pending, missing), nil
	}
}

// CatalogToText renders the local catalog with its next id, duplicate ids and leftover temp files.
func CatalogToText(c *models.Catalog) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Directory: %s\n", c.Dir)
	fmt.Fprintf(&buf, "Tracks: %d  Next id: %d\n", c.Len(), c.NextID())

	if c.Len() > 0 {
		rows := make([][]string, len(c.Entries))
		for i, e := range c.Entries {
			name := e.Title
			if e.Legacy {
				name += " (legacy name)"
			}
			rows[i] = []string{strconv.Itoa(e.SequenceID), e.Artist, name, e.Ext}
		}
		buf.WriteString("\n")
		buf.WriteString(renderTable([]string{"ID", "Artist", "Title", "Ext"}, rows, []columnAlignment{alignRight}))
		buf.WriteString("\n")
	}

	if dups := c.Duplicates(); len(dups) > 0 {
		buf.WriteString("\nDuplicate ids:\n")
		for _, e := range c.Entries {
			if _, ok := dups[e.SequenceID]; ok {
				fmt.Fprintf(&buf, "  %s\n", e.Filename)
			}
		}
	}

	if len(c.Stale) > 0 {
		fmt.Fprintf(&buf, "\nLeftover temp files: %d (removed on next sync)\n", len(c.Stale))
	}
	return buf.Bytes()
}

// RenderCatalog encodes c in format f.
func RenderCatalog(c *models.Catalog, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return shared.MarshalJSON(c, true)
	case FormatCSV:
		rows := make([][]string, len(c.Entries))
		for i, e := range c.Entries {
			rows[i] = []string{strconv.Itoa(e.SequenceID), e.Artist, e.Title, e.Ext, e.Filename}
		}
		return writeCSV([]string{"ID", "Artist", "Title", "Ext", "File"}, rows)
	default:
		return CatalogToText(c), nil
	}
}
