package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ManuGH/vidfetch/internal/display"
	"github.com/ManuGH/vidfetch/internal/quality"
	"github.com/ManuGH/vidfetch/internal/service"
)

func printMetadata(w io.Writer, m *service.VideoMetadata) {
	if m == nil {
		return
	}
	publish := m.PublishDate
	if publish == "" {
		publish = display.NotAvailable
	}
	_, _ = fmt.Fprintf(w, "Title:     %s\n", m.Title)
	_, _ = fmt.Fprintf(w, "Author:    %s\n", m.Author)
	_, _ = fmt.Fprintf(w, "Duration:  %s\n", display.Duration(m.DurationSeconds()))
	_, _ = fmt.Fprintf(w, "Views:     %s\n", display.Count(m.Views()))
	_, _ = fmt.Fprintf(w, "Published: %s\n", publish)

	printOptions(w, "Video qualities", quality.Options(m.AvailableQualities.Video, quality.DescribeVideo))
	printOptions(w, "Audio qualities", quality.Options(m.AvailableQualities.Audio, quality.DescribeAudio))
}

func printOptions(w io.Writer, title string, opts []quality.Option) {
	_, _ = fmt.Fprintf(w, "%s:\n", title)
	for _, o := range opts {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", o.Token, o.Label)
	}
}

func printDebugReport(w io.Writer, r *service.DebugReport) error {
	if r == nil {
		return nil
	}
	_, _ = fmt.Fprintf(w, "%s (%d formats)\n", r.Title, r.TotalFormats)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ITAG\tCONTAINER\tQUALITY\tHEIGHT\tFPS\tVIDEO\tAUDIO\tBITRATE\tSIZE")
	for _, f := range r.Formats {
		label := f.Label()
		if label == "" {
			label = display.NotAvailable
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Itag, f.Container, label,
			display.Opt(f.Height), display.Opt(f.FPS),
			display.Flag(f.HasVideo), display.Flag(f.HasAudio),
			display.Opt(f.AudioBitrate), display.Size(f.ContentLength))
	}
	return tw.Flush()
}
