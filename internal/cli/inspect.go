package cli

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/printforge/internal/config"
	"github.com/ppiankov/printforge/internal/job"
	"github.com/ppiankov/printforge/internal/layout"
	"github.com/ppiankov/printforge/internal/probe"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [dir]",
		Short: "List images with their size, format, capture time and A4 status",
		Long: `List every image below dir (the legions root by default) with its pixel
size, format, JFIF density and EXIF capture time. Originals show whether
their A4 version exists; A4 files show whether they have the target size.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			dir := s.Path(s.LegionsRoot)
			if len(args) == 1 {
				dir = args[0]
			}
			if err := config.RequireDir(dir); err != nil {
				return err
			}
			return inspectTree(cmd.OutOrStdout(), s, dir)
		},
	}
	return cmd
}

// inspectRow is one line of the inspect table.
type inspectRow struct {
	path   string
	info   *probe.Info
	status string
}

func inspectTree(w io.Writer, s *config.Settings, dir string) error {
	rows, err := collectRows(s, dir)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(w, "No images in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "IMAGE\tFORMAT\tSIZE\tDPI\tTAKEN\tA4\n")
	var missing int
	for _, r := range rows {
		if r.status == "missing" {
			missing++
		}
		if r.info == nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", r.path, r.status)
			continue
		}
		dpi, taken := "-", "-"
		if r.info.DPI > 0 {
			dpi = fmt.Sprintf("%d", r.info.DPI)
		}
		if !r.info.Taken.IsZero() {
			taken = r.info.Taken.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%dx%d\t%s\t%s\t%s\n",
			r.path, r.info.Format, r.info.Width, r.info.Height, dpi, taken, r.status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d images, %d without an A4 version\n", len(rows), missing)
	return nil
}

// collectRows walks dir and probes every image, skipping hidden folders.
func collectRows(s *config.Settings, dir string) ([]inspectRow, error) {
	filter := job.FilterFor(s)
	target := s.Target

	var rows []inspectRow
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.Match(d.Name()) {
			return nil
		}

		rel, _ := filepath.Rel(dir, path)
		row := inspectRow{path: rel}
		stem, _ := layout.SplitName(d.Name())
		marked := layout.EndsWithMarker(stem, s.Marker)

		info, perr := probe.Probe(path)
		if perr != nil {
			row.status = "unreadable"
			rows = append(rows, row)
			return nil
		}
		row.info = info

		switch {
		case marked && info.Is(target.Width, target.Height):
			row.status = "target size"
		case marked:
			row.status = fmt.Sprintf("not %dx%d", target.Width, target.Height)
		case layout.Exists(filepath.Join(filepath.Dir(path), layout.MarkedName(stem, s.Marker, s.OutputExt()))):
			row.status = "yes"
		default:
			row.status = "missing"
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return rows, nil
}
