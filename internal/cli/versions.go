package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	intconfig "backoffice/internal/config"
	"backoffice/internal/domain/models"
	"backoffice/internal/listview"
	"backoffice/internal/repositories"
	"backoffice/internal/services"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const maxCellWidth = 40

var (
	versionsStatus    string
	versionsCourseID  int64
	versionsQuery     string
	versionsSort      string
	versionsDirection string
	noColor           bool

	exportFormat string
	exportOut    string
)

// openVersionService connects to the database and returns the service with
// a function that releases the connection.
var openVersionService = func(env intconfig.Env) (services.VersionService, func(), error) {
	db, err := intconfig.ConnectDB(env)
	if err != nil {
		return services.VersionService{}, nil, fmt.Errorf("connect database: %w", err)
	}
	svc := services.VersionService{
		Courses:   repositories.CourseRepository{DB: db},
		Versions:  repositories.CourseVersionRepository{DB: db},
		RequestID: "cli",
	}
	return svc, intconfig.CloseDB, nil
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Inspect and export course versions",
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print course versions as a table",
	Long: `List prints every course version matching the given search, filters
and sort, followed by the status counters of the whole catalogue.

Example:
  backoffice versions list --status published --sort price --direction desc`,
	RunE: runVersionsList,
}

var versionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export course versions to CSV or PDF",
	Long: `Export writes the filtered versions table to a file. Without --out the
file is named like the HTTP download (versiones_YYYYMMDD_HHMMSS.csv).

Example:
  backoffice versions export --format pdf --out versiones.pdf`,
	RunE: runVersionsExport,
}

func init() {
	for _, c := range []*cobra.Command{versionsListCmd, versionsExportCmd} {
		c.Flags().StringVar(&versionsStatus, "status", "", "Filter by status (draft, published, archived)")
		c.Flags().Int64Var(&versionsCourseID, "course", 0, "Filter by course id")
		c.Flags().StringVarP(&versionsQuery, "query", "q", "", "Search name, version or course")
		c.Flags().StringVar(&versionsSort, "sort", "", "Sort field (name, version, price, students_count, ...)")
		c.Flags().StringVar(&versionsDirection, "direction", "asc", "Sort direction (asc, desc)")
	}
	versionsListCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	versionsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format (csv, pdf)")
	versionsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file path")

	versionsCmd.AddCommand(versionsListCmd, versionsExportCmd)
	rootCmd.AddCommand(versionsCmd)
}

func versionParams() listview.Params {
	p := listview.Params{
		Query:         versionsQuery,
		Filters:       map[string]string{},
		SortField:     strings.TrimSpace(versionsSort),
		SortDirection: listview.ParseDirection(versionsDirection),
	}
	if s := strings.TrimSpace(versionsStatus); s != "" {
		p.Filters[services.FilterStatus] = strings.ToLower(s)
	}
	if versionsCourseID > 0 {
		p.Filters[services.FilterCourseID] = strconv.FormatInt(versionsCourseID, 10)
	}
	return p
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, closeFn, err := openVersionService(env)
	if err != nil {
		return err
	}
	defer closeFn()

	if noColor {
		color.Enable = false
	}

	versions, courses, err := svc.Filtered(context.Background(), versionParams())
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		cmd.Println("No course versions match")
		return nil
	}

	renderVersionTable(cmd.OutOrStdout(), versions, courses)

	all, _, err := svc.Filtered(context.Background(), listview.Params{})
	if err != nil {
		return err
	}
	stats := services.ComputeVersionStats(all)
	cmd.Printf("\nShown: %d of %d  (published %d, draft %d, archived %d)\n",
		len(versions), stats.TotalVersions, stats.PublishedVersions, stats.DraftVersions, stats.ArchivedVersions)
	return nil
}

// renderVersionTable pads by display width so accented names stay aligned.
func renderVersionTable(w io.Writer, versions []models.CourseVersion, courses []models.Course) {
	rows := services.VersionTable(versions, courses)
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		if widths[i] > maxCellWidth {
			widths[i] = maxCellWidth
		}
	}

	statusCol := len(widths) - 1
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cell = runewidth.FillRight(runewidth.Truncate(cell, widths[i], "…"), widths[i])
			switch {
			case r == 0:
				cell = color.Bold.Sprint(cell)
			case i == statusCol:
				cell = statusColor(versions[r-1].Status).Sprint(cell)
			}
			cells[i] = cell
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func statusColor(s models.VersionStatus) color.Color {
	switch s {
	case models.VersionPublished:
		return color.Green
	case models.VersionDraft:
		return color.Yellow
	default:
		return color.Gray
	}
}

func runVersionsExport(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != "csv" && format != "pdf" {
		return fmt.Errorf("unsupported format %q (use csv or pdf)", exportFormat)
	}

	env, err := loadEnv()
	if err != nil {
		return err
	}
	svc, closeFn, err := openVersionService(env)
	if err != nil {
		return err
	}
	defer closeFn()

	var (
		data []byte
		name string
	)
	if format == "pdf" {
		data, name, err = svc.ExportPDF(context.Background(), versionParams())
	} else {
		data, name, err = svc.ExportCSV(context.Background(), versionParams())
	}
	if err != nil {
		return err
	}

	path := exportOut
	if path == "" {
		path = name
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(data), path)
	return nil
}
