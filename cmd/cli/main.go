package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/edufetch-go/api"
	"github.com/yourusername/edufetch-go/internal/app"
	"github.com/yourusername/edufetch-go/internal/domain"
	"github.com/yourusername/edufetch-go/internal/infrastructure"
	"github.com/yourusername/edufetch-go/pkg/format"
	"github.com/yourusername/edufetch-go/pkg/logger"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "edufetch",
		Short: "EduFetch CLI - Bulk downloader for course platforms",
		Long:  `A command-line tool that downloads whole courses, resumes interrupted runs, and reports which courses still have lessons missing.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")

	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(statsCmd)
}

// bootstrap loads config and wires the shared collaborators
func bootstrap() (*domain.Config, domain.CatalogDiscovery, *zap.Logger) {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create logger: %v\n", err)
		os.Exit(1)
	}

	catalog, err := infrastructure.NewFileCatalog(cfg.Catalog.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	return cfg, catalog, log
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the courses available in the catalog",
	Run: func(cmd *cobra.Command, args []string) {
		_, catalog, _ := bootstrap()

		courses, err := catalog.ListCourses()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tLESSONS")
		for i, course := range courses {
			count, _ := catalog.CountLessons(course.URL)
			fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, course.Title, count)
		}
		w.Flush()
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download every course that still has lessons missing",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, catalog, log := bootstrap()
		statusAddr, _ := cmd.Flags().GetString("status-addr")
		noMonitor, _ := cmd.Flags().GetBool("no-monitor")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		notifier := infrastructure.NewTelegramNotifier(&cfg.Notification, log)
		if err := notifier.TestConnection(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fetcher := infrastructure.NewFileFetcher(&cfg.Download, log)
		downloader := app.NewCourseDownloader(cfg, catalog, fetcher, notifier, log)

		docs, videos := downloader.Schedulers()
		if statusAddr != "" {
			router := api.SetupRouter(docs, videos, log)
			go func() {
				if err := http.ListenAndServe(statusAddr, router); err != nil {
					log.Warn("status API stopped", zap.Error(err))
				}
			}()
			fmt.Printf("Status API listening on %s\n", statusAddr)
		}

		if !noMonitor {
			monitor := app.NewProgressMonitor(docs, videos)
			monitor.Start()
			defer monitor.Stop()
		}

		detector := app.NewPendingDetector(cfg.Download.RootDir, catalog, log)
		reports, err := detector.FindIncomplete()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(reports) == 0 {
			color.Green("Nothing to download, all courses are complete.")
			return
		}

		notifier.NotifyRunStarted(len(reports))
		for _, report := range reports {
			notifier.NotifyCourseIncomplete(report)
		}

		failed := 0
		for _, report := range reports {
			select {
			case <-ctx.Done():
				color.Yellow("Interrupted, progress so far is saved in the manifests.")
				os.Exit(130)
			default:
			}

			fmt.Printf("Downloading %s (%d lessons missing)\n",
				report.Course.Title, report.MissingLessons)
			if !downloader.DownloadCourse(ctx, report.Course) {
				failed++
			}
		}

		if failed > 0 {
			notifier.Send(fmt.Sprintf("🏁 Run finished: %d of %d course(s) had failures", failed, len(reports)))
			color.Red("Finished with failures: %d course(s) incomplete.", failed)
			os.Exit(1)
		}
		notifier.Send(fmt.Sprintf("🏁 Run finished: %d course(s) downloaded", len(reports)))
		color.Green("All courses downloaded.")
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Show courses with lessons missing locally",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, catalog, log := bootstrap()

		detector := app.NewPendingDetector(cfg.Download.RootDir, catalog, log)
		reports, err := detector.FindIncomplete()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(reports) == 0 {
			color.Green("All courses are complete.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COURSE\tLOCAL\tREMOTE\tMISSING\tPROGRESS\tSIZE")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f%%\t%s\n",
				r.Course.Title, r.LocalLessons, r.RemoteLessons,
				r.MissingLessons, r.Progress, format.Bytes(r.LocalSizeBytes))
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats [course-dir]",
	Short: "Show the manifest statistics of a downloaded course",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manifest := infrastructure.NewFileManifestStore(args[0], zap.NewNop())
		stats := manifest.Statistics()

		fmt.Println("Course Statistics:")
		fmt.Printf("  Lessons: %d\n", stats.Lessons)
		fmt.Printf("  Files:   %d\n", stats.Files)
		fmt.Printf("  Size:    %s\n", format.Bytes(stats.TotalBytes))
		for _, lesson := range manifest.DownloadedLessons() {
			if failed := manifest.FailedFiles(lesson); len(failed) > 0 {
				color.Red("  %s: %d failed file(s)", lesson, len(failed))
			}
		}
	},
}

func init() {
	downloadCmd.Flags().String("status-addr", "", "Serve the status API on this address (e.g. localhost:8080)")
	downloadCmd.Flags().Bool("no-monitor", false, "Disable the terminal progress display")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
