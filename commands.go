package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kmmndr/motioncut/internal/config"
	"github.com/kmmndr/motioncut/internal/history"
	"github.com/kmmndr/motioncut/internal/logging"
	"github.com/kmmndr/motioncut/internal/motion"
	"github.com/kmmndr/motioncut/internal/pipeline"
	"github.com/kmmndr/motioncut/internal/progress"
	"github.com/kmmndr/motioncut/internal/segment"
	"github.com/kmmndr/motioncut/internal/timecode"
)

// runFlags are shared by detect and split; they override the config file
// when set.
type runFlags struct {
	workers   int
	threshold int
	minArea   int
	static    float64
	buffer    float64
	output    string
	noConcat  bool
	noHistory bool
	jsonOut   bool
}

func (f *runFlags) register(cmd *cobra.Command, split bool) {
	flags := cmd.Flags()
	flags.IntVarP(&f.workers, "workers", "j", 0, "videos processed at once (default from config)")
	flags.IntVar(&f.threshold, "threshold", 0, "pixel difference threshold (0-255)")
	flags.IntVar(&f.minArea, "min-area", 0, "minimum changed area in pixels")
	flags.Float64Var(&f.static, "static", 0, "seconds without motion that end a segment")
	flags.Float64Var(&f.buffer, "buffer", 0, "seconds added before and after each segment")
	flags.BoolVar(&f.noHistory, "no-history", false, "do not record runs")
	flags.BoolVar(&f.jsonOut, "json", false, "print results as JSON")
	if split {
		flags.StringVarP(&f.output, "output", "o", "", "output directory (default: next to each video)")
		flags.BoolVar(&f.noConcat, "no-concat", false, "keep one file per segment")
	}
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Concurrency = f.workers
	}
	if flags.Changed("threshold") {
		cfg.Detection.DifferenceThreshold = f.threshold
	}
	if flags.Changed("min-area") {
		cfg.Detection.MinContourArea = f.minArea
	}
	if flags.Changed("static") {
		cfg.Detection.StaticDurationSeconds = f.static
	}
	if flags.Changed("buffer") {
		cfg.Segments.BufferSeconds = f.buffer
	}
	if flags.Changed("output") {
		cfg.Extract.OutputDir = f.output
	}
	if f.noConcat {
		cfg.Extract.Concat = false
	}
	return cfg.Validate()
}

var (
	detectFlags runFlags
	splitFlags  runFlags
)

var detectCmd = &cobra.Command{
	Use:   "detect [videos...]",
	Short: "Detect motion segments without cutting",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, &detectFlags, false)
	},
}

var splitCmd = &cobra.Command{
	Use:   "split [videos...]",
	Short: "Detect motion and cut each segment into a clip",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, &splitFlags, true)
	},
}

func run(cmd *cobra.Command, paths []string, flags *runFlags, split bool) error {
	cfg := config.FromContext(cmd.Context())
	if err := flags.apply(cmd, cfg); err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithSplit(split)}
	if !flags.noHistory {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Msg("history disabled")
		} else {
			defer store.Close()
			opts = append(opts, pipeline.WithHistory(store))
		}
	}

	pipe, err := pipeline.New(log.Logger, cfg, opts...)
	if err != nil {
		return err
	}

	cli := logging.WithComponent("cli")
	results := pipe.Batch(cmd.Context(), paths, cfg.Concurrency, func(path string) progress.Reporter {
		return logging.Reporter(cli.With().Str("video", filepath.Base(path)).Logger())
	})

	out := cmd.OutOrStdout()
	if flags.jsonOut {
		err = printJSON(out, results)
	} else {
		printSummary(out, results)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d videos failed", failed, len(results))
	}
	return nil
}

type jsonResult struct {
	Video     string                 `json:"video"`
	RunID     string                 `json:"run_id"`
	FPS       float64                `json:"fps"`
	Segments  []segment.Info         `json:"segments"`
	Motions   []*motion.MotionReport `json:"motions"`
	Clips     []string               `json:"clips,omitempty"`
	Merged    string                 `json:"merged,omitempty"`
	Ratio     string                 `json:"extracted,omitempty"`
	Cancelled bool                   `json:"cancelled,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func summarize(r *pipeline.VideoResult) ([]segment.Info, string) {
	return segment.Summarize(segment.Segments(r.Segments))
}

func printJSON(w io.Writer, results []*pipeline.VideoResult) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		j := jsonResult{
			Video:     r.Path,
			RunID:     r.RunID.String(),
			FPS:       r.FPS,
			Cancelled: r.Cancelled(),
			Motions:   r.Reports,
		}
		infos, _ := summarize(r)
		j.Segments = infos
		if r.Extraction != nil {
			j.Clips = r.Extraction.Paths()
			j.Merged = r.Extraction.Merged
			j.Ratio = r.Extraction.Ratio()
		}
		if r.Err != nil {
			j.Error = r.Err.Error()
		}
		out = append(out, j)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printSummary(w io.Writer, results []*pipeline.VideoResult) {
	for _, r := range results {
		fmt.Fprintf(w, "%s\n", r.Path)
		if r.Err != nil && r.Detection == nil {
			fmt.Fprintf(w, "  error: %v\n\n", r.Err)
			continue
		}
		if r.Cancelled() {
			fmt.Fprintf(w, "  cancelled, partial result\n")
		}

		infos, total := summarize(r)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, i := range infos {
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", i.Index, i.Start, i.End, i.Duration)
		}
		tw.Flush()
		fmt.Fprintf(w, "  %d segments, total %s at %.2f fps\n", len(infos), total, r.FPS)

		if x := r.Extraction; x != nil {
			fmt.Fprintf(w, "  extracted %s clips\n", x.Ratio())
			for _, f := range x.Failures {
				fmt.Fprintf(w, "  segment %d failed: %v\n", f.Index, f.Err)
			}
			if x.Merged != "" {
				fmt.Fprintf(w, "  merged: %s%s\n", x.Merged, fileSize(x.Merged))
			} else {
				for _, c := range x.Clips {
					fmt.Fprintf(w, "  clip: %s%s\n", c.Path, fileSize(c.Path))
				}
			}
		}
		if r.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", r.Err)
		}
		fmt.Fprintln(w)
	}
}

func fileSize(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return " (" + humanize.Bytes(uint64(st.Size())) + ")"
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show processed videos",
}

var historyLimit int

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past runs, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(historyLimit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tVIDEO\tSEGMENTS\tCLIPS\tTOOK\tSTATUS")
		for _, r := range runs {
			status := "ok"
			switch {
			case r.Error != "":
				status = r.Error
			case r.Cancelled:
				status = "cancelled"
			}
			clips := "-"
			if r.Total > 0 {
				clips = fmt.Sprintf("%d/%d", r.Clips, r.Total)
			}
			took := timecode.Clock(r.FinishedAt.Sub(r.StartedAt).Seconds())
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				humanize.Time(r.StartedAt), r.Video, r.Segments, clips, took, status)
		}
		return tw.Flush()
	},
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently processed videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		recent, err := store.Recent()
		if err != nil {
			return err
		}
		for _, r := range recent {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", humanize.Time(r.OpenedAt), r.Video)
		}
		return nil
	},
}

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	cfg := config.FromContext(cmd.Context())
	return history.Open(cfg.History.Path)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(config.FromContext(cmd.Context()))
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath()
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		log.Info().Str("path", path).Msg("configuration written")
		return nil
	},
}

func init() {
	detectFlags.register(detectCmd, false)
	splitFlags.register(splitCmd, true)

	historyRunsCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show, 0 for all")
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyRecentCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
