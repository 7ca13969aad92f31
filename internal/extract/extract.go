// Package extract cuts merged segments out of a source video, one file per
// segment, and optionally joins the cuts into a single file.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kmmndr/motioncut/internal/progress"
	"github.com/kmmndr/motioncut/internal/segment"
)

var (
	// ErrExtraction marks a single segment that could not be cut. It is
	// recorded in Result.Failures; the remaining segments are still cut.
	ErrExtraction = errors.New("segment extraction failed")
	// ErrConcatenation is returned when joining the clips failed. The clips
	// are kept on disk.
	ErrConcatenation = errors.New("concatenation failed")
)

// Clip is one file written for one segment.
type Clip struct {
	Index   int
	Path    string
	Segment segment.Segment
}

// Failure is a segment that produced no file.
type Failure struct {
	Index   int
	Segment segment.Segment
	Err     error
}

type Result struct {
	Clips    []Clip
	Total    int
	Failures []Failure
	// Merged is the path of the joined file, empty when no join happened.
	Merged    string
	Cancelled bool
}

func (r *Result) Succeeded() int {
	return len(r.Clips)
}

// Ratio reports succeeded/total, e.g. "2/3".
func (r *Result) Ratio() string {
	return fmt.Sprintf("%d/%d", r.Succeeded(), r.Total)
}

// Paths lists the clip files in segment order.
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Clips))
	for i, c := range r.Clips {
		paths[i] = c.Path
	}
	return paths
}

type Options struct {
	// OutputDir receives the clips. Empty means next to the source video.
	// Clips written to a shared OutputDir are tagged with SourceTag.
	OutputDir string
	// Joiner, when set, joins the clips into Names.Merged and removes them.
	Joiner Joiner
}

type Extractor struct {
	cutter    Cutter
	joiner    Joiner
	outputDir string
	reporter  progress.Reporter
}

func New(cutter Cutter, opts Options) *Extractor {
	return &Extractor{
		cutter:    cutter,
		joiner:    opts.Joiner,
		outputDir: opts.OutputDir,
		reporter:  progress.Discard,
	}
}

func (e *Extractor) SetReporter(r progress.Reporter) {
	e.reporter = progress.OrDiscard(r)
}

func (e *Extractor) dir(videoPath string) string {
	if e.outputDir != "" {
		return e.outputDir
	}
	return filepath.Dir(videoPath)
}

// names tags outputs with the source path when they do not land next to
// the source.
func (e *Extractor) names(videoPath string) Names {
	var tag, ext string
	if e.outputDir != "" {
		tag = SourceTag(videoPath)
	}
	if c, ok := e.cutter.(ClipExter); ok {
		ext = c.ClipExt()
	}
	return NewNames(videoPath, tag, ext)
}

// Extract cuts every segment of videoPath. A segment that fails is recorded
// and skipped. Cancellation stops before the next segment and returns the
// clips written so far without joining them.
func (e *Extractor) Extract(ctx context.Context, videoPath string, segments []segment.Merged) (*Result, error) {
	result := &Result{Total: len(segments)}
	reporter := progress.NewMonotonic(e.reporter)

	if len(segments) == 0 {
		reporter.Message("no segments to extract")
		reporter.Progress(100)
		return result, nil
	}

	dir := e.dir(videoPath)
	names := e.names(videoPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	reporter.Progress(0)
	for i, m := range segments {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		index := i + 1
		seg := m.Segment
		output := filepath.Join(dir, names.Clip(index, seg))

		err := e.cut(ctx, videoPath, seg, output)
		switch {
		case err == nil:
			result.Clips = append(result.Clips, Clip{Index: index, Path: output, Segment: seg})
			reporter.Message(fmt.Sprintf("segment %d: %s", index, filepath.Base(output)))
		case ctx.Err() != nil:
			os.Remove(output)
			result.Cancelled = true
		default:
			os.Remove(output)
			result.Failures = append(result.Failures, Failure{Index: index, Segment: seg, Err: err})
			reporter.Message(fmt.Sprintf("segment %d (%s) skipped: %v", index, seg, err))
		}
		if result.Cancelled {
			break
		}

		reporter.Progress(progress.Percent(index, len(segments)))
	}

	reporter.Message(fmt.Sprintf("extracted %s segments", result.Ratio()))

	if result.Cancelled || e.joiner == nil || len(result.Clips) == 0 {
		return result, nil
	}

	merged := filepath.Join(dir, names.Merged())
	if err := e.joiner.Join(ctx, result.Paths(), merged); err != nil {
		os.Remove(merged)
		if ctx.Err() != nil {
			result.Cancelled = true
			return result, nil
		}
		reporter.Message(fmt.Sprintf("concatenation failed, keeping %d clips", len(result.Clips)))
		return result, fmt.Errorf("%s: %w: %w", merged, ErrConcatenation, err)
	}

	result.Merged = merged
	for _, c := range result.Clips {
		if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
			reporter.Message(fmt.Sprintf("unable to remove %s: %v", c.Path, err))
		}
	}
	reporter.Message(fmt.Sprintf("merged into %s", filepath.Base(merged)))

	return result, nil
}

func (e *Extractor) cut(ctx context.Context, videoPath string, seg segment.Segment, output string) error {
	if !seg.Valid() {
		return fmt.Errorf("empty segment %s: %w", seg, ErrExtraction)
	}
	if err := e.cutter.Cut(ctx, videoPath, seg, output); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	if _, err := os.Stat(output); err != nil {
		return fmt.Errorf("no output written: %w", ErrExtraction)
	}
	return nil
}
