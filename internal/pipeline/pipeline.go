package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	uuid "github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kmmndr/motioncut/internal/config"
	"github.com/kmmndr/motioncut/internal/extract"
	"github.com/kmmndr/motioncut/internal/ffmpeg"
	"github.com/kmmndr/motioncut/internal/frame"
	"github.com/kmmndr/motioncut/internal/history"
	"github.com/kmmndr/motioncut/internal/motion"
	"github.com/kmmndr/motioncut/internal/progress"
	"github.com/kmmndr/motioncut/internal/region"
	"github.com/kmmndr/motioncut/internal/segment"
	"github.com/kmmndr/motioncut/internal/video"
)

// share of the progress bar given to detection when clips are extracted
const detectionShare = 80

// ClassifierFunc builds the classifier of one video once its size is known.
type ClassifierFunc func(info video.Info) frame.Classifier

// Pipeline runs videos through detection, merging and, when split is set,
// extraction. It holds only read-only configuration, so one Pipeline can
// process several videos at once.
type Pipeline struct {
	logger     zerolog.Logger
	cfg        *config.Config
	ffmpeg     *ffmpeg.Executor
	open       video.Opener
	classifier ClassifierFunc
	cutter     extract.Cutter
	joiner     extract.Joiner
	history    *history.Store
	split      bool
}

type Option func(*Pipeline)

// WithSplit extracts clips after detection.
func WithSplit(split bool) Option {
	return func(p *Pipeline) { p.split = split }
}

func WithOpener(open video.Opener) Option {
	return func(p *Pipeline) { p.open = open }
}

func WithClassifier(fn ClassifierFunc) Option {
	return func(p *Pipeline) { p.classifier = fn }
}

// WithCutter replaces the ffmpeg or OpenCV cutter. A nil joiner disables
// concatenation.
func WithCutter(cutter extract.Cutter, joiner extract.Joiner) Option {
	return func(p *Pipeline) {
		p.cutter = cutter
		p.joiner = joiner
	}
}

// WithHistory records every processed video in store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// WithoutFFmpeg skips looking up ffmpeg.
func WithoutFFmpeg() Option {
	return func(p *Pipeline) { p.ffmpeg = nil }
}

// New creates a new pipeline instance. A missing ffmpeg is not an error:
// clips are then re-encoded with OpenCV and never joined.
func New(logger zerolog.Logger, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &Pipeline{
		logger: logger.With().Str("component", "pipeline").Logger(),
		cfg:    cfg,
		open:   video.Open,
	}
	p.classifier = p.differencer

	executor, err := ffmpeg.New(logger, ffmpeg.Options{
		FFmpegPath:  cfg.Extract.FFmpegPath,
		FFprobePath: cfg.Extract.FFprobePath,
		Threads:     cfg.Extract.Threads,
		Timeout:     cfg.Extract.Timeout,
	})
	switch {
	case err == nil:
		p.ffmpeg = executor
		p.logger.Debug().
			Str("ffmpeg", executor.FFmpegPath()).
			Bool("ffprobe", executor.CanProbe()).
			Msg("using ffmpeg for cutting")
	case ffmpeg.IsNotFound(err):
		p.logger.Warn().Err(err).Msg("ffmpeg not found, falling back to OpenCV cutting")
	default:
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.cutter == nil {
		if p.ffmpeg != nil {
			c := extract.FFmpegCutter{Executor: p.ffmpeg}
			p.cutter = c
			if cfg.Extract.Concat {
				p.joiner = c
			}
		} else {
			p.cutter = extract.FrameCutter{}
		}
	}

	return p, nil
}

// differencer is the default ClassifierFunc.
func (p *Pipeline) differencer(info video.Info) frame.Classifier {
	regions := region.Build(info.Width, info.Height, p.cfg.Regions)
	d := frame.NewDifferencer(frame.Params{
		DifferenceThreshold: p.cfg.Detection.DifferenceThreshold,
		MinContourArea:      p.cfg.Detection.MinContourArea,
		BlurKernel:          p.cfg.Detection.BlurKernel,
	}, regions)
	p.logger.Debug().
		Int("width", info.Width).
		Int("height", info.Height).
		Int("masked_regions", len(d.Regions())).
		Msg("frame differencer ready")
	return d
}

// probedSource overrides the metadata reported by the container.
type probedSource struct {
	video.Source
	info video.Info
}

func (s probedSource) Info() video.Info {
	return s.info
}

// probe replaces fps and frame count with ffprobe values when available.
func (p *Pipeline) probe(ctx context.Context, path string, src video.Source, reporter progress.Reporter) video.Source {
	if p.ffmpeg == nil || !p.ffmpeg.CanProbe() {
		return src
	}

	probed, err := p.ffmpeg.Probe(ctx, path)
	if err != nil {
		reporter.Message(fmt.Sprintf("ffprobe failed, using container metadata: %v", err))
		return src
	}

	info := src.Info()
	if probed.FPS > 0 {
		info.FPS = probed.FPS
	}
	if probed.Duration > 0 && info.FPS > 0 {
		info.FrameCount = int(math.Round(probed.Duration * info.FPS))
	}
	return probedSource{Source: src, info: info}
}

// Process runs one video. The returned result is never nil; its Err is the
// returned error. Cancellation is not an error: the partial result is
// returned with Cancelled set.
func (p *Pipeline) Process(ctx context.Context, path string, reporter progress.Reporter) (*VideoResult, error) {
	result := &VideoResult{Path: path, StartedAt: time.Now()}
	logger := p.logger.With().Str("video", path).Logger()

	bar := progress.NewMonotonic(reporter)
	detectBar := progress.Reporter(bar)
	if p.split {
		detectBar = progress.Span(bar, 0, detectionShare)
	}

	p.touch(path)
	logger.Info().Bool("split", p.split).Msg("processing video")

	err := p.run(ctx, path, result, bar, detectBar)
	result.Err = err
	result.FinishedAt = time.Now()
	if result.RunID == uuid.Nil {
		result.RunID = uuid.Must(uuid.NewV4())
	}

	p.record(result)

	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int("segments", len(result.Segments)).
		Bool("cancelled", result.Cancelled()).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("video done")

	return result, err
}

func (p *Pipeline) run(ctx context.Context, path string, result *VideoResult, bar *progress.Monotonic, detectBar progress.Reporter) error {
	src, err := p.open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	src = p.probe(ctx, path, src, bar)
	info := src.Info()

	classifier := p.classifier(info)
	defer classifier.Close()

	sensor := motion.NewSensor(src, classifier, p.cfg.Detection.StaticDurationSeconds)
	sensor.SetReporter(detectBar)
	fps := sensor.Fps()
	result.FPS = fps

	detection, err := sensor.Detect(ctx, func(m *motion.Motion) {
		result.Reports = append(result.Reports, motion.NewMotionReport(m, fps))
	})
	if detection != nil {
		result.Detection = detection
		result.RunID = detection.RunID
	}
	if err != nil {
		return err
	}

	result.Segments = segment.Merge(detection.Segments, p.cfg.Segments.BufferSeconds)
	infos, total := segment.Summarize(segment.Segments(result.Segments))
	for _, i := range infos {
		bar.Message(fmt.Sprintf("segment %d: %s - %s (%s)", i.Index, i.Start, i.End, i.Duration))
	}
	bar.Message(fmt.Sprintf("%d segments, total %s", len(infos), total))

	if !p.split || detection.Cancelled {
		return nil
	}

	if p.joiner == nil && p.cfg.Extract.Concat {
		bar.Message("concatenation skipped: ffmpeg not available")
	}

	extractor := extract.New(p.cutter, extract.Options{
		OutputDir: p.cfg.Extract.OutputDir,
		Joiner:    p.joiner,
	})
	extractor.SetReporter(progress.Span(bar, detectionShare, 100))

	extraction, err := extractor.Extract(ctx, path, result.Segments)
	result.Extraction = extraction
	return err
}

func (p *Pipeline) touch(path string) {
	if p.history == nil {
		return
	}
	if err := p.history.Touch(path); err != nil {
		p.logger.Warn().Err(err).Str("video", path).Msg("failed to update recent videos")
	}
}

func (p *Pipeline) record(r *VideoResult) {
	if p.history == nil {
		return
	}

	run := history.Run{
		ID:         r.RunID.String(),
		Video:      r.Path,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		FPS:        r.FPS,
		Segments:   len(r.Segments),
		Cancelled:  r.Cancelled(),
	}
	if r.Detection != nil {
		run.Frames = r.Detection.Frames
	}
	if r.Extraction != nil {
		run.Clips = r.Extraction.Succeeded()
		run.Total = r.Extraction.Total
		run.Merged = r.Extraction.Merged
	}
	if r.Err != nil {
		run.Error = r.Err.Error()
	}

	if err := p.history.RecordRun(run); err != nil {
		p.logger.Warn().Err(err).Str("video", r.Path).Msg("failed to record run")
	}
}

// Batch processes paths with at most workers videos at once; workers <= 0
// uses the configured concurrency. Results are in the order of paths. A
// failing video only sets its own Err.
func (p *Pipeline) Batch(ctx context.Context, paths []string, workers int, reporterFor func(path string) progress.Reporter) []*VideoResult {
	if workers <= 0 {
		workers = p.cfg.Concurrency
	}
	if reporterFor == nil {
		reporterFor = func(string) progress.Reporter { return progress.Discard }
	}

	results := make([]*VideoResult, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = &VideoResult{Path: path, Err: ctx.Err()}
				return nil
			}
			results[i], _ = p.Process(ctx, path, reporterFor(path))
			return nil
		})
	}
	g.Wait()

	return results
}
