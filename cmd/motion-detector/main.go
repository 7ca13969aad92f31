package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kmmndr/motioncut/internal/config"
	"github.com/kmmndr/motioncut/internal/frame"
	"github.com/kmmndr/motioncut/internal/logging"
	"github.com/kmmndr/motioncut/internal/motion"
	"github.com/kmmndr/motioncut/internal/region"
	"github.com/kmmndr/motioncut/internal/timecode"
	"github.com/kmmndr/motioncut/internal/video"
)

func main() {
	defaults := config.Default()

	var videoPath string
	var device string
	var threshold int
	var minArea int
	var static float64
	var printMotion bool
	var verbose bool

	flag.IntVar(&threshold, "threshold", defaults.Detection.DifferenceThreshold, "Pixel difference threshold")
	flag.IntVar(&minArea, "min-area", defaults.Detection.MinContourArea, "Minimum changed area in pixels")
	flag.Float64Var(&static, "static", defaults.Detection.StaticDurationSeconds, "Seconds without motion ending a segment")
	flag.StringVar(&videoPath, "video", "", "Video filename")
	flag.StringVar(&device, "device", "", "Capture device number or stream url")
	flag.BoolVar(&printMotion, "print", false, "print motion reports as JSON")
	flag.BoolVar(&verbose, "v", false, "verbose output")
	flag.Parse()

	if videoPath == "" && device == "" {
		fmt.Println("Error: missing video filename or device option")
		os.Exit(1)
	}

	logging.Init(verbose)
	logger := logging.WithComponent("motion-detector")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var stream *video.Stream
	var err error
	if device != "" {
		stream, err = video.NewDeviceStream(device)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to open video device")
		}
	} else {
		stream, err = video.NewFileStream(videoPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("unable to open video file")
		}
	}
	defer stream.Close()

	info := stream.Info()
	regions := region.Build(info.Width, info.Height, defaults.Regions)
	differencer := frame.NewDifferencer(frame.Params{
		DifferenceThreshold: threshold,
		MinContourArea:      minArea,
	}, regions)
	defer differencer.Close()
	for _, r := range differencer.Regions() {
		logger.Debug().Int("x", r.X).Int("y", r.Y).Int("width", r.Width).Int("height", r.Height).Msg("masked region")
	}

	sensor := motion.NewSensor(stream, differencer, static)
	sensor.SetReporter(logging.Reporter(logger))
	fps := sensor.Fps()

	enc := json.NewEncoder(os.Stdout)
	result, err := sensor.Detect(ctx, func(detectedMotion *motion.Motion) {
		seg := detectedMotion.Segment()
		fmt.Printf("Motion from %s to %s.\n", timecode.Clock(seg.Start), timecode.Clock(seg.End))
		if printMotion {
			if err := enc.Encode(motion.NewMotionReport(detectedMotion, fps)); err != nil {
				logger.Error().Err(err).Msg("unable to encode motion report")
			}
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("detection failed")
	}

	if result.Cancelled {
		fmt.Println("Interrupted, partial result.")
	}
	fmt.Printf("%d motions in %d frames (%d skipped).\n", len(result.Segments), result.Frames, result.Skipped)
}
