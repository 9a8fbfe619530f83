// Command blankpng writes a uniformly filled grayscale image.
//
// With no flags it writes an 8000x4000 black PNG to image.png.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/blankpng"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code:
// 0 on success, 1 on any failure, 2 on bad flags.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("blankpng", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		width       = fs.Int("width", blankpng.DefaultWidth, "image width")
		height      = fs.Int("height", blankpng.DefaultHeight, "image height")
		fill        = fs.Uint("fill", 0, "sample value 0-255 (0 is black)")
		output      = fs.String("output", blankpng.DefaultPath, "output file")
		format      = fs.String("format", "png", "output format: png, tiff or bmp")
		compression = fs.String("compression", "default", "png compression: default, none, speed or best")
		thumbnail   = fs.String("thumbnail", "", "also write a downscaled PNG preview to this file")
		thumbScale  = fs.Int("thumbnail-scale", blankpng.DefaultThumbnailScale, "thumbnail downscale divisor")
		verify      = fs.Bool("verify", false, "decode the output and check it after writing")
		verbose     = fs.Bool("v", false, "log each step to stderr")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", fs.Args())
		fs.Usage()
		return 2
	}

	if *verbose {
		blankpng.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		defer blankpng.SetLogger(nil)
	}

	cfg := blankpng.DefaultConfig()
	cfg.Width = *width
	cfg.Height = *height
	cfg.Path = *output
	cfg.Thumbnail = *thumbnail
	cfg.ThumbnailScale = *thumbScale

	if *fill > 255 {
		fmt.Fprintf(stderr, "Error validating configuration: fill %d out of range 0-255\n", *fill)
		return 1
	}
	cfg.Fill = uint8(*fill)

	var err error
	if cfg.Format, err = blankpng.ParseFormat(*format); err != nil {
		report(stderr, err)
		return 1
	}
	if cfg.Compression, err = blankpng.ParseCompression(*compression); err != nil {
		report(stderr, err)
		return 1
	}

	res, err := blankpng.Render(cfg)
	if err != nil {
		report(stderr, err)
		return 1
	}
	if *verify {
		if err := blankpng.Verify(cfg); err != nil {
			report(stderr, err)
			return 1
		}
	}

	fmt.Fprintf(stdout, "Image saved as %s\n", res.Path)
	if res.Thumbnail != "" {
		fmt.Fprintf(stdout, "Thumbnail saved as %s\n", res.Thumbnail)
	}
	if *verbose {
		p := message.NewPrinter(language.English)
		blankpng.Logger().Info("summary", "text", p.Sprintf("%d x %d pixels, %d bytes written in %v",
			res.Width, res.Height, res.Bytes, res.Elapsed))
	}
	return 0
}

// report prints err as "Error <step>: <cause>".
func report(w io.Writer, err error) {
	var se *blankpng.StepError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "Error %s: %v\n", se.Step, se.Err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
