// Command pdfword converts PDF files to editable Word documents.
//
// Usage:
//
//	pdfword [flags] file.pdf [file.pdf ...]
//
// Settings come from --config, PDFWORD_* environment variables and flags,
// with flags winning. Run pdfword --help for the flag list.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/pdfword"
	"github.com/tsawler/pdfword/config"
	"github.com/tsawler/pdfword/ocr"
	"github.com/tsawler/pdfword/storage"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("pdfword", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", "", "YAML configuration file")
	fs.String("report", "", "write a YAML run report to this file (\"-\" for stdout)")
	fs.StringP("output-dir", "o", "output", "directory for converted documents")
	fs.String("temp-dir", "", "parent directory for scratch files")
	fs.StringP("converter", "c", "hybrid", "draft converter: libreoffice, basic or hybrid")
	fs.Duration("timeout", 0, "LibreOffice conversion timeout (default 5m)")
	fs.String("soffice", "", "path to the soffice binary")
	fs.Bool("tables", true, "rebuild tables from ruling lines")
	fs.Int("table-min-cells", 2, "smallest ruled grid, in cells, treated as a table")
	fs.Bool("images", true, "reinsert images")
	fs.Bool("alt-text", false, "describe images with OCR (needs a build with -tags ocr)")
	fs.Bool("headers", true, "detect repeating headers and footers")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "text", "text or json")
	fs.String("s3-bucket", "", "upload results to this S3 bucket")
	fs.String("s3-region", "us-east-1", "S3 region")
	fs.String("s3-endpoint", "", "S3-compatible endpoint URL")
	fs.String("s3-prefix", "", "object key prefix")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pdfword [flags] file.pdf [file.pdf ...]\n\n")
		fs.PrintDefaults()
	}
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfgPath, _ := fs.GetString("config")
	cfg, err := config.Load(cfgPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 2
	}
	logger := cfg.Log.NewLogger(stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := pdfword.FromConfig("", cfg).Logger(logger)

	if cfg.Images.AltText {
		describer, err := ocr.New(cfg.Images.OCRLanguage)
		if err != nil {
			logger.Warn("alt text disabled", "error", err)
		} else {
			defer describer.Close()
			base = base.AltText(describer)
		}
	}

	if cfg.Storage.S3.Bucket != "" {
		store, err := storage.NewS3Client(ctx, storage.S3Config{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Prefix:    cfg.Storage.S3.Prefix,
		})
		if err != nil {
			logger.Error("creating S3 client", "error", err)
			return 1
		}
		base = base.Upload(store, cfg.Storage.S3.Bucket, cfg.Storage.S3.Prefix)
	}

	var reports []*pdfword.Report
	failed := 0
	for _, input := range fs.Args() {
		report, warnings, err := base.Input(input).Convert(ctx)
		for _, w := range warnings {
			logger.Warn("conversion warning", "input", input, "warning", w.Error())
		}
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			logger.Error("conversion failed", "input", input, "error", err)
			failed++
			continue
		}
		fmt.Fprintln(stdout, report.Output)
	}

	if path, _ := fs.GetString("report"); path != "" {
		if err := writeReport(path, stdout, reports); err != nil {
			logger.Error("writing report", "path", path, "error", err)
			return 1
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func writeReport(path string, stdout io.Writer, reports []*pdfword.Report) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return err
	}
	return enc.Close()
}
