package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/categorize"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/logger"
	"github.com/insightdelivered/statement-extractor/internal/parser"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/profile"
	"github.com/insightdelivered/statement-extractor/internal/store"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "2.0.0"

func main() {
	// CLI flags
	configFlag := flag.String("config", "", "Path to a YAML config file")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API instead of converting files")
	outputFlag := flag.String("output", "", "Output CSV file path (single input only; defaults to input filename with .csv extension)")
	headerFlag := flag.Bool("header", true, "Include document metadata header rows in CSV")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Bank Statement Transaction Extractor
by Insight Delivered

Extracts transactions from bank statement PDFs, CSV exports and plain-text
statements. Tables are read first; free-text lines are the fallback.

Usage:
  statement-extractor [flags] <statement> [statement2 ...]
  statement-extractor -serve [-config=config.yaml]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert a statement to CSV
  statement-extractor november.pdf

  # Custom output path
  statement-extractor --output=transactions.csv november.pdf

  # Convert multiple files
  statement-extractor jan.pdf feb.csv mar.txt

  # Run the web API
  statement-extractor -serve -config=config.yaml
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (!*serveFlag && flag.NArg() == 0) {
		flag.Usage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fatalf("Invalid configuration: %v\n", err)
	}

	log := logger.New().Level(logger.ParseLevel(cfg.LogLevel))

	reader := extractor.Reader{
		IsHeader:         parser.IsHeaderRow,
		DisablePdftotext: cfg.DisablePdftotext,
	}
	categorizer := loadCategorizer(cfg.CategoriesPath, log)

	if *serveFlag {
		if err := serve(cfg, reader, categorizer, log); err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
		return
	}

	inputFiles := flag.Args()
	if *outputFlag != "" && len(inputFiles) > 1 {
		fatalf("--output can only be used with a single input file\n")
	}

	ctx := logger.WithContext(context.Background(), log)
	processor := pipeline.NewProcessor(reader)

	// Process each input file
	failed := false
	for _, inputPath := range inputFiles {
		if err := processFile(ctx, processor, categorizer, inputPath, *outputFlag, *headerFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func processFile(ctx context.Context, processor *pipeline.Processor, categorizer *categorize.Categorizer,
	inputPath, outputPath string, includeHeader bool) error {
	// Validate input file
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if !extractor.Supported(inputPath) {
		return fmt.Errorf("expected one of %s, got %q",
			strings.Join(extractor.SupportedExtensions, ", "), filepath.Ext(inputPath))
	}

	fmt.Printf("Processing: %s\n", inputPath)

	result := processor.Process(ctx, pipeline.Document{Path: inputPath})
	if !result.Succeeded {
		fmt.Println("  Warning: No transactions found. The document layout may not match expected patterns.")
		return errors.New(result.Error)
	}
	result.Transactions = categorizer.Apply(result.Transactions)

	fmt.Printf("  Found %d transaction(s) using the %s method\n", result.Count, result.Method)

	// Determine output path
	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + ".csv"
	}
	if filepath.Clean(outPath) == filepath.Clean(inputPath) {
		return fmt.Errorf("output %s would overwrite the input", outPath)
	}

	w := &writer.CSVWriter{IncludeHeader: includeHeader}
	if err := w.WriteToFile(outPath, result); err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}

	fmt.Printf("  Output: %s\n", outPath)
	fmt.Println("  Done.")
	return nil
}

// loadCategorizer reads the category file, falling back to the built-in set
// when it is missing.
func loadCategorizer(path string, log zerolog.Logger) *categorize.Categorizer {
	if path == "" {
		return categorize.Default()
	}
	c, err := categorize.Load(path)
	switch {
	case err == nil:
		return c
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", path).Msg("Category file not found, using built-in categories")
		return categorize.Default()
	default:
		log.Fatal().Err(err).Msg("Failed to load categories")
		return nil
	}
}

func serve(cfg *config.Config, reader extractor.Reader, categorizer *categorize.Categorizer, log zerolog.Logger) error {
	ctx := context.Background()

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	prof, err := profile.Open(cfg.ProfilePath)
	if err != nil {
		return err
	}

	if cfg.UploadDir != "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
	}

	ingester := pipeline.NewIngester(pipeline.NewProcessor(reader), categorizer, st, prof)
	app := api.NewApp(&api.Handler{
		Ingester:     ingester,
		Transactions: st,
		Profile:      prof,
		Categorizer:  categorizer,
		Log:          log,
		UploadDir:    cfg.UploadDir,
		StaticDir:    cfg.StaticDir,
		Version:      version,
	}, api.Options{BodyLimit: cfg.MaxUploadBytes()})

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	errChan := make(chan error, 1)

	go func() {
		log.Info().Str("listen", cfg.Listen).Str("version", version).Msg("Starting HTTP server")
		errChan <- app.Listen(cfg.Listen)
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
