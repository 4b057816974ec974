package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	sqlx "github.com/jmoiron/sqlx"

	reconcile "github.com/icarus-exp/hitrecon_go/pkg"
)

var dbConn *sqlx.DB
var configuration reconcile.Configuration

var (
	logger         Logger
	VerbosityLevel int
	DiscardErrors  bool
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = reconcile.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	reconcile.SetConfiguration(configuration)
	reconcile.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	DiscardErrors = configuration.Discard
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		reconcile.PrintConfiguration(configuration, logger)
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	evtCount, runNumber := reconcile.CountEvents(file)
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d (run %d)", evtCount, runNumber)
		logger.Info(message, "main")
	}

	geometry, err := loadGeometry(int(runNumber))
	if err != nil {
		logger.Error(err.Error())
		return
	}

	fileReader := reconcile.NewFileReader(file)

	start := time.Now()
	var events []reconcile.EventRecord
	if configuration.Parallel && configuration.NumWorkers > 1 {
		events = decodeParallel(fileReader, configuration.NumWorkers)
	} else {
		events = decodeSequential(fileReader)
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Total events decoded: %d", len(events))
		logger.Info(message, "main")
	}

	var writer *reconcile.Writer
	if configuration.WriteData {
		writer, err = reconcile.NewWriter(configuration.FileOut)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		defer writer.Close()
		if err := writer.WriteRunInfo(runNumber); err != nil {
			logger.Error(err.Error())
			return
		}
	}

	book := reconcile.NewHistogramBook()
	totals := reconcile.NewRunTotals()
	driver := reconcile.NewDriver(geometry, book, totals)

	// Folding is strictly sequential and in event order: one event either
	// folds completely into the running totals or is skipped completely.
	for i := range events {
		event := &events[i]
		if event.Error {
			if !DiscardErrors {
				message := fmt.Sprintf("aborting on undecodable event %d", event.EventID)
				logger.Error(message)
				return
			}
			message := fmt.Sprintf("discarding event %d", event.EventID)
			logger.Error(message)
			continue
		}
		if err := driver.ProcessEvent(event); err != nil {
			message := fmt.Errorf("aborting, event %d corrupted the association list: %w", event.EventID, err)
			logger.Error(message.Error())
			return
		}
		if writer != nil {
			if err := writer.WriteEventInfo(event); err != nil {
				logger.Error(err.Error())
				return
			}
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Processed event %d", event.EventID)
			logger.Info(message, "main")
		}
	}

	if writer != nil {
		if err := writer.WriteBook(book); err != nil {
			logger.Error(err.Error())
			return
		}
		if driver.Overlay != nil {
			if err := writer.WriteOverlay(driver.Overlay); err != nil {
				logger.Error(err.Error())
				return
			}
		}
		if err := writer.WriteSummary(totals.Summarize()); err != nil {
			logger.Error(err.Error())
			return
		}
	}

	reconcile.PrintSummary(totals, logger)

	duration := time.Since(start)
	message := fmt.Sprintf("Events folded: %d of %d. Total time: %d ms",
		totals.Folded, totals.Events, duration.Milliseconds())
	logger.Info(message, "main")
}

func loadGeometry(runNumber int) (*reconcile.Geometry, error) {
	if configuration.NoDB {
		return reconcile.NewGeometry(), nil
	}

	var err error
	dbConn, err = reconcile.ConnectToDatabase(configuration.User, configuration.Passwd, configuration.Host, configuration.DBName)
	if err != nil {
		return nil, fmt.Errorf("Error connecting to database: %w", err)
	}
	defer dbConn.Close()

	geometry, err := reconcile.LoadGeometryFromDB(dbConn, runNumber)
	if err != nil {
		return nil, fmt.Errorf("Error loading channel map: %w", err)
	}
	return geometry, nil
}
