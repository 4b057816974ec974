package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	reconcile "github.com/icarus-exp/hitrecon_go/pkg"
)

var configuration reconcile.Configuration
var logger Logger

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

// wiredump renders the raw-vs-model trace of a single channel from a single
// event and writes it out on its own, without running the reconciliation.
func main() {
	input := flag.String("input", "", "Input event file")
	output := flag.String("output", "overlay.h5", "Output HDF5 file")
	run := flag.Int("run", 0, "Run number to match (0 matches any run)")
	event := flag.Int("event", -1, "Event number to dump")
	channel := flag.Int("channel", 0, "Channel to render")
	lowTick := flag.Int("low", 0, "First tick of the window")
	highTick := flag.Int("high", 0, "Last tick of the window (0 derives the window from the waveform)")
	verbosity := flag.Int("verbosity", 1, "Verbosity level")
	flag.Parse()

	configuration.MaxEvents = 1000000000
	configuration.Verbosity = *verbosity
	configuration.FileIn = *input
	configuration.FileOut = *output
	reconcile.SetConfiguration(configuration)
	reconcile.SetLogger(logger)

	file, err := os.Open(*input)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	record, found := findEvent(file, *run, *event)
	if !found {
		message := fmt.Sprintf("Event %d not found in %s", *event, *input)
		logger.Error(message)
		return
	}

	low := *lowTick
	high := *highTick
	if high <= low {
		wf, err := reconcile.FindWaveform(uint32(*channel), record.Waveforms)
		if err != nil {
			logger.Error(err.Error())
			return
		}
		low = int(wf.TickStart)
		high = low + len(wf.Samples)
	}

	// Pulse models from every partition overlay onto the same channel.
	hits := make([]reconcile.Hit, 0)
	for sd := reconcile.SubDetectorWW; sd < reconcile.NSubDetectors; sd++ {
		hits = append(hits, record.Hits[sd]...)
	}

	raw, model, err := reconcile.WireModel(uint32(*channel), record.Waveforms, hits, low, high)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	overlay := &reconcile.WireOverlay{
		Channel: uint32(*channel),
		LowTick: low,
		Raw:     raw,
		Model:   model,
	}

	writer, err := reconcile.NewWriter(*output)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	defer writer.Close()

	if err := writer.WriteRunInfo(record.RunNumber); err != nil {
		logger.Error(err.Error())
		return
	}
	if err := writer.WriteEventInfo(&record); err != nil {
		logger.Error(err.Error())
		return
	}
	if err := writer.WriteOverlay(overlay); err != nil {
		logger.Error(err.Error())
		return
	}

	message := fmt.Sprintf("Wrote overlay for channel %d, event %d, ticks [%d, %d) to %s",
		*channel, record.EventID, low, high, *output)
	logger.Info(message, "main")
}

func findEvent(file *os.File, run int, event int) (reconcile.EventRecord, bool) {
	fileReader := reconcile.NewFileReader(file)
	for {
		record, err := fileReader.NextEvent()
		if err != nil {
			if err == io.EOF {
				return reconcile.EventRecord{}, false
			}
			var badRecord *reconcile.ErrBadRecord
			if errors.As(err, &badRecord) {
				logger.Error(err.Error())
				continue
			}
			logger.Error(err.Error())
			return reconcile.EventRecord{}, false
		}
		if run != 0 && int(record.RunNumber) != run {
			continue
		}
		if int(record.EventID) == event {
			return record, true
		}
	}
}
