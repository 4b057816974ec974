package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	reconcile "github.com/icarus-exp/hitrecon_go/pkg"
)

type WorkerData struct {
	Index   int
	Header  reconcile.RecordHeaderStruct
	Payload []byte
}

type WorkerResult struct {
	Index int
	Event reconcile.EventRecord
}

func worker(id int, jobs <-chan WorkerData, results chan<- WorkerResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for job := range jobs {
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Worker %d decoding event %d", id, job.Header.EventId)
			logger.Info(message, "workers")
		}
		results <- WorkerResult{Index: job.Index, Event: decodeEventSafe(job)}
	}
}

func decodeEventSafe(job WorkerData) (event reconcile.EventRecord) {
	defer func() {
		if r := recover(); r != nil {
			errMessage := fmt.Errorf("decoder recovered from panic on event %d: %v", job.Header.EventId, r)
			logger.Error(errMessage.Error())
			event = reconcile.EventRecord{EventID: job.Header.EventId, Error: true}
		}
	}()

	event, err := reconcile.DecodeRecord(job.Header, job.Payload)
	if err != nil {
		message := fmt.Errorf("error decoding event %d: %w", job.Header.EventId, err)
		logger.Error(message.Error())
		event.Error = true
	}
	return event
}

func sendEventsToWorkers(fileReader *reconcile.FileReader, jobs chan<- WorkerData) {
	index := 0
	for {
		header, payload, err := fileReader.NextRaw()
		if err != nil {
			if err != io.EOF {
				message := fmt.Errorf("error reading event: %w", err)
				logger.Error(message.Error())
			}
			break
		}
		jobs <- WorkerData{Index: index, Header: header, Payload: payload}
		index++
	}
	close(jobs)
}

// decodeParallel distributes record decoding over the worker pool and
// returns the decoded events back in file order. Reconciliation itself
// stays sequential; only the byte unpacking is parallel.
func decodeParallel(fileReader *reconcile.FileReader, numWorkers int) []reconcile.EventRecord {
	jobs := make(chan WorkerData, numWorkers)
	results := make(chan WorkerResult, 1000)

	var wg sync.WaitGroup
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go worker(w, jobs, results, &wg)
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	go sendEventsToWorkers(fileReader, jobs)

	decoded := make(map[int]reconcile.EventRecord)
	maxIndex := -1
	for result := range results {
		decoded[result.Index] = result.Event
		if result.Index > maxIndex {
			maxIndex = result.Index
		}
	}

	events := make([]reconcile.EventRecord, maxIndex+1)
	for i := range events {
		events[i] = decoded[i]
	}
	return events
}

func decodeSequential(fileReader *reconcile.FileReader) []reconcile.EventRecord {
	events := make([]reconcile.EventRecord, 0)
	for {
		event, err := fileReader.NextEvent()
		if err != nil {
			if err == io.EOF {
				break
			}
			var badRecord *reconcile.ErrBadRecord
			if errors.As(err, &badRecord) {
				logger.Error(err.Error())
				events = append(events, reconcile.EventRecord{EventID: badRecord.EventID, Error: true})
				continue
			}
			message := fmt.Errorf("error reading event: %w", err)
			logger.Error(message.Error())
			break
		}
		events = append(events, event)
	}
	return events
}
