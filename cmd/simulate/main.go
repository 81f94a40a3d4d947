// Command simulate generates synthetic clickstream data: a one-shot seed
// file, or a continuous append loop that feeds the report refresher during
// development.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"funnelpulse/api/csvio"
	"funnelpulse/api/simdata"
)

func main() {
	var (
		sessions   = flag.Int("sessions", 500, "number of sessions for the initial data set")
		batchSize  = flag.Int("batch-size", 5, "sessions generated per batch in continuous mode")
		interval   = flag.Duration("interval", 10*time.Second, "delay between batches in continuous mode")
		out        = flag.String("out", "clickstream_data.csv", "output CSV file")
		continuous = flag.Bool("continuous", false, "keep appending batches until interrupted")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	gen := simdata.New(*seed)

	// Seed the file only when it does not exist yet, so restarts keep
	// accumulated data.
	if _, err := os.Stat(*out); os.IsNotExist(err) {
		events := gen.Sessions(*sessions)
		if err := csvio.WriteEvents(*out, events); err != nil {
			log.Fatalf("Failed to write clickstream data: %v", err)
		}
		log.Printf("Generated %d events across %d sessions into %s", len(events), *sessions, *out)
	} else {
		log.Printf("%s already exists, skipping initial generation", *out)
	}

	if !*continuous {
		return
	}

	log.Printf("Appending %d sessions every %s (Ctrl-C to stop)...", *batchSize, *interval)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			log.Println("Data generation stopped.")
			return
		case <-ticker.C:
			events := gen.Sessions(*batchSize)
			if err := csvio.AppendEvents(*out, events); err != nil {
				log.Printf("Failed to append clickstream batch: %v", err)
				continue
			}
			log.Printf("Added %d new events across %d sessions", len(events), *batchSize)
		}
	}
}
