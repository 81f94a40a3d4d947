// api/scheduler/refresher.go
package scheduler

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"funnelpulse/api/csvio"
	"funnelpulse/api/funnel"
	"funnelpulse/api/models"
	"funnelpulse/api/utils"
)

// Report file names, matching what the dashboard polls for.
const (
	FunnelReportFile     = "ecommerce_funnel_analysis.csv"
	BottleneckReportFile = "ecommerce_bottleneck_analysis.csv"
	DeviceReportFile     = "ecommerce_device_analysis.csv"
	TrafficReportFile    = "ecommerce_traffic_source_analysis.csv"
)

// EventFetcher supplies an immutable event snapshot for one processing pass.
type EventFetcher interface {
	FetchEvents(ctx context.Context, window *funnel.Window) ([]models.Event, error)
}

// ReportSaver archives the computed funnel rows. Optional.
type ReportSaver interface {
	SaveFunnelReport(ctx context.Context, computedAt time.Time, rows []models.FunnelResult) error
}

// Refresher periodically recomputes all reports over a fresh snapshot and
// exports them. Batch recomputation only; the engine itself carries no
// loops, timers or cancellation.
type Refresher struct {
	fetcher  EventFetcher
	saver    ReportSaver
	stages   []funnel.Stage
	outDir   string
	interval time.Duration
}

func NewRefresher(fetcher EventFetcher, saver ReportSaver, stages []funnel.Stage, outDir string, interval time.Duration) *Refresher {
	return &Refresher{
		fetcher:  fetcher,
		saver:    saver,
		stages:   stages,
		outDir:   outDir,
		interval: interval,
	}
}

// Run processes immediately, then on the configured cadence until the
// context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	log.Printf("Report refresher started (every %s)", r.interval)

	if err := r.ProcessOnce(ctx); err != nil {
		log.Printf("Report processing pass failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Report refresher stopped.")
			return
		case <-ticker.C:
			if err := r.ProcessOnce(ctx); err != nil {
				log.Printf("Report processing pass failed: %v", err)
			}
		}
	}
}

// ProcessOnce runs one full recomputation: funnel, bottlenecks and both
// segment breakdowns, then exports CSVs and archives the funnel rows.
func (r *Refresher) ProcessOnce(ctx context.Context) error {
	events, err := r.fetcher.FetchEvents(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to fetch event snapshot: %w", err)
	}

	results, err := funnel.ComputeFunnel(events, r.stages, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to compute funnel: %w", err)
	}
	bottlenecks := funnel.ComputeBottlenecks(results)

	// The segment passes are independent read-only reductions over the same
	// immutable snapshot, so they run in parallel.
	var (
		wg          sync.WaitGroup
		deviceRows  []models.SegmentRow
		trafficRows []models.SegmentRow
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		deviceRows = funnel.ComputeSegmentConversion(events, funnel.DeviceKey, funnel.PurchaseMatcher)
	}()
	go func() {
		defer wg.Done()
		trafficRows = funnel.ComputeSegmentConversion(events, funnel.TrafficSourceKey, funnel.PurchaseMatcher)
	}()
	wg.Wait()

	if r.outDir != "" {
		if err := r.export(results, bottlenecks, deviceRows, trafficRows); err != nil {
			return err
		}
	}
	if r.saver != nil {
		if err := r.saver.SaveFunnelReport(ctx, time.Now().UTC(), results); err != nil {
			return fmt.Errorf("failed to archive funnel report: %w", err)
		}
	}

	r.logSummary(events, results, bottlenecks)
	return nil
}

func (r *Refresher) export(results []models.FunnelResult, bottlenecks []models.BottleneckRow, deviceRows, trafficRows []models.SegmentRow) error {
	if err := csvio.WriteFunnelReport(filepath.Join(r.outDir, FunnelReportFile), results); err != nil {
		return err
	}
	if err := csvio.WriteBottleneckReport(filepath.Join(r.outDir, BottleneckReportFile), bottlenecks); err != nil {
		return err
	}
	if err := csvio.WriteSegmentReport(filepath.Join(r.outDir, DeviceReportFile), deviceRows); err != nil {
		return err
	}
	if err := csvio.WriteSegmentReport(filepath.Join(r.outDir, TrafficReportFile), trafficRows); err != nil {
		return err
	}
	return nil
}

func (r *Refresher) logSummary(events []models.Event, results []models.FunnelResult, bottlenecks []models.BottleneckRow) {
	conversion := 0.0
	if len(results) > 0 {
		conversion = results[len(results)-1].ConversionRateFromStart
	}
	log.Printf("Report pass complete: %d events, %d sessions, %s overall conversion",
		len(events), funnel.CountSessions(events), utils.FormatPercent(conversion))

	for i, row := range bottlenecks {
		if i == 3 {
			break
		}
		log.Printf("Bottleneck: %s: %s drop-off (%s severity)",
			row.Transition, utils.FormatPercent(row.DropRate), row.Severity)
	}
}
