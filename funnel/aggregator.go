// api/funnel/aggregator.go
//
// The aggregation core is pure and stateless: every call is a deterministic
// function of an immutable event snapshot. Callers may run multiple passes
// over the same snapshot concurrently as long as the snapshot itself is not
// mutated while in use.
package funnel

import (
	"time"

	"funnelpulse/api/models"
)

// Window is a half-open [Start, End) time range used to restrict
// aggregation to a slice of the event snapshot.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Predicate restricts aggregation to a subset of events, e.g. one device
// type or traffic source.
type Predicate func(models.Event) bool

// DeviceIs returns a predicate matching events from one device type.
func DeviceIs(device string) Predicate {
	return func(e models.Event) bool { return e.Device == device }
}

// TrafficSourceIs returns a predicate matching events from one traffic source.
func TrafficSourceIs(source string) Predicate {
	return func(e models.Event) bool { return e.TrafficSource == source }
}

// ComputeFunnel derives one FunnelResult row per stage from an unordered
// event collection. A session counts toward a stage if any of its events
// matches the stage's (page, action) pair; this is a presence test, not a
// strict-ordering test, so counts are not guaranteed monotonic across
// stages. An empty event set yields all-zero rows, not an error.
func ComputeFunnel(events []models.Event, stages []Stage, window *Window, pred Predicate) ([]models.FunnelResult, error) {
	if err := ValidateStages(stages); err != nil {
		return nil, err
	}

	sessions := make(map[string]struct{})
	stageSessions := make([]map[string]struct{}, len(stages))
	for i := range stageSessions {
		stageSessions[i] = make(map[string]struct{})
	}

	for _, e := range events {
		if window != nil && !window.Contains(e.Timestamp) {
			continue
		}
		if pred != nil && !pred(e) {
			continue
		}
		sessions[e.SessionID] = struct{}{}
		for i := range stages {
			if stages[i].Matches(e) {
				stageSessions[i][e.SessionID] = struct{}{}
			}
		}
	}

	totalSessions := uint64(len(sessions))
	results := make([]models.FunnelResult, len(stages))
	for i, stage := range stages {
		count := uint64(len(stageSessions[i]))
		var conversion float64
		if totalSessions > 0 {
			conversion = float64(count) / float64(totalSessions)
		}
		results[i] = models.FunnelResult{
			StageLabel:              stage.Label,
			SessionCount:            count,
			ConversionRateFromStart: conversion,
		}
	}
	for i := 0; i < len(results)-1; i++ {
		rate := dropRate(results[i].SessionCount, results[i+1].SessionCount)
		results[i].DropRateToNext = &rate
	}
	return results, nil
}

// CountSessions returns the number of distinct sessions in the event set.
func CountSessions(events []models.Event) uint64 {
	sessions := make(map[string]struct{}, len(events))
	for _, e := range events {
		sessions[e.SessionID] = struct{}{}
	}
	return uint64(len(sessions))
}

// dropRate is the fraction of sessions at the current stage absent from the
// next one. Clamped to 0 when the current stage is empty; negative when the
// next stage gained sessions.
func dropRate(current, next uint64) float64 {
	if current == 0 {
		return 0
	}
	return (float64(current) - float64(next)) / float64(current)
}
