package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/alibestprice/price-bot/internal/models"
	"github.com/alibestprice/price-bot/internal/repo/blobstore"
	"github.com/carousell/ct-go/pkg/logger"
)

const (
	blobEvents     = "user_actions"
	blobCounts     = "action_counts"
	blobLastActive = "user_last_active"
)

// telemetryUsecase keeps usage counters in memory and flushes them to
// the blob store every flushEvery recorded events, plus once on
// shutdown. The three blobs are written independently; a crash between
// writes can leave them mutually inconsistent on disk, which we accept.
type telemetryUsecase struct {
	store      blobstore.Store
	flushEvery int
	log        *logger.Logger

	mu         sync.Mutex
	events     []models.UsageEvent
	counts     map[models.ActionType]int
	lastActive map[int64]int64

	now        func() time.Time
	asyncFlush func(fn func())
}

func NewTelemetryUsecase(conf *config.Config, store blobstore.Store) (TelemetryUsecase, error) {
	uc := &telemetryUsecase{
		store:      store,
		flushEvery: conf.Telemetry.FlushEvery,
		log:        logger.MustNamed("telemetry"),
		counts:     map[models.ActionType]int{},
		lastActive: map[int64]int64{},
		now:        time.Now,
		asyncFlush: func(fn func()) { go fn() },
	}

	if err := uc.load(); err != nil {
		return nil, err
	}
	return uc, nil
}

// load restores persisted state. Missing blobs are fine; each piece
// defaults to empty.
func (uc *telemetryUsecase) load() error {
	if _, err := uc.store.Load(blobEvents, &uc.events); err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if _, err := uc.store.Load(blobCounts, &uc.counts); err != nil {
		return fmt.Errorf("load counts: %w", err)
	}
	if _, err := uc.store.Load(blobLastActive, &uc.lastActive); err != nil {
		return fmt.Errorf("load last active: %w", err)
	}
	return nil
}

func (uc *telemetryUsecase) RecordEvent(userID int64, action models.ActionType) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	ts := uc.now().Unix()
	uc.events = append(uc.events, models.UsageEvent{
		UserID:     userID,
		ActionType: action,
		Timestamp:  ts,
	})
	uc.counts[action]++
	uc.lastActive[userID] = ts

	if len(uc.events)%uc.flushEvery == 0 {
		// Keep slow disk writes off the conversation path.
		snap := uc.snapshotLocked()
		uc.asyncFlush(func() {
			if err := uc.save(snap); err != nil {
				uc.log.Errorw("telemetry flush failed", "error", err)
			}
		})
	}
}

func (uc *telemetryUsecase) Statistics() models.Statistics {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now().Unix()
	dayAgo := now - 86400
	weekAgo := now - 604800

	stats := models.Statistics{
		TotalUsers:            len(uc.lastActive),
		TotalRequests:         uc.counts[models.ActionMessageReceived],
		SuccessfulConversions: uc.counts[models.ActionLinkProcessed],
		FailedConversions:     uc.counts[models.ActionProductNotFound] + uc.counts[models.ActionErrorProcessing],
	}
	for _, ts := range uc.lastActive {
		if ts >= dayAgo {
			stats.ActiveToday++
		}
		if ts >= weekAgo {
			stats.ActiveThisWeek++
		}
	}
	return stats
}

func (uc *telemetryUsecase) Flush() error {
	uc.mu.Lock()
	snap := uc.snapshotLocked()
	uc.mu.Unlock()

	return uc.save(snap)
}

type telemetrySnapshot struct {
	events     []models.UsageEvent
	counts     map[models.ActionType]int
	lastActive map[int64]int64
}

func (uc *telemetryUsecase) snapshotLocked() telemetrySnapshot {
	snap := telemetrySnapshot{
		events:     make([]models.UsageEvent, len(uc.events)),
		counts:     make(map[models.ActionType]int, len(uc.counts)),
		lastActive: make(map[int64]int64, len(uc.lastActive)),
	}
	copy(snap.events, uc.events)
	for k, v := range uc.counts {
		snap.counts[k] = v
	}
	for k, v := range uc.lastActive {
		snap.lastActive[k] = v
	}
	return snap
}

// save writes the three blobs as independent writes; it keeps going on
// partial failure so one bad blob does not lose the others.
func (uc *telemetryUsecase) save(snap telemetrySnapshot) error {
	return errors.Join(
		uc.store.Save(blobEvents, snap.events),
		uc.store.Save(blobCounts, snap.counts),
		uc.store.Save(blobLastActive, snap.lastActive),
	)
}
