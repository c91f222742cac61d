package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Drafts are ephemeral by contract; anything this old belongs to an
// abandoned editing context.
const draftRetention = 30 * 24 * time.Hour

type JanitorDraftStore interface {
	DeleteUpdatedBefore(cutoff time.Time) (int64, error)
}

// DraftJanitor sweeps stale drafts on a nightly schedule.
type DraftJanitor struct {
	drafts    JanitorDraftStore
	scheduler *cron.Cron
}

func NewDraftJanitor(drafts JanitorDraftStore, location *time.Location) *DraftJanitor {
	return &DraftJanitor{
		drafts:    drafts,
		scheduler: cron.New(cron.WithLocation(location)),
	}
}

func (janitor *DraftJanitor) Start() error {
	if _, err := janitor.scheduler.AddFunc("30 3 * * *", janitor.Sweep); err != nil {
		return err
	}
	janitor.scheduler.Start()
	return nil
}

func (janitor *DraftJanitor) Stop() {
	janitor.scheduler.Stop()
}

func (janitor *DraftJanitor) Sweep() {
	cutoff := time.Now().Add(-draftRetention)
	removed, err := janitor.drafts.DeleteUpdatedBefore(cutoff)
	if err != nil {
		log.Printf("draft sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("draft sweep removed %d stale draft(s)", removed)
	}
}
