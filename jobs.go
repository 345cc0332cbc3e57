package invkeeper

import (
	"context"
	"time"
)

func (k *Keeper) runJobs(refreshInterval time.Duration) {
	if refreshInterval <= 0 {
		return
	}
	if _, err := k.scheduler.Every(refreshInterval).SingletonMode().Do(k.refreshObject); err != nil {
		log.Error("schedule refresh job", "err", err)
		return
	}
	k.scheduler.StartAsync()
}

func (k *Keeper) refreshObject() {
	// an action in flight refreshes on its own once settled
	if k.coordinator.View().State.Loading {
		return
	}
	if err := k.coordinator.Refresh(context.Background()); err != nil {
		log.Warn("k.coordinator.Refresh()", "err", err)
	}
}
