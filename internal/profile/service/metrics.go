package service

import (
	"github.com/driftchat/backend/internal/observability/metrics"
)

func incrementProfileUpdates() {
	metrics.ProfileUpdatesTotal.Inc()
}

func incrementUsernameChanges() {
	metrics.UsernameChangesTotal.Inc()
}

func incrementUsernameConflicts() {
	metrics.UsernameConflictsTotal.Inc()
}

func incrementCredentialChecksFailed() {
	metrics.CredentialChecksFailedTotal.Inc()
}
