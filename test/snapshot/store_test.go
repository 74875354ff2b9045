package snapshot

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/driftchat/backend/internal/common/logger"
	"github.com/driftchat/backend/internal/snapshot/domain"
	"github.com/driftchat/backend/internal/snapshot/repository"
)

func TestNewStore_BackendSelection(t *testing.T) {
	log := logger.NewNop()

	if _, ok := repository.NewStore("noop", nil, log).(*repository.NoopStore); !ok {
		t.Error("expected noop backend to select NoopStore")
	}

	if _, ok := repository.NewStore("", nil, log).(*repository.NoopStore); !ok {
		t.Error("expected unknown backend to fall back to NoopStore")
	}

	if _, ok := repository.NewStore("postgres", nil, log).(*repository.PgStore); !ok {
		t.Error("expected postgres backend to select PgStore")
	}
}

func TestNoopStore_InsertSnapshot(t *testing.T) {
	store := repository.NewNoopStore(logger.NewNop())

	err := store.InsertSnapshot(context.Background(), domain.Snapshot{
		ID:        "snap-1",
		ReportID:  "report-1",
		Content:   json.RawMessage(`{"text":"reported message"}`),
		CreatedAt: time.Now(),
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
