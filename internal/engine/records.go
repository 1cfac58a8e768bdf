package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"modscout/internal/decision"
	"modscout/internal/logging"
	"modscout/internal/record"
	"modscout/internal/services"
)

const msgRecordedAsFound = "latest decision for this url was FOUND; pass force to create anyway"

// CreateRecord creates a pending catalog record for a URL. Record creation is
// always an explicit human action; the pipeline never calls this. When the
// latest recorded decision for the URL was FOUND, creation is refused unless
// force is set. On success the index is reloaded so the new record is
// immediately searchable.
func (e *Engine) CreateRecord(ctx context.Context, title, url string, force bool) (*record.Record, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)
	if title == "" || url == "" {
		return nil, services.Wrap(services.ErrValidation, "engine", "create record", "title and url required", nil)
	}

	if !force {
		latest, err := e.latestDecisionForURL(ctx, url)
		if err != nil {
			return nil, err
		}
		if latest != nil && latest.Outcome == decision.OutcomeFound {
			return nil, services.Wrap(services.ErrValidation, "engine", "create record", msgRecordedAsFound, nil)
		}
	}

	note := fmt.Sprintf("created by modscout (creation id %s) for %s", uuid.NewString(), url)
	created, err := e.catalog.CreateRecord(ctx, title, url, note)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "engine", "create record", "catalog create", err)
	}
	e.logger.Info("catalog record created",
		logging.String("record_id", created.ID),
		logging.String(logging.FieldURL, url))

	if _, _, err := e.reloadIndex(ctx); err != nil {
		// The record exists; a failed refresh only delays its visibility.
		e.logger.Warn("index reload after create failed", logging.Error(err))
	}
	return created, nil
}

// AppendNote appends an audit line to an existing record's notes. Notes are
// append-only on the catalog side; nothing is ever rewritten.
func (e *Engine) AppendNote(ctx context.Context, recordID, note string) error {
	recordID = strings.TrimSpace(recordID)
	note = strings.TrimSpace(note)
	if recordID == "" || note == "" {
		return services.Wrap(services.ErrValidation, "engine", "append note", "record id and note required", nil)
	}
	if err := e.ensureIndex(ctx); err != nil {
		return err
	}
	if !e.recordExists(recordID) {
		return services.Wrap(services.ErrNotFound, "engine", "append note",
			fmt.Sprintf("record %s not in catalog index", recordID), nil)
	}
	if err := e.catalog.AppendNote(ctx, recordID, note); err != nil {
		return services.Wrap(services.ErrExternalService, "engine", "append note", "catalog append", err)
	}
	e.logger.Info("audit note appended", logging.String("record_id", recordID))
	return nil
}

func (e *Engine) recordExists(recordID string) bool {
	for _, rec := range e.state.currentIndex().Records() {
		if rec.ID == recordID {
			return true
		}
	}
	return false
}

func (e *Engine) latestDecisionForURL(ctx context.Context, url string) (*decision.Decision, error) {
	all, err := e.state.log.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Identity.URL == url {
			return &all[i], nil
		}
	}
	return nil, nil
}
