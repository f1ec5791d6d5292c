package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"content-sync/core/database"
	"content-sync/core/reconcile"
	"content-sync/core/record"
	"content-sync/core/snapshot"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentLoader reads the full record document behind a location.
type DocumentLoader interface {
	Document(ctx context.Context, loc record.Location) (*snapshot.Document, error)
}

// Store is the gorm-backed destination. It serves lookups and applies decisions.
type Store struct {
	db         *gorm.DB
	registry   *Registry
	docs       DocumentLoader
	files      *Files
	logger     *zap.Logger
	newBackoff func() backoff.BackOff

	// absent is set while the entity table does not exist.
	absent atomic.Bool
}

// NewStore creates a destination store. files may be nil when no blob needs materializing.
func NewStore(db *gorm.DB, registry *Registry, docs DocumentLoader, files *Files, logger *zap.Logger) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:         db,
		registry:   registry,
		docs:       docs,
		files:      files,
		logger:     logger,
		newBackoff: newRetryBackoff,
	}
}

// Open inspects the destination schema without changing it. When the entity
// table does not exist yet every lookup reports no destination record.
func (s *Store) Open() error {
	if !s.db.Migrator().HasTable(&Entity{}) {
		s.absent.Store(true)
		s.logger.Info("Destination table does not exist yet, every record will be created",
			zap.String("table", TableName),
		)
		return nil
	}
	s.absent.Store(false)
	return s.Verify()
}

// Migrate creates or updates the entity table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Entity{}); err != nil {
		return err
	}
	s.absent.Store(false)
	return nil
}

// tableMissing reports whether lookups must answer without querying.
func (s *Store) tableMissing() bool {
	if !s.absent.Load() {
		return false
	}
	if s.db.Migrator().HasTable(&Entity{}) {
		s.absent.Store(false)
		return false
	}
	return true
}

// Verify checks that the entity table has every column Apply writes.
func (s *Store) Verify() error {
	missing, err := database.MissingColumns(s.db, TableName, requiredColumns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", TableName, strings.Join(missing, ", "))
	}
	return nil
}

// FindByIdentity returns the destination record for identity, or nil when none exists.
func (s *Store) FindByIdentity(ctx context.Context, identity string) (reconcile.Existing, error) {
	if s.tableMissing() {
		return nil, nil
	}
	var rows []Entity
	err := withRetry(ctx, s.newBackoff, func() error {
		rows = rows[:0]
		return s.db.WithContext(ctx).Where("uuid = ?", identity).Limit(1).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// FindByIdentities returns the destination records among identities, keyed by identity.
func (s *Store) FindByIdentities(ctx context.Context, identities []string) (map[string]reconcile.Existing, error) {
	if s.tableMissing() {
		return map[string]reconcile.Existing{}, nil
	}
	var rows []Entity
	err := withRetry(ctx, s.newBackoff, func() error {
		rows = rows[:0]
		return s.db.WithContext(ctx).Where("uuid IN ?", identities).Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]reconcile.Existing, len(rows))
	for i := range rows {
		out[rows[i].UUID] = &rows[i]
	}
	return out, nil
}

// Apply writes one decision. A Create inserts a new entity; an Update rewrites the
// entity with the inherited internal key and bumps its revision.
func (s *Store) Apply(ctx context.Context, d reconcile.Decision) (reconcile.Outcome, error) {
	if d.Action == reconcile.ActionSkip {
		return reconcile.Outcome{}, nil
	}

	doc, err := s.docs.Document(ctx, d.Record.Location)
	if err != nil {
		return reconcile.Outcome{}, fmt.Errorf("failed to load %s: %w", d.Record.Location, err)
	}

	var outcome reconcile.Outcome
	if s.registry.HasFiles(d.Type) && doc.File != nil {
		if s.files == nil {
			return outcome, errors.New("record references a file but no file storage is configured")
		}
		n, err := s.files.Ensure(ctx, doc.File)
		if err != nil {
			return outcome, err
		}
		outcome.Materialized += n
	}

	ent := s.entityFor(d, doc)

	switch d.Action {
	case reconcile.ActionCreate:
		err = withRetry(ctx, s.newBackoff, func() error {
			ent.ID = 0
			return s.db.WithContext(ctx).Create(&ent).Error
		})
	case reconcile.ActionUpdate:
		err = s.update(ctx, d.InternalKey, ent)
	default:
		err = fmt.Errorf("unknown action %q", d.Action)
	}
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (s *Store) entityFor(d reconcile.Decision, doc *snapshot.Document) Entity {
	owner := d.Record.Owner
	if owner == "" {
		owner = d.DefaultOwner
	}
	payload := string(doc.Fields)
	if payload == "" {
		payload = "{}"
	}
	ent := Entity{
		UUID:      d.Identity,
		Type:      d.Type,
		OwnerUUID: owner,
		Revision:  1,
		Payload:   payload,
	}
	if s.registry.TracksModified(d.Type) {
		ent.Changed = d.Record.LastModified
	}
	return ent
}

// update writes ent over the row identified by key.
func (s *Store) update(ctx context.Context, key string, ent Entity) error {
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid internal key %q: %w", key, err)
	}

	return withRetry(ctx, s.newBackoff, func() error {
		res := s.db.WithContext(ctx).Model(&Entity{}).Where("id = ?", id).Updates(map[string]any{
			"uuid":       ent.UUID,
			"type":       ent.Type,
			"owner_uuid": ent.OwnerUUID,
			"changed":    ent.Changed,
			"payload":    ent.Payload,
			"revision":   gorm.Expr("revision + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("destination record %d no longer exists", id)
		}
		return nil
	})
}
