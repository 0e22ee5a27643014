package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"umi-faculty-api/models"

	"gorm.io/gorm"
)

var (
	statusCacheMu sync.RWMutex
	statusCache   *statusCacheEntry
	statusTTL     = 5 * time.Minute
)

type statusCacheEntry struct {
	definitions []models.StatusDefinition
	byCode      map[string]models.StatusDefinition
	fetchedAt   time.Time
}

func cacheKey(entityType, code string) string {
	return entityType + "/" + code
}

// StatusService is the append-only status ledger over status_records plus the
// status_definitions reference cache.
type StatusService struct {
	db *gorm.DB
}

func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{db: db}
}

// loadDefinitions fills the cache from db, which must be the caller's own
// connection: resolving through the root pool while a transaction holds its
// connection can exhaust the pool and deadlock.
func (s *StatusService) loadDefinitions(db *gorm.DB, force bool) (*statusCacheEntry, error) {
	statusCacheMu.RLock()
	cached := statusCache
	statusCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < statusTTL {
		return cached, nil
	}

	statusCacheMu.Lock()
	defer statusCacheMu.Unlock()

	if statusCache != nil && !force && time.Since(statusCache.fetchedAt) < statusTTL {
		return statusCache, nil
	}

	var rows []models.StatusDefinition
	if err := db.Where("delete_at IS NULL").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load status definitions: %w", err)
	}

	byCode := make(map[string]models.StatusDefinition, len(rows))
	for _, def := range rows {
		byCode[cacheKey(def.EntityType, def.Code)] = def
	}

	entry := &statusCacheEntry{
		definitions: rows,
		byCode:      byCode,
		fetchedAt:   time.Now(),
	}
	statusCache = entry
	return entry, nil
}

// ClearStatusCache invalidates the in-memory definition cache.
func ClearStatusCache() {
	statusCacheMu.Lock()
	defer statusCacheMu.Unlock()
	statusCache = nil
}

// Definitions returns the status definitions for one entity type.
func (s *StatusService) Definitions(entityType string) ([]models.StatusDefinition, error) {
	entry, err := s.loadDefinitions(s.db, false)
	if err != nil {
		return nil, err
	}
	out := make([]models.StatusDefinition, 0, len(entry.definitions))
	for _, def := range entry.definitions {
		if def.EntityType == entityType {
			out = append(out, def)
		}
	}
	return out, nil
}

// DefinitionByCode resolves a definition, refreshing the cache once before
// giving up on a miss.
func (s *StatusService) DefinitionByCode(entityType, code string) (*models.StatusDefinition, error) {
	return s.definitionByCode(s.db, entityType, code)
}

func (s *StatusService) definitionByCode(db *gorm.DB, entityType, code string) (*models.StatusDefinition, error) {
	if code == "" {
		return nil, validationErr("status code is required")
	}

	entry, err := s.loadDefinitions(db, false)
	if err != nil {
		return nil, err
	}
	if def, ok := entry.byCode[cacheKey(entityType, code)]; ok {
		return &def, nil
	}

	entry, err = s.loadDefinitions(db, true)
	if err != nil {
		return nil, err
	}
	if def, ok := entry.byCode[cacheKey(entityType, code)]; ok {
		return &def, nil
	}

	return nil, notFoundErr("status %q is not defined for %s", code, entityType)
}

// AppendStatus supersedes the entity's current status record and inserts the
// new current one. Must run inside the caller's transaction; the workflow
// service takes the entity row lock before calling this.
func (s *StatusService) AppendStatus(tx *gorm.DB, entityType string, entityID int, code string, at time.Time, changedBy int) (*models.StatusRecord, error) {
	// Resolve on tx: a cold cache must fault in on the transaction's own
	// connection, not a second one from the pool.
	def, err := s.definitionByCode(tx, entityType, code)
	if err != nil {
		return nil, err
	}

	err = tx.Model(&models.StatusRecord{}).
		Where("entity_type = ? AND entity_id = ? AND is_current = ?", entityType, entityID, true).
		Updates(map[string]any{"is_current": false, "end_date": at}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to supersede current status: %w", err)
	}

	record := models.StatusRecord{
		EntityType:   entityType,
		EntityID:     entityID,
		DefinitionID: def.DefinitionID,
		StartDate:    at,
		IsCurrent:    true,
		ChangedBy:    changedBy,
		CreateAt:     time.Now(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to append status record: %w", err)
	}

	record.Definition = *def
	return &record, nil
}

// Current returns the single current status record, or nil for entities that
// have not been submitted yet.
func (s *StatusService) Current(entityType string, entityID int) (*models.StatusRecord, error) {
	return s.CurrentTx(s.db, entityType, entityID)
}

// CurrentTx is Current within an existing transaction.
func (s *StatusService) CurrentTx(tx *gorm.DB, entityType string, entityID int) (*models.StatusRecord, error) {
	var record models.StatusRecord
	err := tx.Preload("Definition").
		Where("entity_type = ? AND entity_id = ? AND is_current = ?", entityType, entityID, true).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns all status records for an entity in chronological order.
func (s *StatusService) History(entityType string, entityID int) ([]models.StatusRecord, error) {
	var records []models.StatusRecord
	err := s.db.Preload("Definition").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("start_date ASC, status_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type definitionSeed struct {
	entityType string
	code       string
	name       string
	color      string
	days       int // 0 means no SLA shown
}

var defaultDefinitions = []definitionSeed{
	{models.EntityProposal, models.StatusProposalSubmitted, "proposal submitted", "#3B82F6", 14},
	{models.EntityProposal, models.StatusUnderReview, "under review", "#F59E0B", 30},
	{models.EntityProposal, models.StatusReviewPassed, "passed-proposal graded", "#22C55E", 14},
	{models.EntityProposal, models.StatusReviewFailed, "failed-proposal graded", "#EF4444", 0},
	{models.EntityProposal, models.StatusDefenseScheduled, "defense scheduled", "#8B5CF6", 30},
	{models.EntityProposal, models.StatusDefendedPassed, "passed-proposal defense", "#16A34A", 0},
	{models.EntityProposal, models.StatusDefendedFailed, "failed-proposal defense", "#DC2626", 0},
	{models.EntityBook, models.StatusBookSubmitted, "book submitted", "#3B82F6", 14},
	{models.EntityBook, models.StatusExaminersAssigned, "under examination", "#F59E0B", 60},
	{models.EntityBook, models.StatusExaminationPassed, "passed-book examination", "#16A34A", 0},
	{models.EntityBook, models.StatusExaminationFailed, "failed-book examination", "#DC2626", 0},
}

// EnsureDefinitions seeds the workflow status definitions the engine depends
// on. Safe to call on every boot.
func (s *StatusService) EnsureDefinitions() error {
	now := time.Now()
	for _, seed := range defaultDefinitions {
		def := models.StatusDefinition{
			EntityType: seed.entityType,
			Code:       seed.code,
			StatusName: seed.name,
			Color:      seed.color,
			CreateAt:   now,
			UpdateAt:   now,
		}
		if seed.days > 0 {
			days := seed.days
			def.ExpectedDurationDays = &days
		}
		err := s.db.Where("entity_type = ? AND code = ?", seed.entityType, seed.code).
			FirstOrCreate(&def).Error
		if err != nil {
			return fmt.Errorf("failed to seed status %s/%s: %w", seed.entityType, seed.code, err)
		}
	}
	ClearStatusCache()
	return nil
}
