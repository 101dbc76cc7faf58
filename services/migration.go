package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/heartletter/letter_api/dto"
	"github.com/heartletter/letter_api/model"
	"github.com/heartletter/letter_api/services/repositories"
	"github.com/heartletter/letter_api/shared"
)

const (
	MigrationWritingSteps = "writing_steps"
	MigrationUserHashes   = "user_hashes"
)

const (
	migrationMigrated = "migrated"
	migrationSkipped  = "skipped"
	migrationFailed   = "failed"
	migrationDryRun   = "dry_run"
)

// MigrationService rewrites legacy Redis records into the current document
// layout. Every migration can be rerun over the same data without creating
// duplicates.
type MigrationService struct {
	appContext.DefaultService

	storage *StorageService
}

const MIGRATION_SVC = "migration_svc"

func (svc MigrationService) Id() string {
	return MIGRATION_SVC
}

func (svc *MigrationService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *MigrationService) Start() error {
	svc.storage = svc.Service(STORAGE_SVC).(*StorageService)
	return nil
}

func NewMigrationService(storage *StorageService) *MigrationService {
	return &MigrationService{storage: storage}
}

type migrationFunc func(ctx context.Context, run *migrationRun) error

func (svc *MigrationService) migrations() map[string]migrationFunc {
	return map[string]migrationFunc{
		MigrationWritingSteps: svc.migrateWritingSteps,
		MigrationUserHashes:   svc.migrateUserHashes,
	}
}

func (svc *MigrationService) Names() []string {
	names := make([]string, 0, 2)
	for name := range svc.migrations() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type migrationRun struct {
	report *dto.MigrationResponse
	logger *log.Entry
}

func (r *migrationRun) record(result, key string, err error) {
	switch result {
	case migrationMigrated, migrationDryRun:
		r.report.Migrated++
	case migrationSkipped:
		r.report.Skipped++
	case migrationFailed:
		r.report.Failed++
	}
	if err != nil {
		r.report.Errors = append(r.report.Errors, fmt.Sprintf("%s: %v", key, err))
		r.logger.WithError(err).WithField("key", key).Warn(result)
	} else {
		r.logger.WithField("key", key).Debug(result)
	}
	recordMigrationDocument(r.report.Name, result)
}

// Run executes one migration. A dry run reads and counts without writing.
func (svc *MigrationService) Run(ctx context.Context, name string, dryRun bool) (*dto.MigrationResponse, error) {
	fn, ok := svc.migrations()[name]
	if !ok {
		return nil, shared.NewBadRequestError(nil, "Unknown migration: "+name)
	}

	start := time.Now()
	run := &migrationRun{
		report: &dto.MigrationResponse{
			Name:      name,
			DryRun:    dryRun,
			StartedAt: start.UTC().Format(time.RFC3339),
		},
		logger: log.WithFields(log.Fields{"migration": name, "dry_run": dryRun}),
	}
	run.logger.Info("Starting migration")

	err := fn(ctx, run)
	run.report.Duration = time.Since(start).String()
	if err != nil {
		run.logger.WithError(err).Error("Migration aborted")
		return run.report, shared.NewInternalError(err, "Migration aborted")
	}

	run.logger.WithFields(log.Fields{
		"scanned":  run.report.Scanned,
		"migrated": run.report.Migrated,
		"skipped":  run.report.Skipped,
		"failed":   run.report.Failed,
	}).Info("Migration finished")
	return run.report, nil
}

// ==================== WRITING STEPS ====================

type legacyWritingStep struct {
	ID               string                  `json:"id"`
	SessionID        string                  `json:"sessionId"`
	StepType         string                  `json:"stepType"`
	HighlightedItems []model.HighlightedItem `json:"highlightedItems"`
	CompletedAt      *time.Time              `json:"completedAt,omitempty"`
	CreatedAt        *time.Time              `json:"createdAt,omitempty"`
}

func (s legacyWritingStep) completedAt() *time.Time {
	if s.CompletedAt != nil {
		return s.CompletedAt
	}
	return s.CreatedAt
}

// migrateWritingSteps turns writing_step documents into clean sessions bound
// to the newest letter of the step's owner. Saving upserts through the
// by-letter pointer, so a second run reuses the session already created, and
// items are merged by id so steps from several letter sessions all survive.
func (svc *MigrationService) migrateWritingSteps(ctx context.Context, run *migrationRun) error {
	store := svc.storage.Store()
	keys, err := store.Keys(ctx, repositories.PrefixLegacyWriting+":*")
	if err != nil {
		return err
	}
	sort.Strings(keys)

	for _, key := range keys {
		run.report.Scanned++

		raw, err := store.Get(ctx, key)
		if err != nil {
			return err
		}
		if raw == "" {
			run.record(migrationSkipped, key, nil)
			continue
		}

		var step legacyWritingStep
		if err := repositories.Decode(raw, &step); err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		if step.StepType != shared.StepTypeUnderstanding && step.StepType != shared.StepTypeStrengthFinding {
			run.record(migrationSkipped, key, fmt.Errorf("unknown step type %q", step.StepType))
			continue
		}

		letter, err := svc.owningLetter(ctx, step)
		if err != nil {
			if repositories.IsNotFound(err) {
				run.record(migrationSkipped, key, err)
				continue
			}
			return err
		}

		if run.report.DryRun {
			run.record(migrationDryRun, key, nil)
			continue
		}

		sessionID, err := svc.saveCleanSession(ctx, step, letter)
		if err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		if err := svc.storage.Letters().SetStageSession(ctx, letter.ID, letterStage(step.StepType), sessionID); err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		run.record(migrationMigrated, key, nil)
	}
	return nil
}

// owningLetter follows step -> letter session -> user -> newest letter.
func (svc *MigrationService) owningLetter(ctx context.Context, step legacyWritingStep) (*model.Letter, error) {
	session, err := svc.storage.Sessions().GetSession(ctx, step.SessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", step.SessionID, err)
	}
	letter, err := svc.storage.Letters().LatestLetter(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("letter for user %s: %w", session.UserID, err)
	}
	return letter, nil
}

func (svc *MigrationService) saveCleanSession(ctx context.Context, step legacyWritingStep, letter *model.Letter) (string, error) {
	header := model.CleanSessionHeader{LetterID: letter.ID, UserID: letter.UserID}
	completedAt := step.completedAt()

	if step.StepType == shared.StepTypeStrengthFinding {
		items := make([]model.StrengthFindingItem, 0, len(step.HighlightedItems))
		for _, h := range step.HighlightedItems {
			items = append(items, model.StrengthFindingItem{
				ID:                  h.ID,
				Color:               h.Color,
				HighlightedText:     h.Text,
				StrengthDescription: h.StrengthDescription,
				StrengthApplication: h.StrengthApplication,
				CompletedAt:         completedAt,
			})
		}
		existing, err := svc.storage.CleanSessions().GetStrengthFindingByLetter(ctx, letter.ID)
		switch {
		case err == nil:
			items = mergeByID(existing.Items, items, func(i model.StrengthFindingItem) string { return i.ID })
		case !repositories.IsNotFound(err):
			return "", err
		}
		session, err := svc.storage.CleanSessions().SaveStrengthFinding(ctx, &model.StrengthFindingSession{CleanSessionHeader: header, Items: items})
		if err != nil {
			return "", err
		}
		return session.ID, nil
	}

	items := make([]model.UnderstandingItem, 0, len(step.HighlightedItems))
	for _, h := range step.HighlightedItems {
		items = append(items, model.UnderstandingItem{
			ID:               h.ID,
			Color:            h.Color,
			HighlightedText:  h.Text,
			ProblemReason:    h.ProblemReason,
			UserExplanation:  h.UserExplanation,
			EmotionInference: h.EmotionInference,
			CompletedAt:      completedAt,
		})
	}
	existing, err := svc.storage.CleanSessions().GetUnderstandingByLetter(ctx, letter.ID)
	switch {
	case err == nil:
		items = mergeByID(existing.Items, items, func(i model.UnderstandingItem) string { return i.ID })
	case !repositories.IsNotFound(err):
		return "", err
	}
	session, err := svc.storage.CleanSessions().SaveUnderstanding(ctx, &model.UnderstandingSession{CleanSessionHeader: header, Items: items})
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

// mergeByID keeps every existing item and adds the incoming ones. An incoming
// item replaces the existing item with the same id; items without an id are
// always appended.
func mergeByID[T any](existing, incoming []T, id func(T) string) []T {
	merged := make([]T, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)
	pos := make(map[string]int, len(existing))
	for i, item := range merged {
		if k := id(item); k != "" {
			pos[k] = i
		}
	}
	for _, item := range incoming {
		k := id(item)
		if i, ok := pos[k]; ok && k != "" {
			merged[i] = item
			continue
		}
		if k != "" {
			pos[k] = len(merged)
		}
		merged = append(merged, item)
	}
	return merged
}

// ==================== USER HASHES ====================

// migrateUserHashes rewrites users stored as Redis hashes as JSON documents
// and restores their nickname pointer and all_users entry. Users already
// stored as strings are skipped.
func (svc *MigrationService) migrateUserHashes(ctx context.Context, run *migrationRun) error {
	store := svc.storage.Store()
	keys, err := store.Keys(ctx, repositories.PrefixUser+":*")
	if err != nil {
		return err
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !repositories.IsUserKey(key) {
			continue
		}
		run.report.Scanned++

		kind, err := store.Type(ctx, key)
		if err != nil {
			return err
		}
		if kind != "hash" {
			run.record(migrationSkipped, key, nil)
			continue
		}

		fields, err := store.HGetAll(ctx, key)
		if err != nil {
			return err
		}
		user, err := userFromHash(key, fields)
		if err != nil {
			run.record(migrationFailed, key, err)
			continue
		}

		if run.report.DryRun {
			run.record(migrationDryRun, key, nil)
			continue
		}

		if err := store.Delete(ctx, key); err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		if err := svc.storage.Users().SaveUser(ctx, user); err != nil {
			run.record(migrationFailed, key, err)
			continue
		}
		run.record(migrationMigrated, key, nil)
	}
	return nil
}

func userFromHash(key string, fields map[string]string) (*model.User, error) {
	if fields["nickname"] == "" {
		return nil, errors.New("hash has no nickname")
	}

	user := &model.User{
		ID:           key,
		Nickname:     fields["nickname"],
		Password:     fields["password"],
		Role:         fields["role"],
		Introduction: fields["introduction"],
	}
	if created, ok := parseLegacyTime(fields["createdAt"]); ok {
		user.CreatedAt = created
	}
	if updated, ok := parseLegacyTime(fields["updatedAt"]); ok {
		user.UpdatedAt = updated
	} else {
		user.UpdatedAt = user.CreatedAt
	}
	return user, nil
}

// parseLegacyTime accepts RFC 3339 strings and unix milliseconds.
func parseLegacyTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), true
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
