package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

// Service is the entry point shared by the CLI, the HTTP API and the MCP tools.
// Every method acts on behalf of the user attached to ctx.
type Service struct {
	syncer *Syncer
	stores contract.StoreManager
	params schema.FlowParams
}

// NewService creates a service backed by syncer and stores.
func NewService(syncer *Syncer, stores contract.StoreManager, params schema.FlowParams) *Service {
	return &Service{syncer: syncer, stores: stores, params: params}
}

// Sync refreshes the snapshot of the current user.
func (s *Service) Sync(ctx context.Context, scope schema.SyncScope) (*schema.WeeklySnapshot, error) {
	return s.syncer.Sync(ctx, scope)
}

// Report builds the weekly report of the current user from the stored snapshot.
func (s *Service) Report(ctx context.Context) (schema.Report, error) {
	user, ok := UserFrom(ctx)
	if !ok {
		return schema.Report{}, contract.ErrUnauthenticated
	}

	snap, err := s.stores.GetSnapshotStore().Get(ctx, user)
	if err != nil {
		return schema.Report{}, fmt.Errorf("loading snapshot: %w", err)
	}
	settings, err := s.stores.GetSettingsStore().Get(ctx, user)
	if err != nil {
		return schema.Report{}, fmt.Errorf("loading settings: %w", err)
	}

	report := BuildReport(snap, settings, s.params)
	report.UserID = user
	return report, nil
}

// Settings returns the settings of the current user, or the defaults.
func (s *Service) Settings(ctx context.Context) (schema.UserSettings, error) {
	user, ok := UserFrom(ctx)
	if !ok {
		return schema.UserSettings{}, contract.ErrUnauthenticated
	}
	settings, err := s.stores.GetSettingsStore().Get(ctx, user)
	if err != nil {
		return schema.UserSettings{}, fmt.Errorf("loading settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings applies u onto the current settings and saves the result.
func (s *Service) UpdateSettings(ctx context.Context, u schema.SettingsUpdate) (schema.UserSettings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return schema.UserSettings{}, err
	}

	next := u.Apply(current)
	next.UpdatedAt = time.Now()
	if err := contract.ValidateSettings(next); err != nil {
		return schema.UserSettings{}, contract.InvalidInputError(err)
	}
	if err := s.stores.GetSettingsStore().Upsert(ctx, next); err != nil {
		return schema.UserSettings{}, fmt.Errorf("saving settings: %w", err)
	}
	return next, nil
}

// DeleteSnapshot removes the stored snapshot of the current user.
func (s *Service) DeleteSnapshot(ctx context.Context) error {
	user, ok := UserFrom(ctx)
	if !ok {
		return contract.ErrUnauthenticated
	}
	if err := s.stores.GetSnapshotStore().Delete(ctx, user); err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	return nil
}

// Connected reports which sync paths have a source attached.
func (s *Service) Connected() (calendar, commits bool) {
	return s.syncer.Connected()
}

// StoreStatus reports the health and size of the backing stores.
func (s *Service) StoreStatus(ctx context.Context) (schema.StoreStatus, error) {
	return s.stores.GetStatus(ctx)
}
