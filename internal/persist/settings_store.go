package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
)

var settingsColumns = []string{"user_id", "target_deep_hours", "timezone", "email_reports", "updated_at"}

// SettingsStoreImpl implements the SettingsStore interface.
type SettingsStoreImpl struct {
	db       *database
	defaults func(userID string) schema.UserSettings
}

var _ contract.SettingsStore = &SettingsStoreImpl{} // Compile-time check

// Get returns the stored settings of a user, or the defaults when there are none.
func (st *SettingsStoreImpl) Get(ctx context.Context, userID string) (schema.UserSettings, error) {
	defaults := st.defaultsFor(userID)
	if st.db.disabled() {
		return defaults, nil
	}

	query := fmt.Sprintf(`SELECT target_deep_hours, timezone, email_reports, updated_at FROM %s WHERE user_id = %s`,
		st.db.table(settingsTable), st.db.ph(1))

	s := schema.UserSettings{UserID: userID}
	var updated timeScanner
	err := st.db.db.QueryRowContext(ctx, query, userID).Scan(&s.TargetDeepHours, &s.Timezone, &s.EmailReports, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("failed to get settings for %s: %w", userID, err)
	}
	s.UpdatedAt = updated.Time
	return s, nil
}

// Upsert creates or replaces the settings of s.UserID.
func (st *SettingsStoreImpl) Upsert(ctx context.Context, s schema.UserSettings) error {
	if st.db.disabled() {
		return nil
	}
	if err := contract.ValidateSettings(s); err != nil {
		return err
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}

	query := st.db.upsertQuery(settingsTable, "user_id", settingsColumns)
	args := []any{s.UserID, s.TargetDeepHours, s.Timezone, s.EmailReports, formatTime(s.UpdatedAt, st.db.backend)}
	if _, err := st.db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert settings for %s: %w", s.UserID, err)
	}
	return nil
}

func (st *SettingsStoreImpl) defaultsFor(userID string) schema.UserSettings {
	if st.defaults != nil {
		return st.defaults(userID)
	}
	return schema.DefaultUserSettings(userID)
}
