package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/setting"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Reconciliation state lives in system_settings under this category.
const (
	SettingCategoryLicensing = "licensing"
	SettingKeyCronRunning    = "cron_running"
	SettingKeyCronLastRun    = "cron_last_run"
)

// RunState is the persisted reconciliation state: a running flag shared
// across processes and the instant of the last completed batch.
type RunState struct {
	settings setting.Repository
	logger   logger.Interface
}

func NewRunState(settings setting.Repository, logger logger.Interface) *RunState {
	return &RunState{settings: settings, logger: logger}
}

// Acquire sets the running flag. It returns ErrConcurrentRun when the flag is
// already set. The returned release clears the flag even if ctx was cancelled.
func (s *RunState) Acquire(ctx context.Context) (func(), error) {
	running := strconv.FormatBool(true)
	acquired := false
	for _, expected := range []string{strconv.FormatBool(false), ""} {
		ok, err := s.settings.CompareAndSwap(ctx, SettingCategoryLicensing, SettingKeyCronRunning, setting.ValueTypeBool, expected, running)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire reconciliation lock: %w", err)
		}
		if ok {
			acquired = true
			break
		}
	}
	if !acquired {
		return nil, licensing.ErrConcurrentRun
	}

	release := func() {
		releaseCtx := context.WithoutCancel(ctx)
		ok, err := s.settings.CompareAndSwap(releaseCtx, SettingCategoryLicensing, SettingKeyCronRunning, setting.ValueTypeBool, running, strconv.FormatBool(false))
		if err != nil {
			s.logger.Errorw("failed to release reconciliation lock", "error", err)
			return
		}
		if !ok {
			s.logger.Warnw("reconciliation lock was already released")
		}
	}
	return release, nil
}

// LastRun returns the zero time when reconciliation never completed.
func (s *RunState) LastRun(ctx context.Context) (time.Time, error) {
	st, err := s.settings.GetByKey(ctx, SettingCategoryLicensing, SettingKeyCronLastRun)
	if err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read last reconciliation run: %w", err)
	}
	t, err := st.GetTimeValue()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last reconciliation run %q: %w", st.Value(), err)
	}
	return t, nil
}

func (s *RunState) SetLastRun(ctx context.Context, t time.Time) error {
	st, err := setting.NewSystemSetting(SettingCategoryLicensing, SettingKeyCronLastRun, setting.ValueTypeTime, "last completed reconciliation run")
	if err != nil {
		return err
	}
	if err := st.SetTimeValue(t, 0); err != nil {
		return err
	}
	if err := s.settings.Upsert(ctx, st); err != nil {
		return fmt.Errorf("failed to store last reconciliation run: %w", err)
	}
	return nil
}

// IsRunning reports the persisted running flag.
func (s *RunState) IsRunning(ctx context.Context) (bool, error) {
	st, err := s.settings.GetByKey(ctx, SettingCategoryLicensing, SettingKeyCronRunning)
	if err != nil {
		if errors.Is(err, setting.ErrSettingNotFound) {
			return false, nil
		}
		return false, err
	}
	return st.GetBoolValue()
}
