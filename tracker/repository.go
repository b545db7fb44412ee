package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/timesheet-engine/generic"
	"github.com/warp/timesheet-engine/payperiod"
	"github.com/warp/timesheet-engine/worktime"
)

// =============================================================================
// REPOSITORY - Typed collections over a key/value store
// =============================================================================

// Persisted keys. Values are JSON documents.
const (
	KeyTimeEntries     = "timeEntries"
	KeyPayPeriods      = "payPeriods"
	KeyCurrentPeriodID = "currentPeriodId"
	KeyAnnualVacation  = "annualVacation"
	KeySickDays        = "sickDays"
	KeySalary          = "salary"
	KeyFullName        = "fullName"
)

// Repository loads and saves the typed collections the tracker works on.
// The calculation packages never see it.
type Repository interface {
	LoadEntries(ctx context.Context) ([]worktime.DayEntry, error)
	SaveEntries(ctx context.Context, entries []worktime.DayEntry) error
	LoadPeriods(ctx context.Context) (payperiod.State, error)
	SavePeriods(ctx context.Context, state payperiod.State) error
	LoadSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	Reset(ctx context.Context) error
}

// Settings are the user's profile values.
type Settings struct {
	FullName       string
	Salary         decimal.Decimal
	AnnualVacation decimal.Decimal
	SickDays       decimal.Decimal
}

// DefaultSettings applies when nothing has been saved.
func DefaultSettings() Settings {
	return Settings{
		Salary:         decimal.Zero,
		AnnualVacation: decimal.NewFromInt(21),
		SickDays:       decimal.NewFromInt(7),
	}
}

// KVRepository stores each collection under its own key in a generic.Store.
type KVRepository struct {
	store generic.Store
}

func NewKVRepository(store generic.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) LoadEntries(ctx context.Context) ([]worktime.DayEntry, error) {
	var entries []worktime.DayEntry
	if _, err := r.getJSON(ctx, KeyTimeEntries, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *KVRepository) SaveEntries(ctx context.Context, entries []worktime.DayEntry) error {
	if entries == nil {
		entries = []worktime.DayEntry{}
	}
	return r.putJSON(ctx, KeyTimeEntries, entries)
}

func (r *KVRepository) LoadPeriods(ctx context.Context) (payperiod.State, error) {
	var state payperiod.State
	if _, err := r.getJSON(ctx, KeyPayPeriods, &state.Periods); err != nil {
		return state, err
	}
	if _, err := r.getJSON(ctx, KeyCurrentPeriodID, &state.CurrentID); err != nil {
		return state, err
	}
	return state, nil
}

// SavePeriods writes the list and the current id in one batch.
func (r *KVRepository) SavePeriods(ctx context.Context, state payperiod.State) error {
	periods := state.Periods
	if periods == nil {
		periods = []payperiod.PayPeriod{}
	}
	pb, err := json.Marshal(periods)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyPayPeriods, err)
	}
	cb, err := json.Marshal(state.CurrentID)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", KeyCurrentPeriodID, err)
	}
	return r.store.PutBatch(ctx, map[string][]byte{KeyPayPeriods: pb, KeyCurrentPeriodID: cb})
}

// LoadSettings fills unset or unparsable numbers with defaults.
func (r *KVRepository) LoadSettings(ctx context.Context) (Settings, error) {
	s := DefaultSettings()
	if _, err := r.getJSON(ctx, KeyFullName, &s.FullName); err != nil {
		return s, err
	}
	for key, dst := range map[string]*decimal.Decimal{
		KeySalary:         &s.Salary,
		KeyAnnualVacation: &s.AnnualVacation,
		KeySickDays:       &s.SickDays,
	} {
		raw, err := r.store.Get(ctx, key)
		if errors.Is(err, generic.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return s, fmt.Errorf("failed to load %s: %w", key, err)
		}
		if v, ok := parseNumber(raw); ok {
			*dst = v
		}
	}
	return s, nil
}

// SaveSettings stores numbers as JSON strings ("21"), the historical format.
func (r *KVRepository) SaveSettings(ctx context.Context, s Settings) error {
	batch := make(map[string][]byte, 4)
	for key, v := range map[string]string{
		KeyFullName:       s.FullName,
		KeySalary:         s.Salary.String(),
		KeyAnnualVacation: s.AnnualVacation.String(),
		KeySickDays:       s.SickDays.String(),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		batch[key] = b
	}
	return r.store.PutBatch(ctx, batch)
}

func (r *KVRepository) Reset(ctx context.Context) error {
	return r.store.Reset(ctx)
}

// getJSON decodes key into dst. found is false (and dst untouched) when the
// key is absent.
func (r *KVRepository) getJSON(ctx context.Context, key string, dst any) (found bool, err error) {
	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, generic.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (r *KVRepository) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, b); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// parseNumber accepts a JSON string ("21") or a bare number (21).
func parseNumber(raw []byte) (decimal.Decimal, bool) {
	text := strings.TrimSpace(string(raw))
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = strings.TrimSpace(s)
	}
	if text == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

var _ Repository = (*KVRepository)(nil)
