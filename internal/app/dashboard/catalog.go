package dashboard

import (
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/samber/lo"
)

var (
	ErrUnknownKey     = errors.New("unknown metric key")
	ErrInvalidCatalog = errors.New("invalid metric catalog")
)

// Key is a metric key as requested by dashboard clients.
type Key string

const (
	KeyActivity     Key = "activity"
	KeyReadiness    Key = "readiness"
	KeySleep        Key = "sleep"
	KeySleepDetail  Key = "sleep_detail"
	KeyStress       Key = "stress"
	KeySpO2         Key = "spo2"
	KeyResilience   Key = "resilience"
	KeyCardioAge    Key = "cardio_age"
	KeyHeartRate    Key = "heart_rate"
	KeyWorkout      Key = "workout"
	KeySleepTime    Key = "sleep_time"
	KeySessions     Key = "sessions"
	KeyTags         Key = "tags"
	KeyEnhancedTags Key = "enhanced_tags"
	KeyRestMode     Key = "rest_mode"
	KeyRingConfig   Key = "ring_config"
	KeyVO2Max       Key = "vo2_max"
	KeyPersonalInfo Key = "personal_info"
)

// Field is a view model entry name.
type Field string

const (
	FieldActivity          Field = "activity"
	FieldReadiness         Field = "readiness"
	FieldSleep             Field = "sleep"
	FieldDailyStress       Field = "daily_stress"
	FieldDailySpO2         Field = "daily_spo2"
	FieldDailyResilience   Field = "daily_resilience"
	FieldCardioAge         Field = "daily_cardiovascular_age"
	FieldHeartRate         Field = "heart_rate"
	FieldWorkout           Field = "workout"
	FieldSleepDocuments    Field = "sleep_documents"
	FieldSleepTime         Field = "sleep_time"
	FieldSession           Field = "session"
	FieldTag               Field = "tag"
	FieldEnhancedTag       Field = "enhanced_tag"
	FieldRestModePeriod    Field = "rest_mode_period"
	FieldRingConfiguration Field = "ring_configuration"
	FieldVO2Max            Field = "vo2_max"
	FieldPersonalInfo      Field = "personal_info"
)

// Entry maps one key to the metric types it needs. Auxiliary types are
// fetched along with the key but belong to other widgets. Internal keys are
// never part of the default set.
type Entry struct {
	Key       Key
	Types     []oura.MetricType
	Auxiliary []oura.MetricType
	Internal  bool
}

type Catalog struct {
	entries    []Entry
	byKey      map[Key]Entry
	fields     map[oura.MetricType]Field
	keys       map[oura.MetricType]Key
	singletons []Field
}

// NewCatalog checks that every key is unique, every referenced type has a
// field, and every field-mapped type belongs to some key.
func NewCatalog(entries []Entry, fields map[oura.MetricType]Field, singletons []Field) (*Catalog, error) {
	c := &Catalog{
		entries:    entries,
		byKey:      make(map[Key]Entry, len(entries)),
		fields:     fields,
		keys:       make(map[oura.MetricType]Key),
		singletons: singletons,
	}

	for _, e := range entries {
		if _, dup := c.byKey[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, e.Key)
		}
		c.byKey[e.Key] = e

		for _, t := range append(append([]oura.MetricType{}, e.Types...), e.Auxiliary...) {
			if _, ok := fields[t]; !ok {
				return nil, fmt.Errorf("%w: key %q uses unmapped type %q", ErrInvalidCatalog, e.Key, t)
			}
		}
		for _, t := range e.Types {
			if owner, taken := c.keys[t]; taken {
				return nil, fmt.Errorf("%w: type %q owned by both %q and %q", ErrInvalidCatalog, t, owner, e.Key)
			}
			c.keys[t] = e.Key
		}
	}

	for t := range fields {
		if _, ok := c.keys[t]; !ok {
			return nil, fmt.Errorf("%w: type %q has no key", ErrInvalidCatalog, t)
		}
	}
	for _, f := range singletons {
		if lo.Contains(lo.Values(fields), f) {
			return nil, fmt.Errorf("%w: field %q is both singleton and list", ErrInvalidCatalog, f)
		}
	}
	return c, nil
}

func MustCatalog(entries []Entry, fields map[oura.MetricType]Field, singletons []Field) *Catalog {
	c, err := NewCatalog(entries, fields, singletons)
	if err != nil {
		panic(err)
	}
	return c
}

var DefaultCatalog = MustCatalog(
	[]Entry{
		{Key: KeyActivity, Types: []oura.MetricType{oura.TypeActivity}},
		{Key: KeyReadiness, Types: []oura.MetricType{oura.TypeReadiness}},
		{Key: KeySleep, Types: []oura.MetricType{oura.TypeSleepDaily}},
		{Key: KeySleepDetail, Types: []oura.MetricType{oura.TypeSleepDetailed}},
		{Key: KeyStress, Types: []oura.MetricType{oura.TypeDailyStress}},
		{Key: KeySpO2, Types: []oura.MetricType{oura.TypeDailySpO2}},
		{Key: KeyResilience, Types: []oura.MetricType{oura.TypeDailyResilience}},
		{Key: KeyCardioAge, Types: []oura.MetricType{oura.TypeCardioAge}},
		{Key: KeyHeartRate, Types: []oura.MetricType{oura.TypeHeartRate}},
		{Key: KeyWorkout, Types: []oura.MetricType{oura.TypeWorkout}},
		{Key: KeySleepTime, Types: []oura.MetricType{oura.TypeSleepTime}},
		{Key: KeySessions, Types: []oura.MetricType{oura.TypeSession}},
		{Key: KeyTags, Types: []oura.MetricType{oura.TypeTag}, Auxiliary: []oura.MetricType{oura.TypeEnhancedTag}},
		{Key: KeyEnhancedTags, Types: []oura.MetricType{oura.TypeEnhancedTag}},
		{Key: KeyRestMode, Types: []oura.MetricType{oura.TypeRestModePeriod}},
		{Key: KeyRingConfig, Types: []oura.MetricType{oura.TypeRingConfiguration}},
		{Key: KeyVO2Max, Types: []oura.MetricType{oura.TypeVO2Max}},
		{Key: KeyPersonalInfo, Internal: true},
	},
	map[oura.MetricType]Field{
		oura.TypeActivity:          FieldActivity,
		oura.TypeReadiness:         FieldReadiness,
		oura.TypeSleepDaily:        FieldSleep,
		oura.TypeDailyStress:       FieldDailyStress,
		oura.TypeDailySpO2:         FieldDailySpO2,
		oura.TypeDailyResilience:   FieldDailyResilience,
		oura.TypeCardioAge:         FieldCardioAge,
		oura.TypeHeartRate:         FieldHeartRate,
		oura.TypeWorkout:           FieldWorkout,
		oura.TypeSleepDetailed:     FieldSleepDocuments,
		oura.TypeSleepTime:         FieldSleepTime,
		oura.TypeSession:           FieldSession,
		oura.TypeTag:               FieldTag,
		oura.TypeEnhancedTag:       FieldEnhancedTag,
		oura.TypeRestModePeriod:    FieldRestModePeriod,
		oura.TypeRingConfiguration: FieldRingConfiguration,
		oura.TypeVO2Max:            FieldVO2Max,
	},
	[]Field{FieldPersonalInfo},
)

func (c *Catalog) ParseKeys(raw []string) ([]Key, error) {
	keys := make([]Key, 0, len(raw))
	for _, s := range raw {
		k := Key(s)
		if _, ok := c.byKey[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, s)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Resolve returns the de-duplicated metric types to fetch for subset. An
// empty subset means every non-internal key.
func (c *Catalog) Resolve(subset []Key) ([]oura.MetricType, error) {
	var types []oura.MetricType
	if len(subset) == 0 {
		for _, e := range c.entries {
			if !e.Internal {
				types = append(types, e.Types...)
				types = append(types, e.Auxiliary...)
			}
		}
		return lo.Uniq(types), nil
	}

	for _, k := range subset {
		e, ok := c.byKey[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k)
		}
		types = append(types, e.Types...)
		types = append(types, e.Auxiliary...)
	}
	return lo.Uniq(types), nil
}

func (c *Catalog) Field(t oura.MetricType) Field {
	return c.fields[t]
}

// Key returns the key that owns t.
func (c *Catalog) Key(t oura.MetricType) Key {
	return c.keys[t]
}

func (c *Catalog) Keys() []Key {
	return lo.Map(c.entries, func(e Entry, _ int) Key {
		return e.Key
	})
}

// ListFields are the view model entries that default to an empty list.
func (c *Catalog) ListFields() []Field {
	var fields []Field
	for _, e := range c.entries {
		for _, t := range e.Types {
			fields = append(fields, c.fields[t])
		}
	}
	return lo.Uniq(fields)
}

func (c *Catalog) Singletons() []Field {
	return c.singletons
}
