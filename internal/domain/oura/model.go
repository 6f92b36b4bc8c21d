package oura

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknownMetricType  = errors.New("unknown metric type")
	ErrInvalidDay         = errors.New("invalid day")
	ErrMalformedPayload   = errors.New("malformed payload")
)

// MetricType is the discriminator of a stored day-blob.
type MetricType string

const (
	TypeActivity          MetricType = "activity"
	TypeReadiness         MetricType = "readiness"
	TypeSleepDaily        MetricType = "sleep_daily"
	TypeDailyStress       MetricType = "daily_stress"
	TypeDailySpO2         MetricType = "daily_spo2"
	TypeDailyResilience   MetricType = "daily_resilience"
	TypeCardioAge         MetricType = "cardio_age"
	TypeHeartRate         MetricType = "heart_rate"
	TypeSleepDetailed     MetricType = "sleep_detailed"
	TypeSleepTime         MetricType = "sleep_time"
	TypeSession           MetricType = "session"
	TypeWorkout           MetricType = "workout"
	TypeTag               MetricType = "tag"
	TypeEnhancedTag       MetricType = "enhanced_tag"
	TypeRestModePeriod    MetricType = "rest_mode_period"
	TypeRingConfiguration MetricType = "ring_configuration"
	TypeVO2Max            MetricType = "vo2_max"
)

var AllMetricTypes = []MetricType{
	TypeActivity, TypeReadiness, TypeSleepDaily, TypeDailyStress,
	TypeDailySpO2, TypeDailyResilience, TypeCardioAge, TypeHeartRate,
	TypeSleepDetailed, TypeSleepTime, TypeSession, TypeWorkout,
	TypeTag, TypeEnhancedTag, TypeRestModePeriod, TypeRingConfiguration, TypeVO2Max,
}

func ParseMetricType(s string) (MetricType, error) {
	for _, t := range AllMetricTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetricType, s)
}

const DayLayout = "2006-01-02"

// Day is a calendar day without time of day, always held at UTC midnight.
type Day struct {
	t time.Time
}

func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	return Day{t: t}, nil
}

func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) AddDays(n int) Day {
	return Day{t: d.t.AddDate(0, 0, n)}
}

func (d Day) Before(other Day) bool {
	return d.t.Before(other.t)
}

func (d Day) After(other Day) bool {
	return d.t.After(other.t)
}

func (d Day) IsZero() bool {
	return d.t.IsZero()
}

func (d Day) Time() time.Time {
	return d.t
}

func (d Day) String() string {
	return d.t.Format(DayLayout)
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan accepts DATE columns as returned by pgx and TEXT columns as stored by sqlite.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DayOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidDay, src)
	}
}

func (d *Day) scanString(s string) error {
	if len(s) > len(DayLayout) {
		s = s[:len(DayLayout)]
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is inclusive on both ends; a nil bound is unbounded.
type DateRange struct {
	Start *Day
	End   *Day
}

func (r DateRange) Contains(d Day) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// DayRecord is one stored row: the payload of one metric type for one day.
type DayRecord struct {
	Day     Day
	Type    MetricType
	Payload json.RawMessage
}

func NewDayRecord(day Day, t MetricType, payload json.RawMessage) *DayRecord {
	return &DayRecord{
		Day:     day,
		Type:    t,
		Payload: payload,
	}
}
