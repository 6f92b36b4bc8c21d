package oura

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// HeartRatePoint is one upstream heart-rate sample. The stored JSON is kept
// as is in Raw; BPM and Timestamp are decoded leniently and stay zero when
// the upstream value is missing or has an unexpected type.
type HeartRatePoint struct {
	BPM       float64
	Timestamp time.Time
	Raw       json.RawMessage

	// Day is the stored day the point came from.
	Day Day
}

func (p *HeartRatePoint) UnmarshalJSON(b []byte) error {
	*p = HeartRatePoint{Raw: append(json.RawMessage(nil), b...)}

	var fields struct {
		BPM       json.RawMessage `json:"bpm"`
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	_ = json.Unmarshal(fields.BPM, &p.BPM)

	var ts string
	if err := json.Unmarshal(fields.Timestamp, &ts); err == nil {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			p.Timestamp = t
		}
	}
	return nil
}

func (p HeartRatePoint) MarshalJSON() ([]byte, error) {
	if len(p.Raw) != 0 {
		return p.Raw, nil
	}
	return json.Marshal(struct {
		BPM       float64   `json:"bpm"`
		Timestamp time.Time `json:"timestamp"`
	}{p.BPM, p.Timestamp})
}

type heartRateDay struct {
	Data []HeartRatePoint `json:"data"`
}

// EffectiveStart returns the start day a query for t actually uses and whether
// the requested start was overridden. Heart-rate queries never reach further
// back than the day before today.
func EffectiveStart(t MetricType, requested *Day, today Day) (*Day, bool) {
	if t != TypeHeartRate {
		return requested, false
	}

	floor := today.AddDays(-1)
	if requested == nil || requested.Before(floor) {
		return &floor, true
	}
	return requested, false
}

// FlattenHeartRate merges the point lists of heart-rate day-blobs into one
// sequence ordered by day, then timestamp. Points without a readable
// timestamp sort first within their day. Only a day-blob that is not an
// object with a data list is reported as malformed.
func FlattenHeartRate(days []*DayRecord) ([]HeartRatePoint, error) {
	points := make([]HeartRatePoint, 0)
	for _, d := range days {
		var blob heartRateDay
		if len(d.Payload) != 0 {
			if err := json.Unmarshal(d.Payload, &blob); err != nil {
				return nil, fmt.Errorf("%w: heart_rate %s: %v", ErrMalformedPayload, d.Day, err)
			}
		}

		dayPoints := blob.Data
		sort.SliceStable(dayPoints, func(i, j int) bool {
			return dayPoints[i].Timestamp.Before(dayPoints[j].Timestamp)
		})
		for _, p := range dayPoints {
			p.Day = d.Day
			points = append(points, p)
		}
	}
	return points, nil
}

// GroupHeartRate partitions points back into their stored days.
func GroupHeartRate(points []HeartRatePoint) map[Day][]HeartRatePoint {
	grouped := make(map[Day][]HeartRatePoint)
	for _, p := range points {
		grouped[p.Day] = append(grouped[p.Day], p)
	}
	return grouped
}

// WithinWindow keeps the points at or after now-window.
func WithinWindow(points []HeartRatePoint, now time.Time, window time.Duration) []HeartRatePoint {
	from := now.Add(-window)
	kept := make([]HeartRatePoint, 0, len(points))
	for _, p := range points {
		if !p.Timestamp.Before(from) {
			kept = append(kept, p)
		}
	}
	return kept
}
