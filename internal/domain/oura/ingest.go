package oura

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type apiItem struct {
	Day           string `json:"day"`
	Timestamp     string `json:"timestamp"`
	StartDatetime string `json:"start_datetime"`
}

// DayRecordsFromAPI converts an Oura API response body ({"data": [...]}) into
// one record per day. Items are keyed by "day", falling back to the date part
// of "timestamp" or "start_datetime"; items without a day are skipped. When
// several items share a day the last one wins, except for heart_rate where
// the day's items are kept together as {"data": [...]}.
func DayRecordsFromAPI(t MetricType, body []byte) ([]*DayRecord, error) {
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	byDay := make(map[Day][]json.RawMessage)
	for _, raw := range resp.Data {
		var item apiItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}

		day, ok := itemDay(item)
		if !ok {
			continue
		}
		byDay[day] = append(byDay[day], raw)
	}

	records := make([]*DayRecord, 0, len(byDay))
	for day, items := range byDay {
		var payload json.RawMessage
		if t == TypeHeartRate {
			b, err := json.Marshal(map[string][]json.RawMessage{"data": items})
			if err != nil {
				return nil, err
			}
			payload = b
		} else {
			payload = items[len(items)-1]
		}
		records = append(records, NewDayRecord(day, t, payload))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Day.Before(records[j].Day)
	})
	return records, nil
}

func itemDay(item apiItem) (Day, bool) {
	candidates := []string{item.Day, datePart(item.Timestamp), datePart(item.StartDatetime)}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if d, err := ParseDay(c); err == nil {
			return d, true
		}
	}
	return Day{}, false
}

func datePart(s string) string {
	before, _, _ := strings.Cut(s, "T")
	return before
}
