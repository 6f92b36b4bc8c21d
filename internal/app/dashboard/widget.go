package dashboard

import (
	"encoding/json"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"github.com/samber/lo"
	"math"
	"strings"
	"time"
)

const (
	EmptyText        = "No data available"
	NoPersonalInfo   = "No Personal Info"
	KindBar          = "bar"
	KindLine         = "line"
	KindArea         = "area"
	KindGroupedBar   = "grouped_bar"
	KindStackedBar   = "stacked_bar"
	KindList         = "list"
	KindCard         = "card"
	secondsPerHour   = 3600.0
	hourDisplayShift = -time.Hour
)

type Theme struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Grid       string `json:"grid"`
	Bar        string `json:"bar"`
	Line       string `json:"line"`
	Accent     string `json:"accent"`
	Recovery   string `json:"recovery"`
}

func ThemeFor(dark bool) Theme {
	if dark {
		return Theme{
			Background: "#050505",
			Text:       "#e0e0e0",
			Grid:       "#222222",
			Bar:        "#c596ee",
			Line:       "#c596ee",
			Accent:     "#ff0844",
			Recovery:   "#00f260",
		}
	}
	return Theme{
		Background: "#ffffff",
		Text:       "#000000",
		Grid:       "#e0e0e0",
		Bar:        "#000000",
		Line:       "#000000",
		Accent:     "#ff0000",
		Recovery:   "#00aa44",
	}
}

type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type Series struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

type Item struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// Widget is a render-ready chart or card description.
type Widget struct {
	Key       Key         `json:"key"`
	Title     string      `json:"title"`
	Kind      string      `json:"kind"`
	Theme     Theme       `json:"theme"`
	Series    []Series    `json:"series,omitempty"`
	Items     []Item      `json:"items,omitempty"`
	Domain    *TimeDomain `json:"domain,omitempty"`
	YMax      float64     `json:"y_max,omitempty"`
	Empty     bool        `json:"empty"`
	EmptyText string      `json:"empty_text,omitempty"`
}

func emptyWidget(key Key, title, kind, text string, dark bool) Widget {
	return Widget{
		Key:       key,
		Title:     title,
		Kind:      kind,
		Theme:     ThemeFor(dark),
		Empty:     true,
		EmptyText: text,
	}
}

// decodeAll decodes every record, reporting false for an empty sequence or
// any record that does not decode.
func decodeAll[T any](records []json.RawMessage) ([]T, bool) {
	if len(records) == 0 {
		return nil, false
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

type dayValue struct {
	Day string `json:"day"`
}

func (d dayValue) dayOf() string { return d.Day }

type dated interface {
	dayOf() string
}

type WidgetFunc func(records []json.RawMessage, dark bool) Widget

// barChart renders one bar per day. yFloor is the minimum upper bound of the
// value axis.
func barChart[T dated](key Key, title string, value func(T) float64, yFloor float64) WidgetFunc {
	return func(records []json.RawMessage, dark bool) Widget {
		rows, ok := decodeAll[T](records)
		if !ok {
			return emptyWidget(key, title, KindBar, EmptyText, dark)
		}
		theme := ThemeFor(dark)
		s := Series{Name: string(key), Label: title, Color: theme.Bar}
		yMax := yFloor
		for _, r := range rows {
			v := value(r)
			s.Points = append(s.Points, Point{X: r.dayOf(), Y: v})
			yMax = math.Max(yMax, v)
		}
		return Widget{Key: key, Title: title, Kind: KindBar, Theme: theme, Series: []Series{s}, YMax: yMax}
	}
}

// lineChart renders one value per day; days with zero or missing values are
// dropped when skipZero is set.
func lineChart[T dated](key Key, title, kind string, value func(T) float64, skipZero bool) WidgetFunc {
	return func(records []json.RawMessage, dark bool) Widget {
		rows, ok := decodeAll[T](records)
		if !ok {
			return emptyWidget(key, title, kind, EmptyText, dark)
		}
		theme := ThemeFor(dark)
		s := Series{Name: string(key), Label: title, Color: theme.Line}
		for _, r := range rows {
			v := value(r)
			if skipZero && v == 0 {
				continue
			}
			s.Points = append(s.Points, Point{X: r.dayOf(), Y: v})
		}
		if len(s.Points) == 0 {
			return emptyWidget(key, title, kind, EmptyText, dark)
		}
		return Widget{Key: key, Title: title, Kind: kind, Theme: theme, Series: []Series{s}}
	}
}

type component struct {
	key   string
	label string
	color string
}

type contributorsRow struct {
	Day          string             `json:"day"`
	Contributors map[string]float64 `json:"contributors"`
}

func contributorsChart(key Key, title, kind string, components []component) WidgetFunc {
	return func(records []json.RawMessage, dark bool) Widget {
		rows, ok := decodeAll[contributorsRow](records)
		if !ok {
			return emptyWidget(key, title, kind, EmptyText, dark)
		}
		series := lo.Map(components, func(c component, _ int) Series {
			s := Series{Name: c.key, Label: c.label, Color: c.color}
			for _, r := range rows {
				s.Points = append(s.Points, Point{X: r.Day, Y: r.Contributors[c.key]})
			}
			return s
		})
		return Widget{Key: key, Title: title, Kind: kind, Theme: ThemeFor(dark), Series: series, YMax: 100}
	}
}

type activityRow struct {
	dayValue
	Steps float64 `json:"steps"`
}

type scoreRow struct {
	dayValue
	Score float64 `json:"score"`
}

type workoutRow struct {
	dayValue
	Calories float64 `json:"calories"`
}

type spo2Row struct {
	dayValue
	SpO2 *struct {
		Average float64 `json:"average"`
	} `json:"spo2_percentage"`
}

type cardioAgeRow struct {
	dayValue
	VascularAge float64 `json:"vascular_age"`
}

type vo2Row struct {
	dayValue
	VO2Max float64 `json:"vo2_max"`
}

var (
	StepsWidget = barChart(KeyActivity, "STEPS",
		func(r activityRow) float64 { return r.Steps }, 1000)

	ReadinessWidget = lineChart(KeyReadiness, "READINESS", KindArea,
		func(r scoreRow) float64 { return r.Score }, false)

	SpO2Widget = lineChart(KeySpO2, "SpO2 %", KindLine,
		func(r spo2Row) float64 {
			if r.SpO2 == nil {
				return 0
			}
			return r.SpO2.Average
		}, false)

	WorkoutWidget = barChart(KeyWorkout, "WORKOUT CALS",
		func(r workoutRow) float64 { return r.Calories }, 100)

	CardioAgeWidget = lineChart(KeyCardioAge, "VASCULAR AGE", KindLine,
		func(r cardioAgeRow) float64 { return r.VascularAge }, true)

	VO2MaxWidget = lineChart(KeyVO2Max, "VO2 MAX", KindLine,
		func(r vo2Row) float64 { return r.VO2Max }, false)

	SleepContributorsWidget = contributorsChart(KeySleep, "SLEEP CONTRIBUTORS", KindGroupedBar, []component{
		{"deep_sleep", "Deep", "#4facfe"},
		{"rem_sleep", "REM", "#c596ee"},
		{"efficiency", "Eff", "#00f260"},
		{"latency", "Lat", "#fdbb2d"},
		{"restfulness", "Rest", "#ff0844"},
		{"timing", "Time", "#16d9e3"},
		{"total_sleep", "Total", "#b21f1f"},
	})

	ResilienceWidget = contributorsChart(KeyResilience, "RESILIENCE", KindLine, []component{
		{"sleep_recovery", "Sleep", "#c596ee"},
		{"daytime_recovery", "Daytime", "#00f260"},
		{"stress", "Stress", "#ff0844"},
	})
)

type stressRow struct {
	dayValue
	StressHigh   float64 `json:"stress_high"`
	RecoveryHigh float64 `json:"recovery_high"`
}

func StressWidget(records []json.RawMessage, dark bool) Widget {
	const title = "STRESS & RECOVERY"
	rows, ok := decodeAll[stressRow](records)
	if !ok {
		return emptyWidget(KeyStress, title, KindGroupedBar, EmptyText, dark)
	}
	theme := ThemeFor(dark)
	stress := Series{Name: "stress_high", Label: "Stress", Color: theme.Accent}
	recovery := Series{Name: "recovery_high", Label: "Recovery", Color: theme.Recovery}
	yMax := 0.0
	for _, r := range rows {
		stress.Points = append(stress.Points, Point{X: r.Day, Y: r.StressHigh})
		recovery.Points = append(recovery.Points, Point{X: r.Day, Y: r.RecoveryHigh})
		yMax = math.Max(yMax, math.Max(r.StressHigh, r.RecoveryHigh))
	}
	return Widget{Key: KeyStress, Title: title, Kind: KindGroupedBar, Theme: theme, Series: []Series{stress, recovery}, YMax: yMax}
}

type sleepPhasesRow struct {
	dayValue
	Deep  float64 `json:"deep_sleep_duration"`
	REM   float64 `json:"rem_sleep_duration"`
	Light float64 `json:"light_sleep_duration"`
	Awake float64 `json:"awake_time"`
	Total float64 `json:"total_sleep_duration"`
}

// SleepPhasesWidget stacks deep, REM, light and awake time in hours.
func SleepPhasesWidget(records []json.RawMessage, dark bool) Widget {
	const title = "SLEEP PHASES"
	rows, ok := decodeAll[sleepPhasesRow](records)
	if !ok {
		return emptyWidget(KeySleepDetail, title, KindStackedBar, EmptyText, dark)
	}

	phases := []struct {
		name, label, color string
		value              func(sleepPhasesRow) float64
	}{
		{"deep", "Deep", "#4facfe", func(r sleepPhasesRow) float64 { return r.Deep }},
		{"rem", "REM", "#b721ff", func(r sleepPhasesRow) float64 { return r.REM }},
		{"light", "Light", "#21d4fd", func(r sleepPhasesRow) float64 { return r.Light }},
		{"awake", "Awake", "#ff0844", func(r sleepPhasesRow) float64 { return r.Awake }},
	}

	series := make([]Series, 0, len(phases))
	for _, ph := range phases {
		s := Series{Name: ph.name, Label: ph.label, Color: ph.color}
		for _, r := range rows {
			s.Points = append(s.Points, Point{X: r.Day, Y: ph.value(r) / secondsPerHour})
		}
		series = append(series, s)
	}

	yMax := 0.0
	for _, r := range rows {
		yMax = math.Max(yMax, (r.Total+r.Awake)/secondsPerHour)
	}
	if yMax == 0 {
		yMax = 8
	}
	return Widget{Key: KeySleepDetail, Title: title, Kind: KindStackedBar, Theme: ThemeFor(dark), Series: series, YMax: yMax}
}

// HeartRateWidget plots bpm over time. Points are shown one hour earlier
// than their timestamp, matching how the ring reports them.
func HeartRateWidget(records []json.RawMessage, domain TimeDomain, dark bool) Widget {
	const title = "HEART RATE"
	rows, ok := decodeAll[oura.HeartRatePoint](records)
	if !ok {
		return emptyWidget(KeyHeartRate, title, KindArea, EmptyText, dark)
	}
	theme := ThemeFor(dark)
	s := Series{Name: "bpm", Label: "BPM", Color: theme.Line}
	yMax := 0.0
	for _, r := range rows {
		s.Points = append(s.Points, Point{X: r.Timestamp.Add(hourDisplayShift).Format(time.RFC3339), Y: r.BPM})
		yMax = math.Max(yMax, r.BPM)
	}
	d := domain
	return Widget{Key: KeyHeartRate, Title: title, Kind: KindArea, Theme: theme, Series: []Series{s}, Domain: &d, YMax: yMax + 10}
}

// listCard renders one item per record; records that fail to decode make
// the whole card empty.
func listCard[T any](key Key, title string, item func(T) Item) WidgetFunc {
	return func(records []json.RawMessage, dark bool) Widget {
		rows, ok := decodeAll[T](records)
		if !ok {
			return emptyWidget(key, title, KindList, EmptyText, dark)
		}
		return Widget{Key: key, Title: title, Kind: KindList, Theme: ThemeFor(dark), Items: lo.Map(rows, func(r T, _ int) Item {
			return item(r)
		})}
	}
}

type sleepTimeRow struct {
	dayValue
	Status         string `json:"status"`
	Recommendation string `json:"recommendation"`
	OptimalBedtime *struct {
		StartOffset float64 `json:"start_offset"`
		EndOffset   float64 `json:"end_offset"`
	} `json:"optimal_bedtime"`
}

type restModeRow struct {
	StartDay string `json:"start_day"`
	EndDay   string `json:"end_day"`
	Episodes []struct {
		Tags []string `json:"tags"`
	} `json:"episodes"`
}

type tagRow struct {
	dayValue
	Text string   `json:"text"`
	Tags []string `json:"tags"`
}

type enhancedTagRow struct {
	dayValue
	TagTypeCode string     `json:"tag_type_code"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type sessionRow struct {
	dayValue
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

type ringConfigRow struct {
	Color           string `json:"color"`
	Design          string `json:"design"`
	FirmwareVersion string `json:"firmware_version"`
	HardwareType    string `json:"hardware_type"`
	Size            int    `json:"size"`
}

var (
	SleepWindowsWidget = listCard(KeySleepTime, "SLEEP WINDOWS", func(r sleepTimeRow) Item {
		lines := []string{"Status: " + r.Status}
		if r.OptimalBedtime != nil {
			lines = append(lines, fmt.Sprintf("Offset: %.0fh - %.0fh",
				math.Round(r.OptimalBedtime.StartOffset/secondsPerHour),
				math.Round(r.OptimalBedtime.EndOffset/secondsPerHour)))
		}
		if r.Recommendation != "" {
			lines = append(lines, r.Recommendation)
		}
		return Item{Heading: r.Day, Lines: lines}
	})

	RestModeWidget = listCard(KeyRestMode, "REST MODE", func(r restModeRow) Item {
		end := r.EndDay
		if end == "" {
			end = "Ongoing"
		}
		lines := make([]string, 0, len(r.Episodes))
		for _, ep := range r.Episodes {
			lines = append(lines, "- "+strings.Join(ep.Tags, ", "))
		}
		return Item{Heading: r.StartDay + " -> " + end, Lines: lines}
	})

	TagsWidget = listCard(KeyTags, "TAGS", func(r tagRow) Item {
		text := r.Text
		if text == "" {
			text = strings.Join(r.Tags, ", ")
		}
		return Item{Heading: r.Day, Lines: []string{text}}
	})

	EnhancedTagsWidget = listCard(KeyEnhancedTags, "ENHANCED TAGS", func(r enhancedTagRow) Item {
		lines := []string{r.TagTypeCode}
		if r.StartTime != nil && r.EndTime != nil {
			lines = append(lines, r.StartTime.Format("15:04")+" - "+r.EndTime.Format("15:04"))
		}
		return Item{Heading: r.Day, Lines: lines}
	})

	SessionsWidget = listCard(KeySessions, "SESSIONS", func(r sessionRow) Item {
		return Item{Heading: r.Day, Lines: []string{fmt.Sprintf("%s (%.0fm)", r.Type, math.Round(r.Duration/60))}}
	})

	RingConfigWidget = listCard(KeyRingConfig, "RING CONFIG", func(r ringConfigRow) Item {
		return Item{Heading: r.HardwareType, Lines: []string{
			fmt.Sprintf("Color: %s", r.Color),
			fmt.Sprintf("Design: %s", r.Design),
			fmt.Sprintf("Size: %d", r.Size),
			fmt.Sprintf("Firmware: %s", r.FirmwareVersion),
		}}
	})
)

type personalInfo struct {
	Age           int     `json:"age"`
	Weight        float64 `json:"weight"`
	Height        float64 `json:"height"`
	BiologicalSex string  `json:"biological_sex"`
}

// PersonalInfoWidget accepts a single object or a list holding one.
func PersonalInfoWidget(raw json.RawMessage, dark bool) Widget {
	const title = "PERSONAL INFO"
	if len(raw) == 0 || string(raw) == "null" {
		return emptyWidget(KeyPersonalInfo, title, KindCard, NoPersonalInfo, dark)
	}

	var info personalInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		var many []personalInfo
		if err := json.Unmarshal(raw, &many); err != nil || len(many) == 0 {
			return emptyWidget(KeyPersonalInfo, title, KindCard, NoPersonalInfo, dark)
		}
		info = many[0]
	}

	return Widget{Key: KeyPersonalInfo, Title: title, Kind: KindCard, Theme: ThemeFor(dark), Items: []Item{{
		Heading: title,
		Lines: []string{
			fmt.Sprintf("Age: %d", info.Age),
			fmt.Sprintf("Weight: %g kg", info.Weight),
			fmt.Sprintf("Height: %g m", info.Height),
			fmt.Sprintf("Sex: %s", info.BiologicalSex),
		},
	}}}
}

// Layout is the default widget order.
var Layout = []Key{
	KeyActivity, KeyHeartRate, KeySleep, KeySleepDetail, KeyReadiness,
	KeyStress, KeySpO2, KeyResilience, KeyCardioAge, KeyVO2Max, KeyWorkout,
	KeySleepTime, KeyPersonalInfo, KeyRestMode, KeyTags, KeyEnhancedTags,
	KeySessions, KeyRingConfig,
}

var listWidgets = map[Key]struct {
	field  Field
	render WidgetFunc
}{
	KeyActivity:     {FieldActivity, StepsWidget},
	KeyReadiness:    {FieldReadiness, ReadinessWidget},
	KeySleep:        {FieldSleep, SleepContributorsWidget},
	KeySleepDetail:  {FieldSleepDocuments, SleepPhasesWidget},
	KeyStress:       {FieldDailyStress, StressWidget},
	KeySpO2:         {FieldDailySpO2, SpO2Widget},
	KeyResilience:   {FieldDailyResilience, ResilienceWidget},
	KeyCardioAge:    {FieldCardioAge, CardioAgeWidget},
	KeyVO2Max:       {FieldVO2Max, VO2MaxWidget},
	KeyWorkout:      {FieldWorkout, WorkoutWidget},
	KeySleepTime:    {FieldSleepTime, SleepWindowsWidget},
	KeyRestMode:     {FieldRestModePeriod, RestModeWidget},
	KeyTags:         {FieldTag, TagsWidget},
	KeyEnhancedTags: {FieldEnhancedTag, EnhancedTagsWidget},
	KeySessions:     {FieldSession, SessionsWidget},
	KeyRingConfig:   {FieldRingConfiguration, RingConfigWidget},
}

// Render lays out the widgets of subset, or of every key when subset is empty.
func Render(vm *ViewModel, subset []Key, dark bool) []Widget {
	keys := Layout
	if len(subset) != 0 {
		keys = lo.Filter(Layout, func(k Key, _ int) bool {
			return lo.Contains(subset, k)
		})
	}

	widgets := make([]Widget, 0, len(keys))
	for _, k := range keys {
		switch k {
		case KeyHeartRate:
			widgets = append(widgets, HeartRateWidget(vm.List(FieldHeartRate), vm.HeartRateDomain, dark))
		case KeyPersonalInfo:
			widgets = append(widgets, PersonalInfoWidget(vm.Singletons[FieldPersonalInfo], dark))
		default:
			w := listWidgets[k]
			widgets = append(widgets, w.render(vm.List(w.field), dark))
		}
	}
	return widgets
}
