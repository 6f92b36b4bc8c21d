package dashboard

import (
	"encoding/json"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"time"
)

type TimeDomain struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ViewModel is the merged result of one aggregation. Every list field is
// present, possibly empty; singleton fields are present and may be null.
type ViewModel struct {
	Range           oura.DateRange
	Lists           map[Field][]json.RawMessage
	Singletons      map[Field]json.RawMessage
	HeartRate       []oura.HeartRatePoint
	HeartRateDomain TimeDomain
}

func newViewModel(c *Catalog, r oura.DateRange) *ViewModel {
	vm := &ViewModel{
		Range:      r,
		Lists:      make(map[Field][]json.RawMessage),
		Singletons: make(map[Field]json.RawMessage),
		HeartRate:  make([]oura.HeartRatePoint, 0),
	}
	for _, f := range c.ListFields() {
		vm.Lists[f] = make([]json.RawMessage, 0)
	}
	for _, f := range c.Singletons() {
		vm.Singletons[f] = nil
	}
	return vm
}

func (vm *ViewModel) List(f Field) []json.RawMessage {
	if items, ok := vm.Lists[f]; ok {
		return items
	}
	return make([]json.RawMessage, 0)
}

func (vm *ViewModel) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(vm.Lists)+len(vm.Singletons)+1)
	for f, items := range vm.Lists {
		out[string(f)] = items
	}
	for f, v := range vm.Singletons {
		if v == nil {
			out[string(f)] = nil
		} else {
			out[string(f)] = v
		}
	}
	out[string(FieldHeartRate)] = vm.HeartRate
	out["heart_rate_domain"] = vm.HeartRateDomain
	return json.Marshal(out)
}
