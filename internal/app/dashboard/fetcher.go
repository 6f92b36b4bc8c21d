package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	ouraservice "github.com/ashwin-iyer1/portfolio_backend/internal/app/oura"
	"github.com/ashwin-iyer1/portfolio_backend/internal/app/unitofwork"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
)

// ServiceFetcher reads metrics straight from the query service.
type ServiceFetcher struct {
	service *ouraservice.Service
	uow     *unitofwork.UnitOfWork[*ouraservice.AtomicContext]
}

func NewServiceFetcher(
	service *ouraservice.Service,
	uow *unitofwork.UnitOfWork[*ouraservice.AtomicContext],
) *ServiceFetcher {
	return &ServiceFetcher{
		service: service,
		uow:     uow,
	}
}

func (f *ServiceFetcher) Fetch(ctx context.Context, t oura.MetricType, r oura.DateRange) ([]json.RawMessage, error) {
	res, err := f.service.Query(ctx, f.uow, ouraservice.Query{Type: &t, Start: r.Start, End: r.End})
	if err != nil {
		return nil, err
	}

	data := res.Data()
	items := make([]json.RawMessage, 0, len(data))
	for _, d := range data {
		b, err := json.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("encode %s item: %w", t, err)
		}
		items = append(items, b)
	}
	return items, nil
}
