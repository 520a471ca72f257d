package provider

import (
	"context"
	"fmt"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/screener/pkg/screener/types"
)

// Quoter fetches the live price and display name of a symbol.
type Quoter interface {
	Quote(ctx context.Context, sym string) (types.Quote, error)
}

// YFQuoter implements Quoter using yf-go.
type YFQuoter struct {
	client  *yfgo.Client
	timeout time.Duration
}

func NewYFQuoter(timeout time.Duration) *YFQuoter {
	return &YFQuoter{client: yfgo.NewClient(), timeout: timeout}
}

func (s *YFQuoter) Quote(ctx context.Context, sym string) (types.Quote, error) {
	if sym == "" {
		return types.Quote{}, nil
	}
	mods := []yfgo.QuoteSummaryModule{yfgo.ModulePrice}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.client.QuoteSummaryTyped(cctx, sym, mods)
	if err != nil {
		return types.Quote{}, err
	}
	if res.Price == nil {
		return types.Quote{}, fmt.Errorf("no price for %s", sym)
	}

	var q types.Quote
	if p := res.Price.RegularMarketPrice; p.Raw != nil {
		q.Price = types.Float(*p.Raw)
	}
	if res.Price.ShortName != "" {
		q.Name = res.Price.ShortName
	} else if res.Price.LongName != "" {
		q.Name = res.Price.LongName
	}
	return q, nil
}
