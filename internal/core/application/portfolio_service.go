package application

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/etherdeck-network/etherdeck-daemon/internal/core/ports"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/circuitbreaker"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/explorer"
	"github.com/etherdeck-network/etherdeck-daemon/pkg/mathutil"
)

// PortfolioService reconstructs the historical countervalue of an address by
// cross-referencing explorer balance snapshots with the historical price
// index.
type PortfolioService interface {
	// PortfolioHistory returns one point per day over the trailing window,
	// oldest first. Days whose data cannot be resolved are skipped.
	PortfolioHistory(ctx context.Context, address string, days int) ([]PortfolioPoint, error)
}

type portfolioService struct {
	explorerService explorer.Service
	priceService    ports.PriceService

	explorerCB *gobreaker.CircuitBreaker
	priceCB    *gobreaker.CircuitBreaker
}

// NewPortfolioService returns a PortfolioService backed by the given explorer
// and price providers.
func NewPortfolioService(
	explorerService explorer.Service,
	priceService ports.PriceService,
) PortfolioService {
	return &portfolioService{
		explorerService: explorerService,
		priceService:    priceService,
		explorerCB:      circuitbreaker.NewCircuitBreaker("explorer"),
		priceCB:         circuitbreaker.NewCircuitBreaker("price"),
	}
}

func (p *portfolioService) PortfolioHistory(
	ctx context.Context, address string, days int,
) ([]PortfolioPoint, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now().UTC()
	points := make([]*PortfolioPoint, days)

	wg := &sync.WaitGroup{}
	for i := 0; i < days; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			date := now.AddDate(0, 0, -(days - 1 - i))
			point, err := p.pointAt(ctx, address, date)
			if err != nil {
				log.WithError(err).WithField("date", date.Format("2006-01-02")).
					Debug("skipped portfolio point")
				return
			}
			points[i] = point
		}(i)
	}
	wg.Wait()

	history := make([]PortfolioPoint, 0, days)
	for _, point := range points {
		if point != nil {
			history = append(history, *point)
		}
	}
	if len(history) <= 0 {
		return nil, ErrProviderUnavailable
	}
	return history, nil
}

func (p *portfolioService) pointAt(
	ctx context.Context, address string, date time.Time,
) (*PortfolioPoint, error) {
	res, err := p.explorerCB.Execute(func() (interface{}, error) {
		return p.explorerService.GetBlockNumberByTime(date.Unix())
	})
	if err != nil {
		return nil, err
	}
	blockNumber := res.(uint64)

	res, err = p.explorerCB.Execute(func() (interface{}, error) {
		return p.explorerService.GetBalance(address, fmt.Sprintf("%d", blockNumber))
	})
	if err != nil {
		return nil, err
	}
	balance := res.(*big.Int)

	res, err = p.priceCB.Execute(func() (interface{}, error) {
		return p.priceService.GetEthPriceAt(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	price := res.(decimal.Decimal)

	ethAmount := mathutil.WeiToEth(balance)
	return &PortfolioPoint{
		Date:       date.Truncate(24 * time.Hour),
		EthAmount:  ethAmount,
		FiatAmount: mathutil.Fiat(ethAmount, price),
	}, nil
}
