package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/smarttoll/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

// TrafficPolicy maps an hour's vehicle count to a traffic level.
type TrafficPolicy struct {
	High   int
	Normal int
}

func DefaultTrafficPolicy() TrafficPolicy {
	return TrafficPolicy{High: 100, Normal: 50}
}

func (p TrafficPolicy) Classify(count int) models.TrafficLevel {
	switch {
	case count > p.High:
		return models.TrafficHigh
	case count > p.Normal:
		return models.TrafficNormal
	default:
		return models.TrafficLow
	}
}

// TrafficAggregator rolls completed toll transactions up into hourly buckets.
type TrafficAggregator struct {
	db          *sql.DB
	sink        TrafficSink
	policy      TrafficPolicy
	loc         *time.Location
	concurrency int
}

type AggregatorOptions struct {
	Policy      TrafficPolicy
	Location    *time.Location
	Concurrency int
}

func NewTrafficAggregator(db *sql.DB, sink TrafficSink, opts AggregatorOptions) *TrafficAggregator {
	a := &TrafficAggregator{
		db:          db,
		sink:        sink,
		policy:      opts.Policy,
		loc:         opts.Location,
		concurrency: opts.Concurrency,
	}
	if a.policy == (TrafficPolicy{}) {
		a.policy = DefaultTrafficPolicy()
	}
	if a.loc == nil {
		a.loc = time.Local
	}
	if a.concurrency <= 0 {
		a.concurrency = 4
	}
	return a
}

// alignWindow widens w to whole hours so no bucket is computed from a partial hour.
func (a *TrafficAggregator) alignWindow(w models.Window) models.Window {
	from := w.From.In(a.loc)
	to := w.To.In(a.loc)

	start := time.Date(from.Year(), from.Month(), from.Day(), from.Hour(), 0, 0, 0, a.loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), to.Hour(), 0, 0, 0, a.loc)
	if end.Before(to) {
		end = end.Add(time.Hour)
	}
	return models.Window{From: start, To: end}
}

type bucketKey struct {
	date string
	hour int
}

// AggregateTraffic recomputes the hourly buckets of one plaza over window and
// upserts them. Hours without traffic produce no bucket. A refunded toll still
// counts as a vehicle but adds nothing to revenue.
func (a *TrafficAggregator) AggregateTraffic(ctx context.Context, plazaID int64, window models.Window) ([]models.HourlyBucket, error) {
	if err := window.Validate(); err != nil {
		return nil, newError(KindInvalidRequest, "%v", err)
	}
	aligned := a.alignWindow(window)

	rows, err := a.db.QueryContext(ctx, `
		SELECT t.created_at, t.amount, `+refundExists+`
		FROM toll_transactions t
		WHERE t.plaza_id = $1 AND t.status = 'completed' AND t.created_at >= $2 AND t.created_at < $3`,
		plazaID, aligned.From, aligned.To)
	if err != nil {
		return nil, persistenceError("load plaza transactions", err)
	}
	defer rows.Close()

	grouped := map[bucketKey]*models.HourlyBucket{}
	for rows.Next() {
		var (
			createdAt time.Time
			amount    models.Amount
			refunded  bool
		)
		if err := rows.Scan(&createdAt, &amount, &refunded); err != nil {
			return nil, persistenceError("scan plaza transaction", err)
		}
		local := createdAt.In(a.loc)
		key := bucketKey{date: local.Format(models.DateLayout), hour: local.Hour()}
		b, ok := grouped[key]
		if !ok {
			b = &models.HourlyBucket{PlazaID: plazaID, Date: key.date, Hour: key.hour}
			grouped[key] = b
		}
		b.VehicleCount++
		if !refunded {
			b.Revenue += amount
		}
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("load plaza transactions", err)
	}

	buckets := make([]models.HourlyBucket, 0, len(grouped))
	for _, b := range grouped {
		b.Level = a.policy.Classify(b.VehicleCount)
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Date != buckets[j].Date {
			return buckets[i].Date < buckets[j].Date
		}
		return buckets[i].Hour < buckets[j].Hour
	})

	if len(buckets) > 0 {
		if err := a.sink.Upsert(ctx, buckets); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"plaza_id": plazaID,
		"from":     aligned.From,
		"to":       aligned.To,
		"buckets":  len(buckets),
	}).Info("Traffic aggregated")
	return buckets, nil
}

type AggregateReport struct {
	Plazas  int `json:"plazas"`
	Buckets int `json:"buckets"`
}

// AggregateAll runs AggregateTraffic for every plaza, a bounded number at a time.
// The first failure cancels the plazas not yet started.
func (a *TrafficAggregator) AggregateAll(ctx context.Context, window models.Window) (*AggregateReport, error) {
	plazas, err := a.listPlazas(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu     sync.Mutex
		report = &AggregateReport{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, plaza := range plazas {
		plaza := plaza
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			buckets, err := a.AggregateTraffic(gctx, plaza.ID, window)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"plaza_id": plaza.ID,
					"plaza":    plaza.Name,
				}).Error("Traffic aggregation failed")
				return err
			}
			mu.Lock()
			report.Plazas++
			report.Buckets += len(buckets)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func (a *TrafficAggregator) listPlazas(ctx context.Context) ([]models.Plaza, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, name, location, city, state, lanes FROM plazas ORDER BY id`)
	if err != nil {
		return nil, persistenceError("list plazas", err)
	}
	defer rows.Close()

	var plazas []models.Plaza
	for rows.Next() {
		var p models.Plaza
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, &p.City, &p.State, &p.Lanes); err != nil {
			return nil, persistenceError("scan plaza", err)
		}
		plazas = append(plazas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list plazas", err)
	}
	return plazas, nil
}
