// Package generator materializes daily orders from recurring templates.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/orderflow-cyclic/internal/domain"
	"github.com/joao-fontenele/orderflow-cyclic/internal/resolver"
	"github.com/joao-fontenele/orderflow-cyclic/internal/schedule"
)

var tracer = otel.Tracer("generator")

// OrderGeneratedTopic is where the engine publishes one event per reconciled order.
const OrderGeneratedTopic = "order.generated"

type TemplateSource interface {
	FindAll(ctx context.Context) ([]domain.OrderTemplate, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Stores groups the collections a run reads and writes.
type Stores struct {
	Templates TemplateSource
	Catalog   resolver.Catalog
	Orders    OrderStore
}

// Summary reports a run. Created and Skipped count templates and always add
// up to the number of templates evaluated; the Orders fields count records.
type Summary struct {
	TargetDate    string `json:"target_date"`
	Created       int    `json:"created"`
	Skipped       int    `json:"skipped"`
	OrdersCreated int    `json:"orders_created"`
	OrdersUpdated int    `json:"orders_updated"`
}

// Plan is the aggregated, not yet persisted, result of a run.
type Plan struct {
	TargetDate string              `json:"target_date"`
	Drafts     []domain.OrderDraft `json:"drafts"`
	Ordered    int                 `json:"ordered"`
	Skipped    int                 `json:"skipped"`
}

type Engine struct {
	stores      Stores
	logger      *slog.Logger
	publisher   Publisher
	metrics     *Metrics
	location    *time.Location
	fallback    resolver.FallbackPolicy
	policy      StatusPolicy
	concurrency int
	now         func() time.Time
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLocation sets the zone deadline hours are expressed in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.location = loc }
}

func WithFallbackPolicy(p resolver.FallbackPolicy) Option {
	return func(e *Engine) { e.fallback = p }
}

func WithStatusPolicy(p StatusPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithFlushConcurrency bounds how many users are reconciled at once.
func WithFlushConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = max(n, 1) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(stores Stores, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		stores:      stores,
		logger:      logger,
		location:    time.UTC,
		fallback:    resolver.FallbackStrict,
		policy:      StatusPreserve,
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		m, err := NewMetrics(otel.Meter("generator"))
		if err != nil {
			logger.Warn("failed to create generator metrics", "error", err)
		}
		e.metrics = m
	}
	return e
}

// TargetDate returns the UTC calendar date daysAhead days after now.
func TargetDate(now time.Time, daysAhead int) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysAhead)
}

// Run resolves every template for date and reconciles one order per user.
// Per-template problems are skipped; a store failure aborts the run, leaving
// orders reconciled so far in place.
func (e *Engine) Run(ctx context.Context, date time.Time) (Summary, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "generator.run")
	defer span.End()

	summary, err := e.run(ctx, date)
	e.metrics.run(ctx, started, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return summary, err
	}

	span.SetAttributes(
		attribute.String("target_date", summary.TargetDate),
		attribute.Int("templates.ordered", summary.Created),
		attribute.Int("templates.skipped", summary.Skipped),
		attribute.Int("orders.created", summary.OrdersCreated),
		attribute.Int("orders.updated", summary.OrdersUpdated),
	)
	e.logger.Info("orders generated",
		"target_date", summary.TargetDate,
		"created", summary.Created,
		"skipped", summary.Skipped,
		"orders_created", summary.OrdersCreated,
		"orders_updated", summary.OrdersUpdated,
	)
	return summary, nil
}

func (e *Engine) run(ctx context.Context, date time.Time) (Summary, error) {
	plan, err := e.Plan(ctx, date)
	if err != nil {
		return Summary{TargetDate: date.Format(time.DateOnly)}, err
	}

	summary := Summary{TargetDate: plan.TargetDate, Created: plan.Ordered, Skipped: plan.Skipped}
	err = e.flush(ctx, plan.Drafts, &summary)
	return summary, err
}

// Plan resolves and aggregates without writing anything.
func (e *Engine) Plan(ctx context.Context, date time.Time) (*Plan, error) {
	dateKey := date.Format(time.DateOnly)

	templates, err := e.stores.Templates.FindAll(ctx)
	if err != nil {
		var unavailable *domain.StoreUnavailableError
		if !errors.As(err, &unavailable) {
			err = &domain.StoreUnavailableError{Op: "find templates", Err: err}
		}
		return nil, err
	}

	products := resolver.NewDispatcher(resolver.NewCachedCatalog(e.stores.Catalog), e.fallback)
	agg := NewAggregator(dateKey)

	for _, tpl := range templates {
		outcome, err := e.contribute(ctx, agg, products, tpl, date)
		if err != nil {
			return nil, err
		}
		e.metrics.template(ctx, outcome)
	}

	return &Plan{TargetDate: dateKey, Drafts: agg.Drafts(), Ordered: agg.Ordered(), Skipped: agg.Skipped()}, nil
}

func (e *Engine) contribute(ctx context.Context, agg *Aggregator, products resolver.Resolver, tpl domain.OrderTemplate, date time.Time) (string, error) {
	quantity := schedule.Quantity(tpl, date)
	if quantity == 0 {
		agg.Skip()
		return outcomeSkippedQuantity, nil
	}

	productIDs, err := products.Resolve(ctx, tpl, date)
	if err != nil {
		if !domain.IsSoft(err) {
			return "", fmt.Errorf("resolve template %s: %w", tpl.ID, err)
		}
		e.logger.Warn("template skipped", "template_id", tpl.ID, "user_id", tpl.UserID, "reason", err.Error())
		agg.Skip()
		return outcomeSkippedUnresolved, nil
	}
	if len(productIDs) == 0 {
		e.logger.Warn("template skipped", "template_id", tpl.ID, "user_id", tpl.UserID, "reason", "no products resolved")
		agg.Skip()
		return outcomeSkippedUnresolved, nil
	}

	editUntil, err := schedule.EditUntil(tpl, date, e.location)
	if err != nil {
		e.logger.Warn("template skipped", "template_id", tpl.ID, "user_id", tpl.UserID, "reason", err.Error())
		agg.Skip()
		return outcomeSkippedRule, nil
	}

	if !agg.Add(Contribution{
		UserID:     tpl.UserID,
		TemplateID: tpl.ID,
		Quantity:   quantity,
		ProductIDs: productIDs,
		EditUntil:  editUntil,
	}) {
		return outcomeSkippedUnresolved, nil
	}
	return outcomeOrdered, nil
}

// flush reconciles every draft and records the outcome in summary. A draft
// whose key the store cannot represent is dropped and its templates move
// from created to skipped.
func (e *Engine) flush(ctx context.Context, drafts []domain.OrderDraft, summary *Summary) error {
	reconciler := NewReconciler(e.stores.Orders, e.policy, e.now)

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, draft := range drafts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			isNew, err := reconciler.Apply(gctx, draft)
			if errors.Is(err, domain.ErrInvalidIdentifier) {
				n := templateCount(draft)
				e.logger.Warn("order skipped", "user_id", draft.UserID, "date", draft.Date, "templates", n, "reason", err.Error())
				mu.Lock()
				summary.Created -= n
				summary.Skipped += n
				mu.Unlock()
				return nil
			}
			if err != nil {
				return err
			}
			e.metrics.order(gctx, isNew)

			mu.Lock()
			if isNew {
				summary.OrdersCreated++
			} else {
				summary.OrdersUpdated++
			}
			mu.Unlock()

			e.publish(gctx, draft, isNew)
			return nil
		})
	}
	return g.Wait()
}

// templateCount is the number of distinct templates with items in draft.
func templateCount(draft domain.OrderDraft) int {
	seen := make(map[string]struct{}, len(draft.Items))
	for _, item := range draft.Items {
		seen[item.TemplateID] = struct{}{}
	}
	return len(seen)
}

func (e *Engine) publish(ctx context.Context, draft domain.OrderDraft, created bool) {
	if e.publisher == nil {
		return
	}
	event := domain.OrderGeneratedEvent{
		EventID:   uuid.New().String(),
		UserID:    draft.UserID,
		Date:      draft.Date,
		Items:     draft.Items,
		EditUntil: draft.EditUntil,
		Created:   created,
		Timestamp: e.now().UTC(),
	}
	if err := e.publisher.Publish(ctx, draft.UserID+"/"+draft.Date, event); err != nil {
		e.logger.Error("failed to publish order generated event", "error", err, "user_id", draft.UserID, "date", draft.Date)
	}
}
