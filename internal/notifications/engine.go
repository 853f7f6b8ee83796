package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

// Scan windows, inclusive of both edges.
const (
	tenderCloseWindowDays     = 5
	guaranteeExpiryWindowDays = 10
)

// TenderFact is a tender candidate for the closing-soon rule. The source
// pre-filters on lifecycle status; the engine applies the date window.
type TenderFact struct {
	ID                 int64
	TitleEN            string
	TitleAR            string
	SubmissionDeadline string
}

// InvoiceFact is an unpaid invoice candidate for the overdue rule.
type InvoiceFact struct {
	ID            int64
	ProjectNameEN string
	ProjectNameAR string
	DueDate       string
}

// ProjectFact is a project candidate for the guarantee-expiry rule.
type ProjectFact struct {
	ID           int64
	NameEN       string
	NameAR       string
	GuaranteeEnd string
}

// TenderSource lists tenders whose status is draft, in_preparation or
// submitted and that carry a submission deadline.
type TenderSource interface {
	OpenTenders(ctx context.Context) ([]TenderFact, error)
}

// InvoiceSource lists invoices not yet paid that carry a due date.
type InvoiceSource interface {
	UnpaidInvoices(ctx context.Context) ([]InvoiceFact, error)
}

// ProjectSource lists projects that carry a guarantee end date.
type ProjectSource interface {
	ProjectsUnderGuarantee(ctx context.Context) ([]ProjectFact, error)
}

// Inserter persists a notification; inserting an existing unique_key is a
// silent no-op, which makes the whole engine idempotent.
type Inserter interface {
	Insert(ctx context.Context, n Notification) error
}

// Engine derives time-sensitive notifications from domain records. It is
// invoked on demand, not on a timer, and is safe to run repeatedly: a fact
// that stays true across runs produces exactly one stored row. Facts that
// later become false are not retracted; the stale row stays until a
// retention pass is added.
type Engine struct {
	store    Inserter
	tenders  TenderSource
	invoices InvoiceSource
	projects ProjectSource
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine constructs the rule engine.
func NewEngine(store Inserter, tenders TenderSource, invoices InvoiceSource, projects ProjectSource, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		tenders:  tenders,
		invoices: invoices,
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the wall clock, used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run evaluates the three rules. Each rule is independent, so the sources
// are scanned concurrently. Records with an unparseable date are skipped;
// a malformed row must not abort the scan.
func (e *Engine) Run(ctx context.Context) error {
	today := civilToday(e.now())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.scanTenders(ctx, today) })
	g.Go(func() error { return e.scanInvoices(ctx, today) })
	g.Go(func() error { return e.scanProjects(ctx, today) })
	return g.Wait()
}

func (e *Engine) scanTenders(ctx context.Context, today time.Time) error {
	rows, err := e.tenders.OpenTenders(ctx)
	if err != nil {
		return fmt.Errorf("notifications: scan tenders: %w", err)
	}
	horizon := today.AddDate(0, 0, tenderCloseWindowDays)
	for _, row := range rows {
		deadline, ok := e.parseDate(row.SubmissionDeadline, "tender", row.ID)
		if !ok {
			continue
		}
		if deadline.Before(today) || deadline.After(horizon) {
			continue
		}
		days := daysBetween(today, deadline)
		n := Notification{
			UniqueKey:   fmt.Sprintf("tender_close_%d", row.ID),
			TargetRole:  rbac.RoleProcurement,
			Level:       LevelWarning,
			TitleEN:     "Tender closing soon",
			TitleAR:     "إقتراب إقفال مناقصة",
			MessageEN:   fmt.Sprintf("Tender %s closes in %d day(s).", row.TitleEN, days),
			MessageAR:   fmt.Sprintf("المناقصة %s تغلق خلال %d يوم", arOrEN(row.TitleAR, row.TitleEN), days),
			RelatedType: "tender",
			RelatedID:   row.ID,
		}
		if err := e.store.Insert(ctx, n); err != nil {
			return fmt.Errorf("notifications: insert %s: %w", n.UniqueKey, err)
		}
	}
	return nil
}

func (e *Engine) scanInvoices(ctx context.Context, today time.Time) error {
	rows, err := e.invoices.UnpaidInvoices(ctx)
	if err != nil {
		return fmt.Errorf("notifications: scan invoices: %w", err)
	}
	for _, row := range rows {
		due, ok := e.parseDate(row.DueDate, "invoice", row.ID)
		if !ok {
			continue
		}
		if !due.Before(today) {
			continue
		}
		n := Notification{
			UniqueKey:   fmt.Sprintf("invoice_due_%d", row.ID),
			TargetRole:  rbac.RoleFinance,
			Level:       LevelDanger,
			TitleEN:     "Invoice overdue",
			TitleAR:     "فاتورة متأخرة",
			MessageEN:   fmt.Sprintf("Invoice for project %s is overdue since %s.", row.ProjectNameEN, row.DueDate),
			MessageAR:   fmt.Sprintf("فاتورة مشروع %s متأخرة منذ %s.", arOrEN(row.ProjectNameAR, row.ProjectNameEN), row.DueDate),
			RelatedType: "invoice",
			RelatedID:   row.ID,
		}
		if err := e.store.Insert(ctx, n); err != nil {
			return fmt.Errorf("notifications: insert %s: %w", n.UniqueKey, err)
		}
	}
	return nil
}

func (e *Engine) scanProjects(ctx context.Context, today time.Time) error {
	rows, err := e.projects.ProjectsUnderGuarantee(ctx)
	if err != nil {
		return fmt.Errorf("notifications: scan projects: %w", err)
	}
	horizon := today.AddDate(0, 0, guaranteeExpiryWindowDays)
	for _, row := range rows {
		end, ok := e.parseDate(row.GuaranteeEnd, "project", row.ID)
		if !ok {
			continue
		}
		if end.Before(today) || end.After(horizon) {
			continue
		}
		days := daysBetween(today, end)
		n := Notification{
			UniqueKey:   fmt.Sprintf("guarantee_due_%d", row.ID),
			TargetRole:  rbac.RoleProjectManager,
			Level:       LevelInfo,
			TitleEN:     "Guarantee expiring",
			TitleAR:     "استحقاق الضمان",
			MessageEN:   fmt.Sprintf("Guarantee for project %s expires in %d day(s).", row.NameEN, days),
			MessageAR:   fmt.Sprintf("ضمان مشروع %s ينتهي خلال %d يوم", arOrEN(row.NameAR, row.NameEN), days),
			RelatedType: "project",
			RelatedID:   row.ID,
		}
		if err := e.store.Insert(ctx, n); err != nil {
			return fmt.Errorf("notifications: insert %s: %w", n.UniqueKey, err)
		}
	}
	return nil
}

func (e *Engine) parseDate(value, entity string, id int64) (time.Time, bool) {
	parsed, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		if e.logger != nil {
			e.logger.Debug("skipping record with malformed date",
				slog.String("entity", entity), slog.Int64("id", id), slog.String("value", value))
		}
		return time.Time{}, false
	}
	return parsed, true
}

// civilToday truncates the wall clock to a UTC calendar day.
func civilToday(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func arOrEN(ar, en string) string {
	if ar != "" {
		return ar
	}
	return en
}
