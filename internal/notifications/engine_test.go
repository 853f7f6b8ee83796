package notifications

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tenderdesk/tenderdesk/internal/rbac"
)

type memoryStore struct {
	mu     sync.Mutex
	byKey  map[string]*Notification
	nextID int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byKey: make(map[string]*Notification)}
}

func (s *memoryStore) Insert(ctx context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[n.UniqueKey]; ok {
		return nil
	}
	s.nextID++
	n.ID = s.nextID
	n.CreatedAt = time.Now()
	s.byKey[n.UniqueKey] = &n
	return nil
}

func (s *memoryStore) ListByRole(ctx context.Context, role rbac.Role) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Notification
	for _, n := range s.byKey {
		if n.TargetRole == role {
			result = append(result, *n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *memoryStore) MarkRead(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.byKey {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (s *memoryStore) all() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Notification
	for _, n := range s.byKey {
		result = append(result, *n)
	}
	return result
}

type fixedSources struct {
	tenders  []TenderFact
	invoices []InvoiceFact
	projects []ProjectFact
}

func (f *fixedSources) OpenTenders(ctx context.Context) ([]TenderFact, error) {
	return f.tenders, nil
}

func (f *fixedSources) UnpaidInvoices(ctx context.Context) ([]InvoiceFact, error) {
	return f.invoices, nil
}

func (f *fixedSources) ProjectsUnderGuarantee(ctx context.Context) ([]ProjectFact, error) {
	return f.projects, nil
}

var engineNow = time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)

func dateOffset(days int) string {
	return engineNow.AddDate(0, 0, days).Format(time.DateOnly)
}

func newTestEngine(store Repository, src *fixedSources) *Engine {
	return NewEngine(store, src, src, src, nil).WithClock(func() time.Time { return engineNow })
}

func TestTenderClosingSoon(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{tenders: []TenderFact{
		{ID: 7, TitleEN: "School rehabilitation Lot 2", TitleAR: "تأهيل المدارس", SubmissionDeadline: dateOffset(3)},
	}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))

	items, err := store.ListByRole(context.Background(), rbac.RoleProcurement)
	require.NoError(t, err)
	require.Len(t, items, 1)
	n := items[0]
	require.Equal(t, "tender_close_7", n.UniqueKey)
	require.Equal(t, LevelWarning, n.Level)
	require.Equal(t, "tender", n.RelatedType)
	require.EqualValues(t, 7, n.RelatedID)
	require.Contains(t, n.MessageEN, "closes in 3 day(s)")
	require.Contains(t, n.MessageAR, "تأهيل المدارس")

	// Re-running the same day produces no second notification.
	require.NoError(t, engine.Run(context.Background()))
	items, err = store.ListByRole(context.Background(), rbac.RoleProcurement)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestTenderWindowEdges(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{tenders: []TenderFact{
		{ID: 1, TitleEN: "due today", SubmissionDeadline: dateOffset(0)},
		{ID: 2, TitleEN: "edge of window", SubmissionDeadline: dateOffset(5)},
		{ID: 3, TitleEN: "beyond window", SubmissionDeadline: dateOffset(6)},
		{ID: 4, TitleEN: "already passed", SubmissionDeadline: dateOffset(-1)},
	}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))

	keys := uniqueKeys(store)
	require.ElementsMatch(t, []string{"tender_close_1", "tender_close_2"}, keys)
	require.Contains(t, store.byKey["tender_close_1"].MessageEN, "0 day(s)")
}

func TestInvoiceOverdue(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{invoices: []InvoiceFact{
		{ID: 11, ProjectNameEN: "Fezzan clinic network", DueDate: dateOffset(-1)},
		{ID: 12, ProjectNameEN: "not due yet", DueDate: dateOffset(0)},
	}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))

	items, err := store.ListByRole(context.Background(), rbac.RoleFinance)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "invoice_due_11", items[0].UniqueKey)
	require.Equal(t, LevelDanger, items[0].Level)
	require.Contains(t, items[0].MessageEN, "overdue since "+dateOffset(-1))
}

func TestGuaranteeExpiring(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{projects: []ProjectFact{
		{ID: 21, NameEN: "inside window", GuaranteeEnd: dateOffset(10)},
		{ID: 22, NameEN: "outside window", GuaranteeEnd: dateOffset(11)},
	}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))

	items, err := store.ListByRole(context.Background(), rbac.RoleProjectManager)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "guarantee_due_21", items[0].UniqueKey)
	require.Equal(t, LevelInfo, items[0].Level)
	require.Contains(t, items[0].MessageEN, "expires in 10 day(s)")
}

func TestMalformedDatesSkipped(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{
		tenders: []TenderFact{
			{ID: 1, TitleEN: "broken", SubmissionDeadline: "not-a-date"},
			{ID: 2, TitleEN: "fine", SubmissionDeadline: dateOffset(2)},
		},
		invoices: []InvoiceFact{{ID: 3, ProjectNameEN: "broken", DueDate: "31/12/2023"}},
		projects: []ProjectFact{{ID: 4, NameEN: "broken", GuaranteeEnd: ""}},
	}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))
	require.Equal(t, []string{"tender_close_2"}, uniqueKeys(store))
}

func TestRunIdempotent(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{
		tenders:  []TenderFact{{ID: 1, TitleEN: "t", SubmissionDeadline: dateOffset(1)}},
		invoices: []InvoiceFact{{ID: 2, ProjectNameEN: "p", DueDate: dateOffset(-3)}},
		projects: []ProjectFact{{ID: 3, NameEN: "p", GuaranteeEnd: dateOffset(4)}},
	}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))
	first := uniqueKeys(store)
	require.Len(t, first, 3)

	require.NoError(t, engine.Run(context.Background()))
	require.ElementsMatch(t, first, uniqueKeys(store))
}

func TestReadStateSurvivesRescan(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{invoices: []InvoiceFact{{ID: 9, ProjectNameEN: "p", DueDate: dateOffset(-1)}}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))
	items, err := store.ListByRole(context.Background(), rbac.RoleFinance)
	require.NoError(t, err)
	require.NoError(t, store.MarkRead(context.Background(), items[0].ID))

	require.NoError(t, engine.Run(context.Background()))
	items, err = store.ListByRole(context.Background(), rbac.RoleFinance)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].IsRead)
}

func TestMarkReadUnknownIDNoop(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(newTestEngine(store, &fixedSources{}), store)
	require.NoError(t, svc.MarkRead(context.Background(), 404))
}

func TestArabicFallsBackToEnglish(t *testing.T) {
	store := newMemoryStore()
	src := &fixedSources{projects: []ProjectFact{{ID: 5, NameEN: "Tripoli schools", NameAR: "", GuaranteeEnd: dateOffset(1)}}}
	engine := newTestEngine(store, src)

	require.NoError(t, engine.Run(context.Background()))
	n := store.byKey["guarantee_due_5"]
	require.NotNil(t, n)
	require.Contains(t, n.MessageAR, "Tripoli schools")
}

func uniqueKeys(store *memoryStore) []string {
	var keys []string
	for _, n := range store.all() {
		keys = append(keys, n.UniqueKey)
	}
	sort.Strings(keys)
	return keys
}

func TestDaysBetween(t *testing.T) {
	for offset := 0; offset <= 5; offset++ {
		from := civilToday(engineNow)
		to := from.AddDate(0, 0, offset)
		require.Equal(t, offset, daysBetween(from, to), fmt.Sprintf("offset %d", offset))
	}
}
