package products

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"petclinic/internal/platform/jobs"
	"petclinic/internal/platform/logger"
	"petclinic/internal/ports/events"
)

// ---- Test repos (in-memory) ----

type testRepo struct{ byID map[string]Product }

func (r *testRepo) Create(ctx context.Context, p Product) error { r.byID[p.ID] = p; return nil }
func (r *testRepo) Update(ctx context.Context, p Product) error { r.byID[p.ID] = p; return nil }
func (r *testRepo) GetByID(ctx context.Context, id string) (Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}
func (r *testRepo) List(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
func (r *testRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

type bundleTestRepo struct{ byID map[string]Bundle }

func (r *bundleTestRepo) Create(ctx context.Context, b Bundle) error { r.byID[b.ID] = b; return nil }
func (r *bundleTestRepo) Update(ctx context.Context, b Bundle) error { r.byID[b.ID] = b; return nil }
func (r *bundleTestRepo) GetByID(ctx context.Context, id string) (Bundle, error) {
	b, ok := r.byID[id]
	if !ok {
		return Bundle{}, ErrNotFound
	}
	return b, nil
}
func (r *bundleTestRepo) List(ctx context.Context) ([]Bundle, error) {
	out := make([]Bundle, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b)
	}
	return out, nil
}
func (r *bundleTestRepo) Delete(ctx context.Context, id string) error { delete(r.byID, id); return nil }

type pair struct{ product, customer string }

type ratingTestRepo struct{ byKey map[pair]Rating }

func (r *ratingTestRepo) Save(ctx context.Context, rt Rating) error {
	r.byKey[pair{rt.ProductID, rt.CustomerID}] = rt
	return nil
}
func (r *ratingTestRepo) Get(ctx context.Context, productID, customerID string) (Rating, error) {
	rt, ok := r.byKey[pair{productID, customerID}]
	if !ok {
		return Rating{}, ErrNotFound
	}
	return rt, nil
}
func (r *ratingTestRepo) ListByProduct(ctx context.Context, productID string) ([]Rating, error) {
	out := make([]Rating, 0)
	for k, rt := range r.byKey {
		if k.product == productID {
			out = append(out, rt)
		}
	}
	return out, nil
}
func (r *ratingTestRepo) Delete(ctx context.Context, productID, customerID string) error {
	delete(r.byKey, pair{productID, customerID})
	return nil
}
func (r *ratingTestRepo) DeleteByProduct(ctx context.Context, productID string) error {
	for k := range r.byKey {
		if k.product == productID {
			delete(r.byKey, k)
		}
	}
	return nil
}

type subTestRepo struct{ byKey map[pair]Subscription }

func (r *subTestRepo) Save(ctx context.Context, s Subscription) error {
	r.byKey[pair{s.ProductID, s.CustomerID}] = s
	return nil
}
func (r *subTestRepo) Get(ctx context.Context, productID, customerID string) (Subscription, error) {
	s, ok := r.byKey[pair{productID, customerID}]
	if !ok {
		return Subscription{}, ErrNotFound
	}
	return s, nil
}
func (r *subTestRepo) ListByProduct(ctx context.Context, productID string) ([]Subscription, error) {
	out := make([]Subscription, 0)
	for k, s := range r.byKey {
		if k.product == productID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}
func (r *subTestRepo) ListByCustomer(ctx context.Context, customerID string) ([]Subscription, error) {
	out := make([]Subscription, 0)
	for k, s := range r.byKey {
		if k.customer == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}
func (r *subTestRepo) Delete(ctx context.Context, productID, customerID string) error {
	delete(r.byKey, pair{productID, customerID})
	return nil
}
func (r *subTestRepo) DeleteByProduct(ctx context.Context, productID string) error {
	for k := range r.byKey {
		if k.product == productID {
			delete(r.byKey, k)
		}
	}
	return nil
}

type recordingPublisher struct{ sent []events.Envelope }

func (p *recordingPublisher) Publish(ctx context.Context, topic string, env events.Envelope) error {
	if topic != events.TopicProducts {
		return errors.New("unexpected topic " + topic)
	}
	p.sent = append(p.sent, env)
	return nil
}

type fixture struct {
	svc     *Service
	repo    *testRepo
	ratings *ratingTestRepo
	subs    *subTestRepo
	pub     *recordingPublisher
}

var fixedNow = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func newFixture() fixture {
	f := fixture{
		repo:    &testRepo{byID: map[string]Product{}},
		ratings: &ratingTestRepo{byKey: map[pair]Rating{}},
		subs:    &subTestRepo{byKey: map[pair]Subscription{}},
		pub:     &recordingPublisher{},
	}
	f.svc = NewService(f.repo, &bundleTestRepo{byID: map[string]Bundle{}}, f.ratings, f.subs, WithPublisher(f.pub))
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f fixture) mustProduct(t *testing.T, name string, price float64, qty int) Product {
	t.Helper()
	p, err := f.svc.Create(context.Background(), ProductInput{Name: name, SalePrice: price, Quantity: qty, Type: "Food", DeliveryType: "delivery"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	return p
}

func ptr(v float64) *float64 { return &v }

// ---- Tests ----

func TestStatusAt(t *testing.T) {
	tomorrow := fixedNow.Add(24 * time.Hour)
	later := fixedNow.Add(3 * time.Hour)

	if got := StatusAt(nil, fixedNow); got != StatusAvailable {
		t.Fatalf("no release date => AVAILABLE, got %s", got)
	}
	if got := StatusAt(&tomorrow, fixedNow); got != StatusPreOrder {
		t.Fatalf("future release => PRE_ORDER, got %s", got)
	}
	if got := StatusAt(&later, fixedNow); got != StatusAvailable {
		t.Fatalf("same day release => AVAILABLE, got %s", got)
	}
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture()

	cases := []ProductInput{
		{Name: "", SalePrice: 10},
		{Name: "Kibble", SalePrice: 0},
		{Name: "Kibble", SalePrice: 10, Quantity: -1},
	}
	for _, in := range cases {
		if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}

	p := f.mustProduct(t, "  Kibble ", 10, 3)
	if p.Name != "Kibble" || p.DeliveryType != "DELIVERY" || p.Status != StatusAvailable {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestAverage_Truncates(t *testing.T) {
	rs := []Rating{{Rating: 5}, {Rating: 4}, {Rating: 4}}
	if got := Average(rs); got != 4.33 {
		t.Fatalf("expected 4.33, got %v", got)
	}
	rs = []Rating{{Rating: 5}, {Rating: 5}, {Rating: 4}}
	if got := Average(rs); got != 4.66 {
		t.Fatalf("expected 4.66 (truncated), got %v", got)
	}
	if got := Average(nil); got != 0 {
		t.Fatalf("expected 0 without ratings, got %v", got)
	}
}

func TestService_List_FiltersAndSort(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.mustProduct(t, "A", 5, 1)
	b := f.mustProduct(t, "B", 15, 1)
	c := f.mustProduct(t, "C", 25, 1)

	for cust, score := range map[string]int{"c1": 2, "c2": 3} {
		if _, err := f.svc.AddRating(ctx, a.ID, cust, RatingInput{Rating: score}); err != nil {
			t.Fatalf("AddRating: %v", err)
		}
	}
	if _, err := f.svc.AddRating(ctx, b.ID, "c1", RatingInput{Rating: 5}); err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	got, err := f.svc.List(ctx, ListFilter{MinPrice: ptr(10)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != c.ID {
		t.Fatalf("unexpected price filter result: %+v", got)
	}

	got, _ = f.svc.List(ctx, ListFilter{Sort: "desc"})
	if got[0].ID != b.ID || got[1].ID != a.ID || got[2].ID != c.ID {
		t.Fatalf("unexpected desc order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
	if got[1].AverageRating != 2.5 {
		t.Fatalf("expected average 2.5, got %v", got[1].AverageRating)
	}

	got, _ = f.svc.List(ctx, ListFilter{MinRating: ptr(3)})
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("unexpected rating filter result: %+v", got)
	}

	if _, err := f.svc.List(ctx, ListFilter{Sort: "sideways"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad sort, got %v", err)
	}
}

func TestService_Update_NotifiesSubscribers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.mustProduct(t, "Collar", 20, 0)

	if _, err := f.svc.Subscribe(ctx, p.ID, "c1", SubscriptionInput{Email: "c1@test", NotificationType: []string{"price"}}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := f.svc.Subscribe(ctx, p.ID, "c2", SubscriptionInput{Email: "c2@test", NotificationType: []string{"PRICE", "QUANTITY"}}); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, err := f.svc.Subscribe(ctx, p.ID, "c2", SubscriptionInput{NotificationType: []string{"PRICE"}}); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable for duplicate subscription, got %v", err)
	}

	_, err := f.svc.Update(ctx, p.ID, ProductInput{Name: "Collar", SalePrice: 15, Quantity: 4})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// c1: precio; c2: precio + cantidad.
	if len(f.pub.sent) != 3 {
		t.Fatalf("expected 3 events, got %d", len(f.pub.sent))
	}
	var drops, restocks int
	for _, env := range f.pub.sent {
		var ev ProductEvent
		if err := json.Unmarshal(env.Payload, &ev); err != nil {
			t.Fatalf("payload: %v", err)
		}
		switch env.Type {
		case events.ProductPriceDropped:
			drops++
			if ev.OldValue != 20 || ev.NewValue != 15 {
				t.Fatalf("unexpected price event: %+v", ev)
			}
		case events.ProductRestocked:
			restocks++
			if ev.CustomerID != "c2" || ev.NewValue != 4 {
				t.Fatalf("unexpected restock event: %+v", ev)
			}
		}
	}
	if drops != 2 || restocks != 1 {
		t.Fatalf("expected 2 drops and 1 restock, got %d/%d", drops, restocks)
	}

	// Subir el precio no avisa.
	f.pub.sent = nil
	if _, err := f.svc.Update(ctx, p.ID, ProductInput{Name: "Collar", SalePrice: 30, Quantity: 4}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(f.pub.sent) != 0 {
		t.Fatalf("expected no events, got %d", len(f.pub.sent))
	}
}

func TestService_DecreaseAndRequestCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.mustProduct(t, "Toy", 3, 1)

	if _, err := f.svc.Decrease(ctx, p.ID); err != nil {
		t.Fatalf("Decrease: %v", err)
	}
	if _, err := f.svc.Decrease(ctx, p.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when out of stock, got %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := f.svc.RequestCount(ctx, p.ID); err != nil {
			t.Fatalf("RequestCount: %v", err)
		}
	}
	if got := f.repo.byID[p.ID].RequestCount; got != 3 {
		t.Fatalf("expected requestCount 3, got %d", got)
	}

	n, err := f.svc.ResetRequestCounts(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ResetRequestCounts: n=%d err=%v", n, err)
	}
	if got := f.repo.byID[p.ID].RequestCount; got != 0 {
		t.Fatalf("expected requestCount 0 after reset, got %d", got)
	}
}

func TestService_RefreshStatuses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	release := fixedNow.Add(48 * time.Hour)

	p, err := f.svc.Create(ctx, ProductInput{Name: "Launch", SalePrice: 9, ReleaseDate: &release})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Status != StatusPreOrder {
		t.Fatalf("expected PRE_ORDER, got %s", p.Status)
	}

	f.svc.now = func() time.Time { return release }
	s := jobs.NewScheduler(logger.Nop())
	if err := RegisterJobs(s, f.svc, "@daily", "@every 720h"); err != nil {
		t.Fatalf("RegisterJobs: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 jobs, got %d", s.Len())
	}

	n, err := f.svc.RefreshStatuses(ctx)
	if err != nil || n != 1 {
		t.Fatalf("RefreshStatuses: n=%d err=%v", n, err)
	}
	if got := f.repo.byID[p.ID].Status; got != StatusAvailable {
		t.Fatalf("expected AVAILABLE on release day, got %s", got)
	}
}

func TestService_Bundles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.mustProduct(t, "A", 10.5, 1)
	b := f.mustProduct(t, "B", 4.5, 1)

	bundle, err := f.svc.CreateBundle(ctx, BundleInput{Name: "Combo", ProductIDs: []string{a.ID, b.ID}, BundlePrice: 12})
	if err != nil {
		t.Fatalf("CreateBundle: %v", err)
	}
	if bundle.OriginalTotalPrice != 15 {
		t.Fatalf("expected original total 15, got %v", bundle.OriginalTotalPrice)
	}

	if _, err := f.svc.CreateBundle(ctx, BundleInput{Name: "Ghost", ProductIDs: []string{"nope"}, BundlePrice: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown product, got %v", err)
	}

	n, err := f.svc.DeleteBundlesWithProduct(ctx, b.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteBundlesWithProduct: n=%d err=%v", n, err)
	}
	if _, err := f.svc.GetBundle(ctx, bundle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected bundle gone, got %v", err)
	}
}

func TestService_Ratings(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.mustProduct(t, "Leash", 8, 2)

	if _, err := f.svc.AddRating(ctx, p.ID, "c1", RatingInput{Rating: 6}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for rating 6, got %v", err)
	}
	if _, err := f.svc.AddRating(ctx, p.ID, "c1", RatingInput{Rating: 4, Review: "good"}); err != nil {
		t.Fatalf("AddRating: %v", err)
	}
	if _, err := f.svc.AddRating(ctx, p.ID, "c1", RatingInput{Rating: 3}); !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("expected ErrUnprocessable for second rating, got %v", err)
	}

	rt, err := f.svc.UpdateRating(ctx, p.ID, "c1", RatingInput{Rating: 2})
	if err != nil || rt.Rating != 2 {
		t.Fatalf("UpdateRating: %+v %v", rt, err)
	}

	if _, err := f.svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.ratings.byKey) != 0 {
		t.Fatalf("ratings must be removed with the product")
	}
}

type brokenSubs struct{ *subTestRepo }

func (brokenSubs) ListByProduct(ctx context.Context, productID string) ([]Subscription, error) {
	return nil, errors.New("subscriptions table unavailable")
}

func TestService_Update_LogsSubscriberLookupFailure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Out: &buf})

	repo := &testRepo{byID: map[string]Product{}}
	pub := &recordingPublisher{}
	subs := brokenSubs{&subTestRepo{byKey: map[pair]Subscription{}}}
	svc := NewService(repo, &bundleTestRepo{byID: map[string]Bundle{}}, &ratingTestRepo{byKey: map[pair]Rating{}}, subs,
		WithPublisher(pub), WithLogger(log))
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	p, err := svc.Create(ctx, ProductInput{Name: "Collar", SalePrice: 20, Quantity: 1, Type: "Food", DeliveryType: "delivery"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, ProductInput{Name: "Collar", SalePrice: 10, Quantity: 1}); err != nil {
		t.Fatalf("Update must not fail on notification errors: %v", err)
	}
	if len(pub.sent) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.sent))
	}
	out := buf.String()
	if !strings.Contains(out, "subscribers lookup failed") || !strings.Contains(out, "subscriptions table unavailable") {
		t.Fatalf("expected logged lookup failure, got %q", out)
	}
}
