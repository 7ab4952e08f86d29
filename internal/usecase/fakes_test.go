package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"agrimarket/internal/domain/entity"
	"agrimarket/internal/domain/repository"
	"agrimarket/pkg/errors"
)

// In-memory stores. They apply the same entity rules as the Firestore
// repositories, under a mutex instead of a transaction.

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
	err   error
}

func newMemUsers(users ...*entity.User) *memUsers {
	m := &memUsers{users: make(map[string]*entity.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Update(_ context.Context, user *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) ListByRole(_ context.Context, role entity.Role) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.User{}
	for _, u := range m.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memCrops struct {
	mu    sync.Mutex
	crops map[string]*entity.Crop
	seq   int
}

func newMemCrops(crops ...*entity.Crop) *memCrops {
	m := &memCrops{crops: make(map[string]*entity.Crop)}
	for _, c := range crops {
		m.crops[c.ID] = c
	}
	return m
}

func (m *memCrops) Create(_ context.Context, crop *entity.Crop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if crop.ID == "" {
		m.seq++
		crop.ID = fmt.Sprintf("crop-%d", m.seq)
	}
	if crop.Status == "" {
		crop.Status = entity.CropStatusActive
	}
	cp := *crop
	m.crops[crop.ID] = &cp
	return nil
}

func (m *memCrops) GetByID(_ context.Context, id string) (*entity.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return nil, errors.NotFound("Crop", nil)
	}
	cp := *c
	return &cp, nil
}

func (m *memCrops) UpdateDetails(_ context.Context, crop *entity.Crop) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[crop.ID]
	if !ok {
		return errors.NotFound("Crop", nil)
	}
	c.CropType, c.Region, c.Season, c.Quality, c.BasePrice = crop.CropType, crop.Region, crop.Season, crop.Quality, crop.BasePrice
	return nil
}

func (m *memCrops) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.crops, id)
	return nil
}

func (m *memCrops) all(keep func(*entity.Crop) bool) []*entity.Crop {
	out := []*entity.Crop{}
	for _, c := range m.crops {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memCrops) List(_ context.Context) ([]*entity.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all(func(*entity.Crop) bool { return true }), nil
}

func (m *memCrops) ListByFarmer(_ context.Context, farmerID string) ([]*entity.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all(func(c *entity.Crop) bool { return c.FarmerID == farmerID }), nil
}

func (m *memCrops) ListRecent(_ context.Context, limit int) ([]*entity.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.all(func(*entity.Crop) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memCrops) Take(_ context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return errors.NotFound("Crop", nil)
	}
	return repository.DomainError(c.Take(qty))
}

func (m *memCrops) Restore(_ context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return errors.NotFound("Crop", nil)
	}
	c.Restore(qty)
	return nil
}

func (m *memCrops) SetQuantity(_ context.Context, id string, expected, quantity int) (*entity.Crop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crops[id]
	if !ok {
		return nil, errors.NotFound("Crop", nil)
	}
	if c.Quantity != expected {
		return nil, errors.StockChanged("")
	}
	c.Quantity = 0
	c.Restore(quantity)
	cp := *c
	return &cp, nil
}

func (m *memCrops) quantity(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.crops[id].Quantity
}

type memPools struct {
	mu      sync.Mutex
	pools   map[string]*entity.Pool
	members map[string]*entity.PoolMember
	seq     int
}

func newMemPools(pools ...*entity.Pool) *memPools {
	m := &memPools{pools: make(map[string]*entity.Pool), members: make(map[string]*entity.PoolMember)}
	for _, p := range pools {
		m.pools[p.ID] = p
	}
	return m
}

func (m *memPools) Create(_ context.Context, pool *entity.Pool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pool.ID == "" {
		m.seq++
		pool.ID = fmt.Sprintf("pool-%d", m.seq)
	}
	cp := *pool
	m.pools[pool.ID] = &cp
	memberID := entity.PoolMemberID(pool.ID, pool.CreatedBy)
	m.members[memberID] = &entity.PoolMember{ID: memberID, PoolID: pool.ID, FarmerID: pool.CreatedBy}
	return nil
}

func (m *memPools) GetByID(_ context.Context, id string) (*entity.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[id]
	if !ok {
		return nil, errors.NotFound("Pool", nil)
	}
	cp := *p
	return &cp, nil
}

func (m *memPools) list(keep func(*entity.Pool) bool) []*entity.Pool {
	out := []*entity.Pool{}
	for _, p := range m.pools {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memPools) List(_ context.Context) ([]*entity.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(*entity.Pool) bool { return true }), nil
}

func (m *memPools) ListByCreator(_ context.Context, farmerID string) ([]*entity.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(p *entity.Pool) bool { return p.CreatedBy == farmerID }), nil
}

func (m *memPools) Join(_ context.Context, poolID, farmerID string, qty int) (*entity.Pool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[poolID]
	if !ok {
		return nil, errors.NotFound("Pool", nil)
	}
	memberID := entity.PoolMemberID(poolID, farmerID)
	member, existing := m.members[memberID]
	if err := p.Join(qty, !existing); err != nil {
		return nil, repository.DomainError(err)
	}
	if !existing {
		member = &entity.PoolMember{ID: memberID, PoolID: poolID, FarmerID: farmerID}
		m.members[memberID] = member
	}
	member.Quantity += qty
	cp := *p
	return &cp, nil
}

func (m *memPools) Sell(_ context.Context, poolID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pools[poolID]
	if !ok {
		return errors.NotFound("Pool", nil)
	}
	return repository.SaleError(p.Sell(qty))
}

func (m *memPools) Unsell(_ context.Context, poolID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pools[poolID]; ok {
		p.Unsell(qty)
	}
	return nil
}

type memCart struct {
	mu    sync.Mutex
	lines map[string]map[string]*entity.CartLine
	// deleteErr makes Delete fail, to exercise partial cleanup.
	deleteErr error
}

func newMemCart() *memCart {
	return &memCart{lines: make(map[string]map[string]*entity.CartLine)}
}

func (m *memCart) Upsert(_ context.Context, userID string, line *entity.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lines[userID] == nil {
		m.lines[userID] = make(map[string]*entity.CartLine)
	}
	cp := *line
	m.lines[userID][line.ID] = &cp
	return nil
}

func (m *memCart) Get(_ context.Context, userID, lineID string) (*entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lines[userID][lineID]
	if !ok {
		return nil, errors.NotFound("Cart line", nil)
	}
	cp := *l
	return &cp, nil
}

func (m *memCart) List(_ context.Context, userID string) ([]*entity.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.CartLine{}
	for _, l := range m.lines[userID] {
		cp := *l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCart) Delete(_ context.Context, userID, lineID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.lines[userID], lineID)
	return nil
}

func (m *memCart) count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines[userID])
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]*entity.Order
	// createErr makes Create fail once, to exercise compensation.
	createErr error
	// racer, when set, stores a copy of the order just before Create
	// checks for it, as a concurrent writer would.
	racer bool
}

func newMemOrders(orders ...*entity.Order) *memOrders {
	m := &memOrders{orders: make(map[string]*entity.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *memOrders) Create(_ context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr; err != nil {
		m.createErr = nil
		return err
	}
	if m.racer {
		m.racer = false
		cp := *order
		m.orders[order.ID] = &cp
	}
	if _, ok := m.orders[order.ID]; ok {
		return errors.New(errors.CodeConflict, "Order already placed", 409, repository.ErrOrderExists)
	}
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) list(keep func(*entity.Order) bool) []*entity.Order {
	out := []*entity.Order{}
	for _, o := range m.orders {
		if keep(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memOrders) ListByFarmer(_ context.Context, farmerID string) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(o *entity.Order) bool { return o.FarmerID == farmerID }), nil
}

func (m *memOrders) ListByConsumer(_ context.Context, consumerID string) ([]*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(func(o *entity.Order) bool { return o.ConsumerID == consumerID }), nil
}

func (m *memOrders) Advance(_ context.Context, id, farmerID string, next entity.OrderStatus) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	if o.FarmerID != farmerID {
		return nil, errors.Forbidden("You can only update your own orders", nil)
	}
	if err := o.Status.CanAdvance(next); err != nil {
		return nil, repository.DomainError(err)
	}
	o.Status = next
	cp := *o
	return &cp, nil
}

func (m *memOrders) WatchFarmer(ctx context.Context, farmerID string, fn func([]*entity.Order)) error {
	orders, _ := m.ListByFarmer(ctx, farmerID)
	fn(orders)
	<-ctx.Done()
	return nil
}

func (m *memOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type memReviews struct {
	mu      sync.Mutex
	users   *memUsers
	reviews []*entity.Review
}

func (m *memReviews) Submit(_ context.Context, review *entity.Review) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users.mu.Lock()
	defer m.users.mu.Unlock()

	farmer, ok := m.users.users[review.FarmerID]
	if !ok || !farmer.IsFarmer() {
		return nil, errors.NotFound("Farmer", nil)
	}
	farmer.ApplyRating(review.Rating)
	review.ID = fmt.Sprintf("review-%d", len(m.reviews)+1)
	m.reviews = append(m.reviews, review)
	cp := *farmer
	return &cp, nil
}

func (m *memReviews) ListByFarmer(_ context.Context, farmerID string) ([]*entity.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Review{}
	for _, r := range m.reviews {
		if r.FarmerID == farmerID {
			out = append(out, r)
		}
	}
	return out, nil
}

type event struct {
	userID string
	kind   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) Publish(userID, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{userID, eventType})
}

func (n *recordingNotifier) all() []event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]event(nil), n.events...)
}

type memArchiver struct {
	objects map[string][]byte
}

func (a *memArchiver) UploadReport(_ context.Context, owner string, report io.Reader) (string, error) {
	data, err := io.ReadAll(report)
	if err != nil {
		return "", err
	}
	if a.objects == nil {
		a.objects = make(map[string][]byte)
	}
	name := "gs://reports/" + owner + ".xlsx"
	a.objects[name] = data
	return name, nil
}

type fakeIdentity struct {
	mu         sync.Mutex
	accounts   map[string]*fakeAccount
	verified   map[string]bool
	sentVerify int
	sentReset  []string
	createErr  error
	deleted    []string
}

type fakeAccount struct {
	uid      string
	password string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: make(map[string]*fakeAccount), verified: make(map[string]bool)}
}

func (f *fakeIdentity) CreateUser(_ context.Context, email, password, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	if _, ok := f.accounts[email]; ok {
		return "", ErrEmailTaken
	}
	uid := fmt.Sprintf("uid-%d", len(f.accounts)+1)
	f.accounts[email] = &fakeAccount{uid: uid, password: password}
	return uid, nil
}

func (f *fakeIdentity) DeleteUser(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, uid)
	for email, a := range f.accounts {
		if a.uid == uid {
			delete(f.accounts, email)
		}
	}
	return nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*SignInResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[email]
	if !ok || a.password != password {
		return nil, fmt.Errorf("INVALID_PASSWORD")
	}
	return &SignInResult{UID: a.uid, IDToken: "id-" + a.uid, RefreshToken: "refresh-" + a.uid}, nil
}

func (f *fakeIdentity) IsEmailVerified(_ context.Context, uid string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verified[uid], nil
}

func (f *fakeIdentity) SendVerificationEmail(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentVerify++
	return nil
}

func (f *fakeIdentity) SendPasswordReset(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentReset = append(f.sentReset, email)
	return nil
}

// Fixtures shared by the tests.

var fixedNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func farmerUser(id string) *entity.User {
	return &entity.User{
		ID:        id,
		Email:     id + "@example.com",
		Role:      entity.RoleFarmer,
		FullName:  "Ravi Kumar",
		Phone:     "98765 43210",
		PaymentID: "ravi@upi",
		Farm:      &entity.Farm{Size: 4, Unit: "acres", Location: "Nashik"},
		UpdatedAt: fixedNow.Add(-24 * time.Hour),
	}
}

func consumerUser(id string) *entity.User {
	return &entity.User{
		ID:       id,
		Email:    id + "@example.com",
		Role:     entity.RoleConsumer,
		FullName: "Asha Rao",
		Phone:    "91234 56789",
		Address:  "12 MG Road",
		City:     "Pune",
		State:    "MH",
		Pincode:  "411001",
	}
}

func farmerSession(id string) Session {
	return Session{UserID: id, Role: entity.RoleFarmer}
}

func consumerSession(id string) Session {
	return Session{UserID: id, Role: entity.RoleConsumer}
}

// market wires every use case over the same in-memory stores.
type market struct {
	users    *memUsers
	crops    *memCrops
	pools    *memPools
	cart     *memCart
	orders   *memOrders
	notifier *recordingNotifier

	catalog  *CatalogUseCase
	carts    *CartUseCase
	ordering *OrderUseCase
	console  *OrderConsoleUseCase
	poolUC   *PoolUseCase
	cropUC   *CropUseCase
}

func newMarket(sweepPolicy string) *market {
	m := &market{
		users:    newMemUsers(farmerUser("farmer-1"), consumerUser("consumer-1"), consumerUser("consumer-2")),
		crops:    newMemCrops(),
		pools:    newMemPools(),
		cart:     newMemCart(),
		orders:   newMemOrders(),
		notifier: &recordingNotifier{},
	}
	m.catalog = NewCatalogUseCase(m.crops, m.pools, m.users)
	m.carts = NewCartUseCase(m.cart, m.catalog, 150)
	m.carts.now = func() time.Time { return fixedNow }
	m.ordering = NewOrderUseCase(m.cart, m.crops, m.pools, m.orders, m.users, OrderOptions{
		DeliveryCharge: 150,
		SweepPolicy:    sweepPolicy,
		Notifier:       m.notifier,
	})
	m.ordering.now = func() time.Time { return fixedNow }
	m.console = NewOrderConsoleUseCase(m.orders, m.notifier)
	m.poolUC = NewPoolUseCase(m.pools, m.catalog, nil)
	m.cropUC = NewCropUseCase(m.crops, nil)
	return m
}

func (m *market) addCrop(id string, quantity int, price float64) {
	m.crops.crops[id] = &entity.Crop{
		ID:        id,
		FarmerID:  "farmer-1",
		CropType:  "Wheat",
		Region:    "Nashik",
		Season:    entity.SeasonRabi,
		Quality:   entity.QualityStandard,
		Quantity:  quantity,
		BasePrice: price,
		Status:    entity.CropStatusActive,
		CreatedAt: fixedNow,
	}
}
