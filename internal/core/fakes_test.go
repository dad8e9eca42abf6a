package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fatbomb/MealManagement/internal/config"
	"github.com/fatbomb/MealManagement/internal/db"
	"github.com/fatbomb/MealManagement/internal/models"
)

var errInjected = errors.New("injected store failure")

// memStore is an in-memory implementation of every repository interface.
type memStore struct {
	mu       sync.Mutex
	users    map[string]models.User
	meals    map[string]models.MealRecord // userID/date
	daily    map[string]models.MealTotals
	monthly  map[string]models.MealTotals // userID/month
	bills    map[string]models.Bill
	dues     map[string]float64 // userID_month
	roles    models.RoleAssignments
	failNext bool
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]models.User{},
		meals:   map[string]models.MealRecord{},
		daily:   map[string]models.MealTotals{},
		monthly: map[string]models.MealTotals{},
		bills:   map[string]models.Bill{},
		dues:    map[string]float64{},
	}
}

func (m *memStore) addUser(id, name string, manager bool) {
	m.users[id] = models.User{ID: id, Name: name, IsMessManager: manager, IsAvailable: true}
}

func key(a, b string) string { return a + "/" + b }

// users

func (m *memStore) GetByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
	}
	return &u, nil
}

func (m *memStore) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; ok {
		return errors.New("already exists")
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memStore) UpdateFields(_ context.Context, userID string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "phoneNumber":
			u.PhoneNumber = v.(string)
		case "isAvailable":
			u.IsAvailable = v.(bool)
		case "isMessManager":
			u.IsMessManager = v.(bool)
		}
	}
	m.users[userID] = u
	return nil
}

func (m *memStore) List(context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		u := m.users[id]
		out = append(out, &u)
	}
	return out, nil
}

// meals

type memTx struct {
	m      *memStore
	writes []func()
	wrote  bool
}

func (t *memTx) read() error {
	if t.wrote {
		return errors.New("read after write in transaction")
	}
	return nil
}

func (t *memTx) GetMeal(userID, date string) (*models.MealRecord, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	rec, ok := t.m.meals[key(userID, date)]
	if !ok {
		return nil, fmt.Errorf("meal: %w", db.ErrNotFound)
	}
	return &rec, nil
}

func (t *memTx) GetDailyAggregate(date string) (*models.DailyAggregate, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	tot, ok := t.m.daily[date]
	if !ok {
		return nil, fmt.Errorf("daily: %w", db.ErrNotFound)
	}
	return &models.DailyAggregate{Date: date, MealTotals: tot}, nil
}

func (t *memTx) GetMonthlyAggregate(userID, month string) (*models.MonthlyAggregate, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	tot, ok := t.m.monthly[key(userID, month)]
	if !ok {
		return nil, fmt.Errorf("monthly: %w", db.ErrNotFound)
	}
	return &models.MonthlyAggregate{UserID: userID, YearMonth: month, MealTotals: tot}, nil
}

func (t *memTx) ListMeals(userID, from, to string) ([]*models.MealRecord, error) {
	if err := t.read(); err != nil {
		return nil, err
	}
	return t.m.listMealsLocked(userID, from, to), nil
}

func (t *memTx) SetMeal(rec *models.MealRecord) error {
	t.wrote = true
	r := *rec
	t.writes = append(t.writes, func() { t.m.meals[key(r.UserID, r.Date)] = r })
	return nil
}

func (t *memTx) SetDailyAggregate(agg *models.DailyAggregate) error {
	t.wrote = true
	a := *agg
	t.writes = append(t.writes, func() { t.m.daily[a.Date] = a.MealTotals })
	return nil
}

func (t *memTx) SetMonthlyAggregate(agg *models.MonthlyAggregate) error {
	t.wrote = true
	a := *agg
	t.writes = append(t.writes, func() { t.m.monthly[key(a.UserID, a.YearMonth)] = a.MealTotals })
	return nil
}

// RunInTransaction applies buffered writes only when fn succeeds and no failure is injected.
func (m *memStore) RunInTransaction(ctx context.Context, fn func(ctx context.Context, tx db.MealTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{m: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if m.failNext {
		m.failNext = false
		return errInjected
	}
	for _, w := range tx.writes {
		w()
	}
	return nil
}

func (m *memStore) GetMeal(_ context.Context, userID, date string) (*models.MealRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.meals[key(userID, date)]
	if !ok {
		return nil, fmt.Errorf("meal: %w", db.ErrNotFound)
	}
	return &rec, nil
}

func (m *memStore) ListMeals(_ context.Context, userID, from, to string) ([]*models.MealRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listMealsLocked(userID, from, to), nil
}

func (m *memStore) listMealsLocked(userID, from, to string) []*models.MealRecord {
	var out []*models.MealRecord
	for k, rec := range m.meals {
		if strings.HasPrefix(k, userID+"/") && rec.Date >= from && rec.Date <= to {
			r := rec
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// aggregates

func (m *memStore) GetDailyAggregate(_ context.Context, date string) (*models.DailyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tot, ok := m.daily[date]
	if !ok {
		return nil, fmt.Errorf("daily: %w", db.ErrNotFound)
	}
	return &models.DailyAggregate{Date: date, MealTotals: tot}, nil
}

func (m *memStore) ListDailyAggregates(_ context.Context, from, to string) ([]*models.DailyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.DailyAggregate
	for date, tot := range m.daily {
		if date >= from && date <= to {
			out = append(out, &models.DailyAggregate{Date: date, MealTotals: tot})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memStore) GetMonthlyAggregate(_ context.Context, userID, month string) (*models.MonthlyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tot, ok := m.monthly[key(userID, month)]
	if !ok {
		return nil, fmt.Errorf("monthly: %w", db.ErrNotFound)
	}
	return &models.MonthlyAggregate{UserID: userID, YearMonth: month, MealTotals: tot}, nil
}

// bills, dues and roles use small adapters because their method names collide.

type memBills struct{ m *memStore }

func (b memBills) Get(_ context.Context, month string) (*models.Bill, error) {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	bill, ok := b.m.bills[month]
	if !ok {
		return nil, fmt.Errorf("bill: %w", db.ErrNotFound)
	}
	return &bill, nil
}

func (b memBills) Put(_ context.Context, month string, bill *models.Bill) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if b.m.failNext {
		b.m.failNext = false
		return errInjected
	}
	b.m.bills[month] = *bill
	return nil
}

type memDues struct{ m *memStore }

func (d memDues) Get(_ context.Context, userID, month string) (*models.DuesRecord, error) {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	given, ok := d.m.dues[userID+"_"+month]
	if !ok {
		return nil, fmt.Errorf("dues: %w", db.ErrNotFound)
	}
	return &models.DuesRecord{UserID: userID, YearMonth: month, AmountGiven: given}, nil
}

func (d memDues) UpdateAmountGiven(_ context.Context, userID, month string, next func(float64) float64) (float64, error) {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	k := userID + "_" + month
	d.m.dues[k] = next(d.m.dues[k])
	return d.m.dues[k], nil
}

type memRoles struct{ m *memStore }

func (r memRoles) GetAssignments(context.Context) (*models.RoleAssignments, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	roles := r.m.roles
	return &roles, nil
}

func (r memRoles) SaveRoster(_ context.Context, kind models.DutyKind, days []string, userDuty map[string]string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for userID := range userDuty {
		if _, ok := r.m.users[userID]; !ok {
			return fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
		}
	}
	for userID, value := range userDuty {
		u := r.m.users[userID]
		if kind == models.DutyFoodSaving {
			u.FoodSavingIncharge = value
		} else {
			u.KhalaIncharge = value
		}
		r.m.users[userID] = u
	}
	if kind == models.DutyFoodSaving {
		r.m.roles.FoodSavingIncharge = append([]string(nil), days...)
	} else {
		r.m.roles.KhalaIncharge = append([]string(nil), days...)
	}
	return nil
}

func (r memRoles) SaveMonthManagers(_ context.Context, managers []models.MonthManager) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.roles.MessManager = append([]models.MonthManager(nil), managers...)
	return nil
}

// memCache is a map-backed Cache.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache { return &memCache{values: map[string]string{}} }

func (c *memCache) Get(_ context.Context, k string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[k]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, k, v string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[k] = v
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memCache) Incr(_ context.Context, k string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.values[k], 10, 64)
	n++
	c.values[k] = strconv.FormatInt(n, 10)
	return n, nil
}

// fixture wires every service over one memStore.
type fixture struct {
	store   *memStore
	cache   *memCache
	totals  *HouseholdTotals
	meals   MealService
	dues    DuesService
	bills   BillService
	users   UserService
	roles   RoleService
	reports ReportService
	recon   Reconciler
	now     time.Time
}

var dhaka = mustLoadLocation("Asia/Dhaka")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newFixture(now time.Time) *fixture {
	f := &fixture{store: newMemStore(), cache: newMemCache(), now: now}
	logger := zap.NewNop()
	clock := func() time.Time { return f.now }
	tariff := config.DefaultTariff()
	policy := EditPolicy{Location: dhaka, LunchLockHour: tariff.LunchLockHour, DinnerLockHour: tariff.DinnerLockHour}

	f.totals = NewHouseholdTotals(f.store, f.store, f.cache, time.Minute, logger)
	f.meals = NewMealService(f.store, f.store, f.totals, policy, clock, logger)
	f.dues = NewDuesService(memBills{f.store}, memDues{f.store}, f.store, f.store, f.totals, tariff, logger)
	f.bills = NewBillService(memBills{f.store}, logger)
	f.users = NewUserService(f.store, logger)
	f.roles = NewRoleService(memRoles{f.store}, f.store, dhaka, clock, logger)
	f.reports = NewReportService(f.store, f.store, f.store)
	f.recon = NewReconciler(f.store, f.store, f.store, f.totals, logger)
	return f
}

func manager(id string) models.Identity {
	return models.Identity{UserID: id, DisplayName: "Manager " + id, IsMessManager: true}
}

func resident(id string) models.Identity {
	return models.Identity{UserID: id, DisplayName: "Resident " + id}
}
