package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// Statement names accepted by MemoryStore.FailOn.
const (
	OpCustomerCreate      = "customers.create"
	OpContactCreate       = "customer_contacts.create"
	OpAddressCreate       = "customer_addresses.create"
	OpCredentialCreate    = "customer_users.create"
	OpCredentialUpdate    = "customer_users.update"
	OpCallCreate          = "calls.create"
	OpCallDetailCreate    = "call_details.create"
	OpComplaintCreate     = "complaints.create"
	OpComplaintTextCreate = "complaint_texts.create"
	OpComplaintUpdate     = "complaints.update"
	OpComplaintTextUpdate = "complaint_texts.update"
	OpActionCreate        = "complaint_actions.create"
	OpSurveyCreate        = "satisfaction_surveys.create"
)

var errForeignKey = errors.New("foreign key violation")

// MemoryCounts reports committed row counts per table.
type MemoryCounts struct {
	Customers        int
	Credentials      int
	Calls            int
	CallDetails      int
	Complaints       int
	ComplaintTexts   int
	ComplaintActions int
	Surveys          int
}

type memState struct {
	seq         map[string]int64
	customers   map[int64]domain.Customer
	contacts    map[int64]domain.CustomerContact
	addresses   map[int64]domain.CustomerAddress
	credentials map[int64]domain.CustomerCredential
	staff       map[int64]domain.StaffMember
	staffLogins map[string]domain.StaffLogin
	callTypes   map[int64]domain.CallType
	callTopics  map[int64]domain.CallTopic
	callResults map[int64]domain.CallResult
	statuses    map[int64]domain.ComplaintStatus
	priorities  map[int64]domain.ComplaintPriority
	categories  map[int64]domain.ComplaintCategory
	sources     map[int64]domain.ComplaintSource
	products    map[int64]domain.Product
	calls       map[int64]domain.Call
	callDetails map[int64]domain.CallDetail
	complaints  map[int64]domain.Complaint
	texts       map[int64]domain.ComplaintText // keyed by complaint id
	actions     []domain.ComplaintAction
	surveys     map[int64]domain.SatisfactionSurvey // keyed by complaint id
}

func newMemState() *memState {
	return &memState{
		seq:         map[string]int64{},
		customers:   map[int64]domain.Customer{},
		contacts:    map[int64]domain.CustomerContact{},
		addresses:   map[int64]domain.CustomerAddress{},
		credentials: map[int64]domain.CustomerCredential{},
		staff:       map[int64]domain.StaffMember{},
		staffLogins: map[string]domain.StaffLogin{},
		callTypes:   map[int64]domain.CallType{},
		callTopics:  map[int64]domain.CallTopic{},
		callResults: map[int64]domain.CallResult{},
		statuses:    map[int64]domain.ComplaintStatus{},
		priorities:  map[int64]domain.ComplaintPriority{},
		categories:  map[int64]domain.ComplaintCategory{},
		sources:     map[int64]domain.ComplaintSource{},
		products:    map[int64]domain.Product{},
		calls:       map[int64]domain.Call{},
		callDetails: map[int64]domain.CallDetail{},
		complaints:  map[int64]domain.Complaint{},
		texts:       map[int64]domain.ComplaintText{},
		surveys:     map[int64]domain.SatisfactionSurvey{},
	}
}

// clone copies every table. Row values are replaced, never mutated in
// place, so copying the maps is enough to isolate a unit.
func (s *memState) clone() *memState {
	return &memState{
		seq:         maps.Clone(s.seq),
		customers:   maps.Clone(s.customers),
		contacts:    maps.Clone(s.contacts),
		addresses:   maps.Clone(s.addresses),
		credentials: maps.Clone(s.credentials),
		staff:       maps.Clone(s.staff),
		staffLogins: maps.Clone(s.staffLogins),
		callTypes:   maps.Clone(s.callTypes),
		callTopics:  maps.Clone(s.callTopics),
		callResults: maps.Clone(s.callResults),
		statuses:    maps.Clone(s.statuses),
		priorities:  maps.Clone(s.priorities),
		categories:  maps.Clone(s.categories),
		sources:     maps.Clone(s.sources),
		products:    maps.Clone(s.products),
		calls:       maps.Clone(s.calls),
		callDetails: maps.Clone(s.callDetails),
		complaints:  maps.Clone(s.complaints),
		texts:       maps.Clone(s.texts),
		actions:     append([]domain.ComplaintAction(nil), s.actions...),
		surveys:     maps.Clone(s.surveys),
	}
}

func (s *memState) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// MemoryStore is a serializable in-process Store. Each unit works on a
// private copy of the tables that replaces the committed state only when
// the unit succeeds.
type MemoryStore struct {
	mu     sync.Mutex
	state  *memState
	clock  func() time.Time
	faults map[string]error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:  newMemState(),
		clock:  time.Now,
		faults: map[string]error{},
	}
}

// SetClock overrides the source of database-assigned timestamps.
func (s *MemoryStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// FailOn makes every later execution of the named statement return err.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// ClearFaults removes all injected failures.
func (s *MemoryStore) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

// WithinTx implements Store.
func (s *MemoryStore) WithinTx(ctx context.Context, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(context.WithoutCancel(ctx), &memTx{store: s, st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// View implements Store; writes made by fn are discarded.
func (s *MemoryStore) View(ctx context.Context, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &memTx{store: s, st: s.state.clone()})
}

// Counts returns committed row counts.
func (s *MemoryStore) Counts() MemoryCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MemoryCounts{
		Customers:        len(s.state.customers),
		Credentials:      len(s.state.credentials),
		Calls:            len(s.state.calls),
		CallDetails:      len(s.state.callDetails),
		Complaints:       len(s.state.complaints),
		ComplaintTexts:   len(s.state.texts),
		ComplaintActions: len(s.state.actions),
		Surveys:          len(s.state.surveys),
	}
}

// SeedReferenceData loads the same lookup rows as the reference-data
// migration, with matching ids when the store is empty.
func (s *MemoryStore) SeedReferenceData() {
	yes, no := true, false
	for _, name := range []string{"Inbound", "Outbound"} {
		s.AddCallType(name)
	}
	s.AddCallTopic("General Information", &no)
	s.AddCallTopic("Complaint", &yes)
	s.AddCallTopic("Şikayet", &yes)
	s.AddCallTopic("Billing", &no)
	s.AddCallTopic("Order Tracking", &no)
	for _, name := range []string{"Resolved", "Callback Requested", "Transferred"} {
		s.AddCallResult(name)
	}
	s.AddStatus("Open", false)
	s.AddStatus("In Progress", false)
	s.AddStatus("Closed", true)
	s.AddStatus("Survey Completed", true)
	s.AddPriority("Low", 1)
	s.AddPriority("Mid", 2)
	s.AddPriority("High", 3)
	s.AddPriority("Critical", 4)
	for _, name := range []string{"Product Defect", "Delivery", "Billing", "Customer Service"} {
		s.AddCategory(name)
	}
	s.AddSource("Self Service")
	s.AddSource("Call Center")
	s.AddProduct("100001", "Washing Machine")
	s.AddProduct("100002", "Refrigerator")
	s.AddProduct("200001", "Vacuum Cleaner")
}

func (s *MemoryStore) seed(fn func(st *memState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// AddStaff inserts a staff member and returns its id.
func (s *MemoryStore) AddStaff(firstName, lastName string, active bool) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("staff")
		st.staff[id] = domain.StaffMember{ID: id, FirstName: firstName, LastName: lastName, Active: active, CreatedAt: s.clock()}
	})
	return id
}

// AddStaffLogin attaches credentials to a staff member.
func (s *MemoryStore) AddStaffLogin(staffID int64, username, passwordHash string) {
	s.seed(func(st *memState) {
		st.staffLogins[username] = domain.StaffLogin{StaffID: staffID, Username: username, PasswordHash: passwordHash}
	})
}

// AddCallType inserts a call type.
func (s *MemoryStore) AddCallType(name string) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("call_types")
		st.callTypes[id] = domain.CallType{ID: id, Name: name}
	})
	return id
}

// AddCallTopic inserts a topic; a nil flag models a legacy row.
func (s *MemoryStore) AddCallTopic(name string, isComplaint *bool) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("call_topics")
		st.callTopics[id] = domain.CallTopic{ID: id, Name: name, IsComplaintTopic: isComplaint}
	})
	return id
}

// AddCallResult inserts a call result.
func (s *MemoryStore) AddCallResult(name string) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("call_results")
		st.callResults[id] = domain.CallResult{ID: id, Name: name}
	})
	return id
}

// AddStatus inserts a complaint status.
func (s *MemoryStore) AddStatus(name string, terminal bool) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("complaint_statuses")
		st.statuses[id] = domain.ComplaintStatus{ID: id, Name: name, IsTerminal: terminal}
	})
	return id
}

// AddPriority inserts a complaint priority.
func (s *MemoryStore) AddPriority(name string, rank int) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("complaint_priorities")
		st.priorities[id] = domain.ComplaintPriority{ID: id, Name: name, Rank: rank}
	})
	return id
}

// AddCategory inserts a complaint category.
func (s *MemoryStore) AddCategory(name string) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("complaint_categories")
		st.categories[id] = domain.ComplaintCategory{ID: id, Name: name}
	})
	return id
}

// AddSource inserts a complaint source.
func (s *MemoryStore) AddSource(name string) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("complaint_sources")
		st.sources[id] = domain.ComplaintSource{ID: id, Name: name}
	})
	return id
}

// AddProduct inserts a product with its external code.
func (s *MemoryStore) AddProduct(code, name string) int64 {
	var id int64
	s.seed(func(st *memState) {
		id = st.nextID("products")
		st.products[id] = domain.Product{ID: id, Code: code, Name: name}
	})
	return id
}

type memTx struct {
	store *MemoryStore
	st    *memState
}

func (t *memTx) fail(op string) error {
	if err := t.store.faults[op]; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (t *memTx) now() time.Time {
	return t.store.clock()
}

func (t *memTx) Customers() CustomerRepository   { return memCustomers{t} }
func (t *memTx) Calls() CallRepository           { return memCalls{t} }
func (t *memTx) Complaints() ComplaintRepository { return memComplaints{t} }
func (t *memTx) Surveys() SurveyRepository       { return memSurveys{t} }
func (t *memTx) Lookups() LookupRepository       { return memLookups{t} }
func (t *memTx) Staff() StaffRepository          { return memStaff{t} }

func found[T any](v T, ok bool) (*T, error) {
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &v, nil
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type memCustomers struct{ t *memTx }

func (r memCustomers) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.t.st.customers[id]
	return found(c, ok)
}

func (r memCustomers) FindByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	for _, id := range sortedKeys(r.t.st.contacts) {
		if r.t.st.contacts[id].Phone != phone {
			continue
		}
		c, ok := r.t.st.customers[id]
		return found(c, ok)
	}
	return nil, pgx.ErrNoRows
}

func (r memCustomers) Create(_ context.Context, c *domain.Customer) error {
	if err := r.t.fail(OpCustomerCreate); err != nil {
		return err
	}
	c.ID = r.t.st.nextID("customers")
	c.CreatedAt = r.t.now()
	r.t.st.customers[c.ID] = *c
	return nil
}

func (r memCustomers) CreateContact(_ context.Context, c *domain.CustomerContact) error {
	if err := r.t.fail(OpContactCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[c.CustomerID]; !ok {
		return errForeignKey
	}
	if _, dup := r.t.st.contacts[c.CustomerID]; dup {
		return fmt.Errorf("%w: customer_contacts_pkey", ErrDuplicate)
	}
	for _, other := range r.t.st.contacts {
		if other.Phone == c.Phone {
			return fmt.Errorf("%w: customer_contacts_phone_key", ErrDuplicate)
		}
	}
	r.t.st.contacts[c.CustomerID] = *c
	return nil
}

func (r memCustomers) CreateAddress(_ context.Context, a *domain.CustomerAddress) error {
	if err := r.t.fail(OpAddressCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[a.CustomerID]; !ok {
		return errForeignKey
	}
	if _, dup := r.t.st.addresses[a.CustomerID]; dup {
		return fmt.Errorf("%w: customer_addresses_pkey", ErrDuplicate)
	}
	r.t.st.addresses[a.CustomerID] = *a
	return nil
}

func (r memCustomers) UsernameExists(_ context.Context, username string) (bool, error) {
	for _, cred := range r.t.st.credentials {
		if cred.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r memCustomers) CreateCredential(ctx context.Context, cred *domain.CustomerCredential) error {
	if err := r.t.fail(OpCredentialCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[cred.CustomerID]; !ok {
		return errForeignKey
	}
	if exists, _ := r.UsernameExists(ctx, cred.Username); exists {
		return fmt.Errorf("%w: customer_users_username_key", ErrDuplicate)
	}
	cred.ID = r.t.st.nextID("customer_users")
	r.t.st.credentials[cred.ID] = *cred
	return nil
}

func (r memCustomers) GetCredentialByUsername(_ context.Context, username string) (*domain.CustomerCredential, error) {
	for _, cred := range r.t.st.credentials {
		if cred.Username == username {
			return &cred, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memCustomers) GetCredentialByCustomerID(_ context.Context, customerID int64) (*domain.CustomerCredential, error) {
	for _, id := range sortedKeys(r.t.st.credentials) {
		if cred := r.t.st.credentials[id]; cred.CustomerID == customerID {
			return &cred, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memCustomers) UpdatePasswordHash(ctx context.Context, customerID int64, hash string) error {
	if err := r.t.fail(OpCredentialUpdate); err != nil {
		return err
	}
	cred, err := r.GetCredentialByCustomerID(ctx, customerID)
	if err != nil {
		return err
	}
	cred.PasswordHash = hash
	r.t.st.credentials[cred.ID] = *cred
	return nil
}

func (r memCustomers) GetProfile(ctx context.Context, customerID int64) (*domain.CustomerProfile, error) {
	c, ok := r.t.st.customers[customerID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p := &domain.CustomerProfile{Customer: c, Contact: r.t.st.contacts[customerID]}
	p.Contact.CustomerID = customerID
	if addr, ok := r.t.st.addresses[customerID]; ok {
		p.Address = &addr
	}
	if cred, err := r.GetCredentialByCustomerID(ctx, customerID); err == nil {
		p.Username = cred.Username
	}
	return p, nil
}

type memCalls struct{ t *memTx }

func (r memCalls) Create(_ context.Context, c *domain.Call) error {
	if err := r.t.fail(OpCallCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.staff[c.StaffID]; !ok {
		return errForeignKey
	}
	if _, ok := r.t.st.callTypes[c.CallTypeID]; !ok {
		return errForeignKey
	}
	c.ID = r.t.st.nextID("calls")
	c.CreatedAt = r.t.now()
	r.t.st.calls[c.ID] = *c
	return nil
}

func (r memCalls) CreateDetail(_ context.Context, d *domain.CallDetail) error {
	if err := r.t.fail(OpCallDetailCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.calls[d.CallID]; !ok {
		return errForeignKey
	}
	for _, existing := range r.t.st.callDetails {
		if existing.CallID == d.CallID {
			return fmt.Errorf("%w: call_details_call_id_key", ErrDuplicate)
		}
	}
	d.ID = r.t.st.nextID("call_details")
	r.t.st.callDetails[d.ID] = *d
	return nil
}

func (r memCalls) GetDetailByCallID(_ context.Context, callID int64) (*domain.CallDetail, error) {
	for _, d := range r.t.st.callDetails {
		if d.CallID == callID {
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memCalls) CountForStaffSince(_ context.Context, staffID int64, since time.Time) (int, error) {
	n := 0
	for _, c := range r.t.st.calls {
		if c.StaffID == staffID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

type memComplaints struct{ t *memTx }

func (r memComplaints) Create(_ context.Context, c *domain.Complaint) error {
	if err := r.t.fail(OpComplaintCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.customers[c.CustomerID]; !ok {
		return errForeignKey
	}
	if _, ok := r.t.st.staff[c.AssignedStaffID]; !ok {
		return errForeignKey
	}
	c.ID = r.t.st.nextID("complaints")
	r.t.st.complaints[c.ID] = *c
	return nil
}

func (r memComplaints) CreateText(_ context.Context, text *domain.ComplaintText) error {
	if err := r.t.fail(OpComplaintTextCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.complaints[text.ComplaintID]; !ok {
		return errForeignKey
	}
	if _, dup := r.t.st.texts[text.ComplaintID]; dup {
		return fmt.Errorf("%w: complaint_texts_complaint_id_key", ErrDuplicate)
	}
	text.ID = r.t.st.nextID("complaint_texts")
	r.t.st.texts[text.ComplaintID] = *text
	return nil
}

func (r memComplaints) GetForUpdate(_ context.Context, id int64) (*domain.Complaint, error) {
	c, ok := r.t.st.complaints[id]
	return found(c, ok)
}

func (r memComplaints) UpdateStatus(_ context.Context, id, statusID int64, isActive bool) error {
	if err := r.t.fail(OpComplaintUpdate); err != nil {
		return err
	}
	c, ok := r.t.st.complaints[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c.StatusID = statusID
	c.IsActive = isActive
	r.t.st.complaints[id] = c
	return nil
}

func (r memComplaints) MarkTextClosed(_ context.Context, complaintID int64, at time.Time) error {
	if err := r.t.fail(OpComplaintTextUpdate); err != nil {
		return err
	}
	text, ok := r.t.st.texts[complaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	closedAt := at
	text.ClosedAt = &closedAt
	text.LastUpdatedAt = at
	r.t.st.texts[complaintID] = text
	return nil
}

func (r memComplaints) TouchText(_ context.Context, complaintID int64, at time.Time) error {
	if err := r.t.fail(OpComplaintTextUpdate); err != nil {
		return err
	}
	text, ok := r.t.st.texts[complaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	text.LastUpdatedAt = at
	r.t.st.texts[complaintID] = text
	return nil
}

func (r memComplaints) AppendAction(_ context.Context, a *domain.ComplaintAction) error {
	if err := r.t.fail(OpActionCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.complaints[a.ComplaintID]; !ok {
		return errForeignKey
	}
	a.ID = r.t.st.nextID("complaint_actions")
	r.t.st.actions = append(r.t.st.actions, *a)
	return nil
}

func (r memComplaints) ListActions(_ context.Context, complaintID int64) ([]domain.ComplaintAction, error) {
	var out []domain.ComplaintAction
	for _, a := range r.t.st.actions {
		if a.ComplaintID == complaintID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ActionDate.Equal(out[j].ActionDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].ActionDate.Before(out[j].ActionDate)
	})
	return out, nil
}

func (r memComplaints) view(c domain.Complaint) (domain.ComplaintView, bool) {
	st := r.t.st
	text, ok := st.texts[c.ID]
	if !ok {
		return domain.ComplaintView{}, false
	}
	v := domain.ComplaintView{
		Complaint:     c,
		Title:         text.Title,
		Description:   text.Description,
		CreatedAt:     text.CreatedAt,
		LastUpdatedAt: text.LastUpdatedAt,
		ClosedAt:      text.ClosedAt,
		StatusName:    st.statuses[c.StatusID].Name,
		PriorityName:  st.priorities[c.PriorityID].Name,
		PriorityRank:  st.priorities[c.PriorityID].Rank,
		CustomerName:  st.customers[c.CustomerID].FullName(),
		StaffName:     st.staff[c.AssignedStaffID].FullName(),
	}
	if c.CategoryID != nil {
		if cat, ok := st.categories[*c.CategoryID]; ok {
			v.CategoryName = &cat.Name
		}
	}
	if c.ProductID != nil {
		if p, ok := st.products[*c.ProductID]; ok {
			v.ProductCode = &p.Code
		}
	}
	return v, true
}

func (r memComplaints) GetView(_ context.Context, id int64) (*domain.ComplaintView, error) {
	c, ok := r.t.st.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	v, ok := r.view(c)
	return found(v, ok)
}

func (r memComplaints) List(_ context.Context, q ComplaintQuery) ([]domain.ComplaintView, error) {
	var out []domain.ComplaintView
	for _, c := range r.t.st.complaints {
		if q.CustomerID != nil && c.CustomerID != *q.CustomerID {
			continue
		}
		if q.AssignedStaffID != nil && c.AssignedStaffID != *q.AssignedStaffID {
			continue
		}
		if q.Active != nil && c.IsActive != *q.Active {
			continue
		}
		if v, ok := r.view(c); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, q.Limit, q.Offset), nil
}

func (r memComplaints) CountActive(_ context.Context) (int, error) {
	n := 0
	for _, c := range r.t.st.complaints {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

func (r memComplaints) ListCriticalActive(_ context.Context, limit int) ([]domain.ComplaintView, error) {
	var out []domain.ComplaintView
	for _, c := range r.t.st.complaints {
		if !c.IsActive {
			continue
		}
		if v, ok := r.view(c); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PriorityRank != out[j].PriorityRank {
			return out[i].PriorityRank > out[j].PriorityRank
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, 0), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

type memSurveys struct{ t *memTx }

func (r memSurveys) ExistsForComplaint(_ context.Context, complaintID int64) (bool, error) {
	_, ok := r.t.st.surveys[complaintID]
	return ok, nil
}

func (r memSurveys) Create(_ context.Context, s *domain.SatisfactionSurvey) error {
	if err := r.t.fail(OpSurveyCreate); err != nil {
		return err
	}
	if _, ok := r.t.st.complaints[s.ComplaintID]; !ok {
		return errForeignKey
	}
	if _, dup := r.t.st.surveys[s.ComplaintID]; dup {
		return fmt.Errorf("%w: satisfaction_surveys_complaint_id_key", ErrDuplicate)
	}
	s.ID = r.t.st.nextID("satisfaction_surveys")
	r.t.st.surveys[s.ComplaintID] = *s
	return nil
}

func (r memSurveys) GetByComplaint(_ context.Context, complaintID int64) (*domain.SatisfactionSurvey, error) {
	s, ok := r.t.st.surveys[complaintID]
	return found(s, ok)
}

type memLookups struct{ t *memTx }

func (r memLookups) CallType(_ context.Context, id int64) (*domain.CallType, error) {
	v, ok := r.t.st.callTypes[id]
	return found(v, ok)
}

func (r memLookups) CallTopic(_ context.Context, id int64) (*domain.CallTopic, error) {
	v, ok := r.t.st.callTopics[id]
	return found(v, ok)
}

func (r memLookups) CallResult(_ context.Context, id int64) (*domain.CallResult, error) {
	v, ok := r.t.st.callResults[id]
	return found(v, ok)
}

func (r memLookups) Category(_ context.Context, id int64) (*domain.ComplaintCategory, error) {
	v, ok := r.t.st.categories[id]
	return found(v, ok)
}

func (r memLookups) StatusByID(_ context.Context, id int64) (*domain.ComplaintStatus, error) {
	v, ok := r.t.st.statuses[id]
	return found(v, ok)
}

func (r memLookups) StatusByName(_ context.Context, name string) (*domain.ComplaintStatus, error) {
	for _, id := range sortedKeys(r.t.st.statuses) {
		if v := r.t.st.statuses[id]; v.Name == name {
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memLookups) LowestStatus(_ context.Context) (*domain.ComplaintStatus, error) {
	keys := sortedKeys(r.t.st.statuses)
	if len(keys) == 0 {
		return nil, pgx.ErrNoRows
	}
	v := r.t.st.statuses[keys[0]]
	return &v, nil
}

func (r memLookups) PriorityByName(_ context.Context, name string) (*domain.ComplaintPriority, error) {
	for _, id := range sortedKeys(r.t.st.priorities) {
		if v := r.t.st.priorities[id]; v.Name == name {
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memLookups) LowestRankPriority(_ context.Context) (*domain.ComplaintPriority, error) {
	var best *domain.ComplaintPriority
	for _, id := range sortedKeys(r.t.st.priorities) {
		v := r.t.st.priorities[id]
		if best == nil || v.Rank < best.Rank {
			best = &v
		}
	}
	if best == nil {
		return nil, pgx.ErrNoRows
	}
	return best, nil
}

func (r memLookups) ProductByCode(_ context.Context, code string) (*domain.Product, error) {
	for _, v := range r.t.st.products {
		if v.Code == code {
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memLookups) ListCallTypes(_ context.Context) ([]domain.CallType, error) {
	return listSorted(r.t.st.callTypes), nil
}

func (r memLookups) ListCallTopics(_ context.Context) ([]domain.CallTopic, error) {
	return listSorted(r.t.st.callTopics), nil
}

func (r memLookups) ListCallResults(_ context.Context) ([]domain.CallResult, error) {
	return listSorted(r.t.st.callResults), nil
}

func (r memLookups) ListCategories(_ context.Context) ([]domain.ComplaintCategory, error) {
	return listSorted(r.t.st.categories), nil
}

func listSorted[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

type memStaff struct{ t *memTx }

func (r memStaff) GetByID(_ context.Context, id int64) (*domain.StaffMember, error) {
	v, ok := r.t.st.staff[id]
	return found(v, ok)
}

func (r memStaff) ListActiveIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for _, id := range sortedKeys(r.t.st.staff) {
		if r.t.st.staff[id].Active {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r memStaff) GetLoginByUsername(_ context.Context, username string) (*domain.StaffLogin, error) {
	v, ok := r.t.st.staffLogins[username]
	return found(v, ok)
}
