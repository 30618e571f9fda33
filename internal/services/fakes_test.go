package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campus-backend/internal/models"
	"campus-backend/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx satisfies pgx.Tx for flows that only pass the transaction through to
// the stores. Statement-level methods are never reached by the fakes.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *fakeTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *fakeTx) Conn() *pgx.Conn                                               { return nil }

type fakeDB struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

// fakeRequestStore keeps requests in memory. Reads hand out copies so a
// service mutating the returned row does not change the stored state until
// UpdateStatusTx writes it back.
type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.Request
	updates  int
}

func newFakeRequestStore(reqs ...*models.Request) *fakeRequestStore {
	s := &fakeRequestStore{requests: make(map[string]*models.Request)}
	for _, r := range reqs {
		cp := *r
		s.requests[r.ID] = &cp
	}
	return s
}

func (s *fakeRequestStore) CreateTx(ctx context.Context, tx pgx.Tx, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *fakeRequestStore) GetByID(ctx context.Context, id string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *req
	return &cp, nil
}

func (s *fakeRequestStore) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (*models.Request, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeRequestStore) UpdateStatusTx(ctx context.Context, tx pgx.Tx, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.ID] = &cp
	s.updates++
	return nil
}

func (s *fakeRequestStore) List(ctx context.Context, p *query.ListParams) ([]*models.Request, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*models.Request
	for _, r := range s.requests {
		cp := *r
		all = append(all, &cp)
	}
	return all, len(all), nil
}

type fakeJobStore struct {
	mu       sync.Mutex
	jobs     map[string]*models.JobRequest
	assigns  []int
	started  []string
	finished []string
}

func newFakeJobStore(jobs ...*models.JobRequest) *fakeJobStore {
	s := &fakeJobStore{jobs: make(map[string]*models.JobRequest)}
	for _, j := range jobs {
		cp := *j
		s.jobs[j.RequestID] = &cp
	}
	return s
}

func (s *fakeJobStore) CreateTx(ctx context.Context, tx pgx.Tx, j *models.JobRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *j
	s.jobs[j.RequestID] = &cp
	return nil
}

func (s *fakeJobStore) GetByRequestID(ctx context.Context, requestID string) (*models.JobRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *j
	return &cp, nil
}

func (s *fakeJobStore) AssignTx(ctx context.Context, tx pgx.Tx, requestID string, personnelID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[requestID].AssignedTo = &personnelID
	s.assigns = append(s.assigns, personnelID)
	return nil
}

func (s *fakeJobStore) StartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[requestID].InProgress = true
	s.started = append(s.started, requestID)
	return nil
}

func (s *fakeJobStore) FinishTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = append(s.finished, requestID)
	return nil
}

type fakeVenueBookingStore struct {
	mu           sync.Mutex
	bookings     map[string]*models.VenueRequest
	approved     []*models.VenueRequest
	overlapCount int
	actualStarts []string
}

func newFakeVenueBookingStore(bookings ...*models.VenueRequest) *fakeVenueBookingStore {
	s := &fakeVenueBookingStore{bookings: make(map[string]*models.VenueRequest)}
	for _, b := range bookings {
		cp := *b
		s.bookings[b.RequestID] = &cp
	}
	return s
}

func (s *fakeVenueBookingStore) CreateTx(ctx context.Context, tx pgx.Tx, v *models.VenueRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.bookings[v.RequestID] = &cp
	return nil
}

func (s *fakeVenueBookingStore) GetByRequestID(ctx context.Context, requestID string) (*models.VenueRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *fakeVenueBookingStore) CountApprovedOverlapping(ctx context.Context, venueID int, start, end time.Time) (int, error) {
	return s.overlapCount, nil
}

func (s *fakeVenueBookingStore) ListApprovedForVenue(ctx context.Context, venueID int) ([]*models.VenueRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.VenueRequest(nil), s.approved...), nil
}

func (s *fakeVenueBookingStore) SetActualStartTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actualStarts = append(s.actualStarts, requestID)
	return nil
}

type fakeTransportStore struct {
	mu          sync.Mutex
	bookings    map[string]*models.TransportRequest
	approved    []*models.TransportRequest
	atTimeCount int
	upcoming    []*models.TransportRequest
	owners      map[string]int
	completed   map[string]float64
}

func newFakeTransportStore(bookings ...*models.TransportRequest) *fakeTransportStore {
	s := &fakeTransportStore{
		bookings:  make(map[string]*models.TransportRequest),
		owners:    make(map[string]int),
		completed: make(map[string]float64),
	}
	for _, b := range bookings {
		cp := *b
		s.bookings[b.RequestID] = &cp
	}
	return s
}

func (s *fakeTransportStore) CreateTx(ctx context.Context, tx pgx.Tx, t *models.TransportRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.bookings[t.RequestID] = &cp
	return nil
}

func (s *fakeTransportStore) GetByRequestID(ctx context.Context, requestID string) (*models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (s *fakeTransportStore) GetByRequestIDTx(ctx context.Context, tx pgx.Tx, requestID string) (*models.TransportRequest, error) {
	return s.GetByRequestID(ctx, requestID)
}

func (s *fakeTransportStore) CountApprovedAtTime(ctx context.Context, vehicleID int, at time.Time) (int, error) {
	return s.atTimeCount, nil
}

func (s *fakeTransportStore) ListApprovedForVehicle(ctx context.Context, vehicleID int) ([]*models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.TransportRequest(nil), s.approved...), nil
}

func (s *fakeTransportStore) SetOdometerStartTx(ctx context.Context, tx pgx.Tx, requestID string, reading float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bookings[requestID]
	b.OdometerStart = &reading
	b.ActualStart = &at
	return nil
}

func (s *fakeTransportStore) CompleteTx(ctx context.Context, tx pgx.Tx, requestID string, odometerEnd, distance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[requestID] = distance
	return nil
}

func (s *fakeTransportStore) ListUpcomingBookings(ctx context.Context, vehicleID int, after time.Time) ([]*models.TransportRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.TransportRequest(nil), s.upcoming...), nil
}

func (s *fakeTransportStore) OwnerOf(ctx context.Context, requestID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[requestID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	return owner, nil
}

type fakeReturnableStore struct {
	mu       sync.Mutex
	loans    map[string]*models.ReturnableRequest
	returned []string
}

func newFakeReturnableStore(loans ...*models.ReturnableRequest) *fakeReturnableStore {
	s := &fakeReturnableStore{loans: make(map[string]*models.ReturnableRequest)}
	for _, l := range loans {
		cp := *l
		s.loans[l.RequestID] = &cp
	}
	return s
}

func (s *fakeReturnableStore) CreateTx(ctx context.Context, tx pgx.Tx, rr *models.ReturnableRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rr
	s.loans[rr.RequestID] = &cp
	return nil
}

func (s *fakeReturnableStore) GetByRequestID(ctx context.Context, requestID string) (*models.ReturnableRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.loans[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *l
	return &cp, nil
}

func (s *fakeReturnableStore) MarkReturnedTx(ctx context.Context, tx pgx.Tx, requestID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returned = append(s.returned, requestID)
	return nil
}

type fakeSupplyStore struct {
	mu       sync.Mutex
	supplies map[string]*models.SupplyRequest
}

func (s *fakeSupplyStore) CreateTx(ctx context.Context, tx pgx.Tx, sr *models.SupplyRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.supplies == nil {
		s.supplies = make(map[string]*models.SupplyRequest)
	}
	cp := *sr
	s.supplies[sr.RequestID] = &cp
	return nil
}

func (s *fakeSupplyStore) GetByRequestID(ctx context.Context, requestID string) (*models.SupplyRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr, ok := s.supplies[requestID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *sr
	return &cp, nil
}

type fakeVenueStore struct {
	mu            sync.Mutex
	venues        map[int]*models.Venue
	statusChanges []string
}

func newFakeVenueStore(venues ...*models.Venue) *fakeVenueStore {
	s := &fakeVenueStore{venues: make(map[int]*models.Venue)}
	for _, v := range venues {
		cp := *v
		s.venues[v.ID] = &cp
	}
	return s
}

func (s *fakeVenueStore) GetByID(ctx context.Context, id int) (*models.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (s *fakeVenueStore) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Venue, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeVenueStore) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.venues[id].Status = status
	s.statusChanges = append(s.statusChanges, fmt.Sprintf("%d:%s", id, status))
	return nil
}

type fakeVehicleStore struct {
	mu            sync.Mutex
	vehicles      map[int]*models.Vehicle
	statusChanges []string
	odometers     map[int]float64
	lastService   map[int]float64
	flagged       []int
}

func newFakeVehicleStore(vehicles ...*models.Vehicle) *fakeVehicleStore {
	s := &fakeVehicleStore{
		vehicles:    make(map[int]*models.Vehicle),
		odometers:   make(map[int]float64),
		lastService: make(map[int]float64),
	}
	for _, v := range vehicles {
		cp := *v
		s.vehicles[v.ID] = &cp
	}
	return s
}

func (s *fakeVehicleStore) GetByID(ctx context.Context, id int) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *v
	return &cp, nil
}

func (s *fakeVehicleStore) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.Vehicle, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeVehicleStore) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[id].Status = status
	s.statusChanges = append(s.statusChanges, fmt.Sprintf("%d:%s", id, status))
	return nil
}

func (s *fakeVehicleStore) UpdateOdometerTx(ctx context.Context, tx pgx.Tx, id int, odometer float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[id].Odometer = odometer
	s.odometers[id] = odometer
	return nil
}

func (s *fakeVehicleStore) MarkRequiresMaintenance(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[id].RequiresMaintenance = true
	s.vehicles[id].Status = models.ResourceUnderMaintenance
	s.flagged = append(s.flagged, id)
	return nil
}

func (s *fakeVehicleStore) GetLastServiceOdometer(ctx context.Context, vehicleID int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastService[vehicleID], nil
}

type fakeInventoryStore struct {
	mu       sync.Mutex
	items    map[int]*models.InventoryItem
	deducted map[int]int
	adjusted map[int]int
}

func newFakeInventoryStore(items ...*models.InventoryItem) *fakeInventoryStore {
	s := &fakeInventoryStore{
		items:    make(map[int]*models.InventoryItem),
		deducted: make(map[int]int),
		adjusted: make(map[int]int),
	}
	for _, i := range items {
		cp := *i
		s.items[i.ID] = &cp
	}
	return s
}

func (s *fakeInventoryStore) GetByID(ctx context.Context, id int) (*models.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (s *fakeInventoryStore) GetByIDTx(ctx context.Context, tx pgx.Tx, id int) (*models.InventoryItem, error) {
	return s.GetByID(ctx, id)
}

func (s *fakeInventoryStore) AdjustQuantityOutTx(ctx context.Context, tx pgx.Tx, id, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjusted[id] += delta
	return nil
}

func (s *fakeInventoryStore) DeductQuantityTx(ctx context.Context, tx pgx.Tx, id, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id].Quantity -= amount
	s.deducted[id] += amount
	return nil
}

type fakeDeptStore struct {
	mu            sync.Mutex
	departments   map[int]*models.Department
	roles         map[string]string        // "deptID:userID" -> role
	membersByRole map[string][]*models.User // "deptID:role" -> users
}

func newFakeDeptStore(departments ...*models.Department) *fakeDeptStore {
	s := &fakeDeptStore{
		departments:   make(map[int]*models.Department),
		roles:         make(map[string]string),
		membersByRole: make(map[string][]*models.User),
	}
	for _, d := range departments {
		cp := *d
		s.departments[d.ID] = &cp
	}
	return s
}

func (s *fakeDeptStore) setRole(departmentID, userID int, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[fmt.Sprintf("%d:%d", departmentID, userID)] = role
	key := fmt.Sprintf("%d:%s", departmentID, role)
	s.membersByRole[key] = append(s.membersByRole[key], &models.User{ID: userID})
}

func (s *fakeDeptStore) GetByID(ctx context.Context, id int) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (s *fakeDeptStore) GetMemberRole(ctx context.Context, departmentID, userID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[fmt.Sprintf("%d:%d", departmentID, userID)]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return role, nil
}

func (s *fakeDeptStore) ListMembersByRole(ctx context.Context, departmentID int, role string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.User(nil), s.membersByRole[fmt.Sprintf("%d:%s", departmentID, role)]...), nil
}

type fakeAuditStore struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (s *fakeAuditStore) CreateTx(ctx context.Context, tx pgx.Tx, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *log
	s.logs = append(s.logs, &cp)
	return nil
}

func (s *fakeAuditStore) entries() []*models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AuditLog(nil), s.logs...)
}

type fakeNotifier struct {
	mu         sync.Mutex
	dispatched []*models.CreateNotification
	broadcasts int
}

func (n *fakeNotifier) Dispatch(cn *models.CreateNotification, emailSubject, emailBody string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dispatched = append(n.dispatched, cn)
}

func (n *fakeNotifier) BroadcastRequestUpdate() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcasts++
}

func (n *fakeNotifier) sent() []*models.CreateNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*models.CreateNotification(nil), n.dispatched...)
}
