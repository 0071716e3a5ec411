package handler

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/yusufkecer/hospital-backend/internal/domain"
	"github.com/yusufkecer/hospital-backend/internal/realtime"
)

type fakeAccounts struct {
	mu    sync.Mutex
	next  int64
	items map[int64]*domain.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{items: map[int64]*domain.Account{}}
}

func (f *fakeAccounts) Create(ctx context.Context, a *domain.Account) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Email == a.Email {
			return 0, &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
		}
	}
	f.next++
	cp := *a
	cp.ID = f.next
	f.items[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAccounts) List(ctx context.Context, role domain.Role) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, a := range f.items {
		if role == "" || a.Role == role {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAccounts) UpdatePassword(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		a.PasswordHash = hash
	}
	return nil
}

func (f *fakeAccounts) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

type fakeResetTokens struct {
	mu      sync.Mutex
	tokens  []domain.PasswordResetToken
	codes   []string
	created chan string
}

func (f *fakeResetTokens) Create(ctx context.Context, accountID int64, code string, expiresAt time.Time) error {
	f.mu.Lock()
	f.tokens = append(f.tokens, domain.PasswordResetToken{
		ID: int64(len(f.tokens) + 1), AccountID: accountID, ExpiresAt: expiresAt,
	})
	f.codes = append(f.codes, code)
	f.mu.Unlock()
	if f.created != nil {
		f.created <- code
	}
	return nil
}

func (f *fakeResetTokens) FindValid(ctx context.Context, accountID int64, code string, now time.Time) (*domain.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.tokens) - 1; i >= 0; i-- {
		t := f.tokens[i]
		if t.AccountID == accountID && f.codes[i] == code && !t.Used && t.ExpiresAt.After(now) {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeResetTokens) Consume(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tokens {
		if f.tokens[i].ID == id && !f.tokens[i].Used {
			f.tokens[i].Used = true
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResetTokens) RevokeAll(ctx context.Context, accountID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tokens {
		if f.tokens[i].AccountID == accountID {
			f.tokens[i].Used = true
		}
	}
	return nil
}

type fakePatients struct {
	mu    sync.Mutex
	next  int64
	items map[int64]*domain.Patient
	// createErr, when set, fails every Create.
	createErr error
}

// clonePatient copies a record the way a database round trip would, so
// callers never share pointers with stored rows.
func clonePatient(p *domain.Patient) *domain.Patient {
	cp := *p
	if p.AccountID != nil {
		id := *p.AccountID
		cp.AccountID = &id
	}
	return &cp
}

func newFakePatients() *fakePatients {
	return &fakePatients{items: map[int64]*domain.Patient{}}
}

func (f *fakePatients) Create(ctx context.Context, p *domain.Patient) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.next++
	cp := clonePatient(p)
	cp.ID = f.next
	f.items[cp.ID] = cp
	return cp.ID, nil
}

func (f *fakePatients) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.items[id]; ok {
		return clonePatient(p), nil
	}
	return nil, nil
}

func (f *fakePatients) GetByAccountID(ctx context.Context, accountID int64) (*domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.AccountID != nil && *p.AccountID == accountID {
			return clonePatient(p), nil
		}
	}
	return nil, nil
}

func (f *fakePatients) List(ctx context.Context, filter domain.PatientFilter) ([]domain.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Patient
	for _, p := range f.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePatients) Update(ctx context.Context, p *domain.Patient) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.ID] = clonePatient(p)
	return nil
}

func (f *fakePatients) UpdateBMI(ctx context.Context, id int64, height, weight, bmi float64, category string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.items[id]
	p.Height, p.Weight, p.BMI, p.BMICategory = &height, &weight, &bmi, &category
	return nil
}

func (f *fakePatients) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

type fakeAppointments struct {
	mu    sync.Mutex
	next  int64
	items map[int64]*domain.Appointment
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{items: map[int64]*domain.Appointment{}}
}

func (f *fakeAppointments) Create(ctx context.Context, a *domain.Appointment) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	cp := *a
	cp.ID = f.next
	f.items[cp.ID] = &cp
	return cp.ID, nil
}

func (f *fakeAppointments) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAppointments) List(ctx context.Context, filter domain.AppointmentFilter) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Appointment
	for _, a := range f.items {
		if filter.PatientID > 0 && a.PatientID != filter.PatientID {
			continue
		}
		if filter.DoctorID > 0 && a.DoctorID != filter.DoctorID {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAppointments) Update(ctx context.Context, a *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.items[a.ID] = &cp
	return nil
}

func (f *fakeAppointments) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[id].Status = status
	return nil
}

func (f *fakeAppointments) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

func (f *fakeAppointments) HasConflict(ctx context.Context, doctorID int64, at time.Time, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		active := a.Status == domain.AppointmentScheduled || a.Status == domain.AppointmentConfirmed
		if a.DoctorID == doctorID && a.ScheduledAt.Equal(at) && a.ID != excludeID && active {
			return true, nil
		}
	}
	return false, nil
}

type fakeFitness struct {
	mu    sync.Mutex
	items []domain.FitnessData
}

func (f *fakeFitness) Create(ctx context.Context, d *domain.FitnessData) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	cp.ID = int64(len(f.items) + 1)
	f.items = append(f.items, cp)
	return cp.ID, nil
}

func (f *fakeFitness) GetByID(ctx context.Context, id int64) (*domain.FitnessData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.items {
		if d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeFitness) List(ctx context.Context, filter domain.FitnessFilter) ([]domain.FitnessData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FitnessData
	for _, d := range f.items {
		if d.PatientID == filter.PatientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeFitness) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, d := range f.items {
		if d.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeMessages struct {
	mu    sync.Mutex
	items []domain.Message
}

func (f *fakeMessages) Create(ctx context.Context, m *domain.Message) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	cp.ID = int64(len(f.items) + 1)
	f.items = append(f.items, cp)
	return cp.ID, nil
}

func (f *fakeMessages) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.ID == id {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeMessages) Conversation(ctx context.Context, a, b int64, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.items {
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) Inbox(ctx context.Context, recipientID int64, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Message
	for _, m := range f.items {
		if m.RecipientID == recipientID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) MarkRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
		}
	}
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	items []domain.QueueEntry
	days  map[int64]string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{days: map[int64]string{}}
}

func (f *fakeQueue) Join(ctx context.Context, q *domain.QueueEntry, day string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	last := 0
	for _, e := range f.items {
		if e.Department == q.Department && f.days[e.ID] == day && e.QueueNumber > last {
			last = e.QueueNumber
		}
	}
	q.QueueNumber = last + 1
	q.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *q)
	f.days[q.ID] = day
	return nil
}

func (f *fakeQueue) GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.items {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeQueue) List(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QueueEntry
	for _, e := range f.items {
		if f.days[e.ID] != filter.Date {
			continue
		}
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		if filter.Status != "" && string(e.Status) != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeQueue) QueueDate(ctx context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.days[id], nil
}

func (f *fakeQueue) UpdateStatus(ctx context.Context, id int64, status domain.QueueStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
		}
	}
	return nil
}

func (f *fakeQueue) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.items {
		if e.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeActivity struct {
	mu    sync.Mutex
	items []domain.ActivityLog
}

func (f *fakeActivity) Create(ctx context.Context, l *domain.ActivityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = strconv.Itoa(len(f.items) + 1)
	f.items = append(f.items, *l)
	return nil
}

func (f *fakeActivity) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ActivityLog
	for _, l := range f.items {
		if filter.AccountID > 0 && l.AccountID != filter.AccountID {
			continue
		}
		if filter.Resource != "" && l.Resource != filter.Resource {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeActivity) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.items {
		out = append(out, l.Action+" "+l.Resource)
	}
	return out
}

type fakeInsights struct {
	mu    sync.Mutex
	items []domain.AIInsight
}

func (f *fakeInsights) Create(ctx context.Context, i *domain.AIInsight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i.ID = "ins" + strconv.Itoa(len(f.items)+1)
	f.items = append(f.items, *i)
	return nil
}

func (f *fakeInsights) GetByID(ctx context.Context, id string) (*domain.AIInsight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, i := range f.items {
		if i.ID == id {
			cp := i
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeInsights) List(ctx context.Context, filter domain.InsightFilter) ([]domain.AIInsight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AIInsight
	for _, i := range f.items {
		if filter.PatientID > 0 && i.PatientID != filter.PatientID {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

func (f *fakeInsights) Delete(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for n, i := range f.items {
		if i.ID == id {
			f.items = append(f.items[:n], f.items[n+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type sentMail struct {
	to, kind, body string
}

type fakeMailer struct {
	sent chan sentMail
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan sentMail, 8)}
}

func (f *fakeMailer) SendPasswordReset(ctx context.Context, to, code string) error {
	f.sent <- sentMail{to: to, kind: "reset", body: code}
	return nil
}

func (f *fakeMailer) SendAppointmentConfirmation(ctx context.Context, to, name string, a *domain.Appointment) error {
	f.sent <- sentMail{to: to, kind: "appointment", body: name}
	return nil
}

type published struct {
	accountID int64
	evt       realtime.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
}

func (f *fakePublisher) Publish(accountID int64, evt realtime.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{accountID: accountID, evt: evt})
	return nil
}
