package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"crm-core/internal/config"
	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2025, 3, 10, 8, 0, 5, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type stubQueries struct {
	service.QueryResolver

	err         error
	customers   []*domain.Customer
	orders      []*domain.Order
	orderFilter query.OrderFilter
}

func (s *stubQueries) Hello(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return service.Greeting, nil
}

func (s *stubQueries) ListCustomers(ctx context.Context, filter query.CustomerFilter, orderBy []query.OrderKey) ([]*domain.Customer, error) {
	return s.customers, s.err
}

func (s *stubQueries) ListOrders(ctx context.Context, filter query.OrderFilter, orderBy []query.OrderKey) ([]*domain.Order, error) {
	s.orderFilter = filter
	return s.orders, s.err
}

type stubMutations struct {
	service.MutationResolver

	err    error
	amount *int
	result *service.RestockResult
}

func (s *stubMutations) UpdateLowStockProducts(ctx context.Context, restockAmount *int) (*service.RestockResult, error) {
	s.amount = restockAmount
	return s.result, s.err
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

func messages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		out = append(out, e.Message)
	}
	return out
}

func TestHeartbeat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"healthy", nil, "10/03/2025-08:00:05 CRM is alive - GraphQL OK (Hello, GraphQL!)"},
		{"store down", errors.New("connection refused"), "10/03/2025-08:00:05 CRM is alive - GraphQL check failed (connection refused)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed()
			h := NewHeartbeat(&stubQueries{err: tt.err}, logger)
			h.now = fixedClock

			require.NoError(t, h.Run(context.Background()))
			assert.Equal(t, []string{tt.want}, messages(logs))
		})
	}
}

func TestReminders_LogsOrdersInWindow(t *testing.T) {
	logger, logs := observed()
	orderID := uuid.MustParse("6f1c1f1e-4a43-4b8a-9b53-6d5f1b1d2c3a")
	q := &stubQueries{orders: []*domain.Order{{
		ID:        orderID,
		Customer:  &domain.Customer{Name: "Alice", Email: "alice@example.com"},
		OrderDate: fixedNow.Add(-48 * time.Hour),
	}}}
	r := NewReminders(q, 0, logger)
	r.now = fixedClock

	require.NoError(t, r.Run(context.Background()))

	require.NotNil(t, q.orderFilter.OrderDateFrom)
	assert.Equal(t, fixedNow.Add(-7*24*time.Hour), *q.orderFilter.OrderDateFrom)
	assert.Equal(t, []string{
		"Found 1 pending orders.",
		"Order ID: 6f1c1f1e-4a43-4b8a-9b53-6d5f1b1d2c3a, Customer: Alice <alice@example.com>, Order Date: 2025-03-08T08:00:05Z",
	}, messages(logs))
}

func TestReminders_PropagatesFailure(t *testing.T) {
	logger, logs := observed()
	r := NewReminders(&stubQueries{err: errors.New("timeout")}, time.Hour, logger)

	assert.Error(t, r.Run(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Error fetching pending orders").Len())
}

func TestReport_SumsRevenueExactly(t *testing.T) {
	logger, logs := observed()
	q := &stubQueries{
		customers: []*domain.Customer{{}, {}, {}},
		orders: []*domain.Order{
			{TotalAmount: decimal.RequireFromString("0.10")},
			{TotalAmount: decimal.RequireFromString("0.20")},
			{TotalAmount: decimal.RequireFromString("1499.98")},
		},
	}
	r := NewReport(q, logger)
	r.now = fixedClock

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"2025-03-10 08:00:05 - Report: 3 customers, 3 orders, 1500.28 total revenue"}, messages(logs))
}

func TestRestock_LogsEachProduct(t *testing.T) {
	logger, logs := observed()
	m := &stubMutations{result: &service.RestockResult{
		Products: []*domain.Product{{Name: "Cable", Stock: 13}, {Name: "Mouse", Stock: 19}},
		Message:  "2 low-stock products updated.",
	}}

	require.NoError(t, NewRestock(m, 10, logger).Run(context.Background()))

	assert.Equal(t, 10, *m.amount)
	assert.Equal(t, []string{
		"2 low-stock products updated.",
		"Product: Cable, New stock: 13",
		"Product: Mouse, New stock: 19",
	}, messages(logs))
}

func TestBuild_OpensOneSinkPerJob(t *testing.T) {
	cfg := config.JobsConfig{
		HeartbeatSchedule: "*/5 * * * *",
		ReminderSchedule:  "0 8 * * *",
		ReportSchedule:    "0 6 * * 1",
		RestockSchedule:   "0 */12 * * *",
		RestockAmount:     10,
		HeartbeatLog:      "heartbeat.log",
		ReminderLog:       "reminders.log",
		ReportLog:         "report.log",
		RestockLog:        "restock.log",
	}
	opened := map[string]bool{}
	open := func(path string) (*zap.Logger, error) {
		opened[path] = true
		return zap.NewNop(), nil
	}

	entries, err := Build(cfg, &stubQueries{}, &stubMutations{}, open)
	require.NoError(t, err)

	assert.Len(t, entries, 4)
	assert.Len(t, opened, 4)
	for _, name := range []string{HeartbeatJob, ReminderJob, ReportJob, RestockJob} {
		job, err := Find(entries, name)
		require.NoError(t, err)
		assert.Equal(t, name, job.Name())
	}

	_, err = Find(entries, "vacuum")
	assert.ErrorContains(t, err, `unknown job "vacuum"`)
}

func TestBuild_SinkFailure(t *testing.T) {
	open := func(path string) (*zap.Logger, error) { return nil, fmt.Errorf("permission denied") }

	_, err := Build(config.JobsConfig{HeartbeatLog: "/root/x"}, &stubQueries{}, &stubMutations{}, open)
	assert.ErrorContains(t, err, "permission denied")
}

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestScheduler_RunNowRecordsOutcome(t *testing.T) {
	logger, logs := observed()
	reg := prometheus.NewRegistry()
	s := NewScheduler(logger, time.Second, reg)

	ok := &countingJob{}
	bad := &countingJob{err: errors.New("boom")}
	require.NoError(t, s.RunNow(context.Background(), ok))
	require.Error(t, s.RunNow(context.Background(), bad))

	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, logs.FilterMessage("Job completed").Len())
	assert.Equal(t, 1, logs.FilterMessage("Job failed").Len())

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, strings.Join(names, ","), "crm_jobs_runs_total")
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop(), 0, prometheus.NewRegistry())

	assert.Error(t, s.Add("every tuesday", &countingJob{}))
	assert.NoError(t, s.Add("*/5 * * * *", &countingJob{}))

	s.Start()
	require.NoError(t, s.Stop(context.Background()))
}
