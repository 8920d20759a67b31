package orders

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/orderform-backend/pkg/config"
	"github.com/angelmondragon/orderform-backend/pkg/db"
	"github.com/angelmondragon/orderform-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/orderform-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrdersTestDB(t *testing.T) *db.Client {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(&models.Order{}, &models.OrderSequence{}))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleDraft(customer string) Draft {
	return Draft{
		CustomerName:    customer,
		CustomerAddress: "12 Market Road",
		OrderDate:       time.Date(2024, 1, 5, 9, 3, 7, 0, time.UTC),
		Salesman:        "Ravi",
		Items: []LineItem{
			{"name": "Paracetamol 500", "qty": float64(10), "mrp": 25.5},
		},
		Status:          "pending",
		Notes:           "deliver before noon",
		TotalBillAmt:    decimal.RequireFromString("240.50"),
		TotalMrpBillAmt: decimal.RequireFromString("255.00"),
	}
}

func seedOrder(t *testing.T, client *db.Client, sln int64) {
	t.Helper()
	record := toRecord(NewOrder(Reference{ID: uuid.NewString()}, sln, sampleDraft(fmt.Sprintf("seed-%d", sln)), decimal.Zero, "seed@example.com"))
	require.NoError(t, client.DB().Create(&record).Error)
}

func TestCreateAssignsCountPlusOne(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	seedOrder(t, client, 1)
	seedOrder(t, client, 2)

	res, err := repo.Create(ctx, sampleDraft("Acme Pharmacy"), decimal.RequireFromString("5"), "sales@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.SLN)
	assert.NotEmpty(t, res.Reference.ID)

	stored, err := repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.SLN)
	assert.Equal(t, "Acme Pharmacy", stored.CustomerName)
	assert.Equal(t, "sales@example.com", stored.CreatedBy)
	assert.True(t, stored.Discount.Equal(decimal.RequireFromString("5")))
	assert.True(t, stored.TotalBillAmt.Equal(decimal.RequireFromString("240.50")))
	assert.True(t, stored.OrderDate.Equal(time.Date(2024, 1, 5, 9, 3, 7, 0, time.UTC)))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "Paracetamol 500", stored.Items[0]["name"])
	assert.Equal(t, float64(10), stored.Items[0]["qty"])
}

func TestCreateSequentialNumbersIncrease(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	var last int64
	for i := 0; i < 4; i++ {
		res, err := repo.Create(ctx, sampleDraft(fmt.Sprintf("customer-%d", i)), decimal.Zero, "sales@example.com")
		require.NoError(t, err)
		assert.Greater(t, res.SLN, last)
		last = res.SLN
	}
	assert.Equal(t, int64(4), last)
}

func TestCreateCatchesUpWithLaggingCounter(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)

	require.NoError(t, client.DB().Create(&models.OrderSequence{Name: orderSequenceName, Value: 0}).Error)
	seedOrder(t, client, 1)
	seedOrder(t, client, 2)

	res, err := repo.Create(context.Background(), sampleDraft("late"), decimal.Zero, "sales@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.SLN)
}

func TestDuplicateSLNIsConflict(t *testing.T) {
	client := setupOrdersTestDB(t)
	seedOrder(t, client, 7)

	record := toRecord(NewOrder(Reference{ID: uuid.NewString()}, 7, sampleDraft("dup"), decimal.Zero, "x@example.com"))
	err := db.Classify(client.DB().Create(&record).Error, "insert")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
}

func TestGetBySLN(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	_, err := repo.GetBySLN(ctx, 42)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, pkgerrors.IsRetryable(err))

	res, err := repo.Create(ctx, sampleDraft("Acme Pharmacy"), decimal.RequireFromString("2.5"), "sales@example.com")
	require.NoError(t, err)

	found, err := repo.GetBySLN(ctx, res.SLN)
	require.NoError(t, err)
	assert.Equal(t, res.Reference.ID, found.ID)
	assert.Equal(t, res.SLN, found.SLN)
	assert.Equal(t, "Acme Pharmacy", found.CustomerName)
	assert.Equal(t, "12 Market Road", found.CustomerAddress)
	assert.Equal(t, "Ravi", found.Salesman)
	assert.Equal(t, "pending", found.Status)
	assert.Equal(t, "deliver before noon", found.Notes)
	assert.True(t, found.Discount.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, found.TotalMrpBillAmt.Equal(decimal.RequireFromString("255")))
}

func TestListOrdersBySLNDescending(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, sln := range []int64{1, 2, 3} {
		seedOrder(t, client, sln)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{list[0].SLN, list[1].SLN, list[2].SLN})
}

func TestUpdateStatusOnlyTouchesStatusAndNotes(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	res, err := repo.Create(ctx, sampleDraft("Acme Pharmacy"), decimal.RequireFromString("5"), "sales@example.com")
	require.NoError(t, err)
	before, err := repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)

	err = repo.UpdateStatus(ctx, Order{
		ID:           res.Reference.ID,
		Status:       "delivered",
		Notes:        "",
		CustomerName: "should be ignored",
		TotalBillAmt: decimal.RequireFromString("1"),
	})
	require.NoError(t, err)

	after, err := repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, "delivered", after.Status)
	assert.Equal(t, "", after.Notes)
	assert.Equal(t, before.CustomerName, after.CustomerName)
	assert.Equal(t, before.SLN, after.SLN)
	assert.True(t, before.TotalBillAmt.Equal(after.TotalBillAmt))
	assert.Equal(t, before.Items, after.Items)
}

func TestUpdateFullKeepsDiscountAndSLN(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	res, err := repo.Create(ctx, sampleDraft("Acme Pharmacy"), decimal.RequireFromString("5"), "sales@example.com")
	require.NoError(t, err)

	edited := NewOrder(res.Reference, 999, sampleDraft("Acme Pharmacy Ltd"), decimal.RequireFromString("50"), "")
	edited.Items = []LineItem{{"name": "Cetirizine", "qty": float64(3)}}
	edited.Status = "packed"
	edited.TotalBillAmt = decimal.RequireFromString("90")
	require.NoError(t, repo.UpdateFull(ctx, edited))

	after, err := repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, "Acme Pharmacy Ltd", after.CustomerName)
	assert.Equal(t, "packed", after.Status)
	assert.True(t, after.TotalBillAmt.Equal(decimal.RequireFromString("90")))
	require.Len(t, after.Items, 1)
	assert.Equal(t, "Cetirizine", after.Items[0]["name"])
	assert.Equal(t, res.SLN, after.SLN)
	assert.True(t, after.Discount.Equal(decimal.RequireFromString("5")))
	assert.Equal(t, "sales@example.com", after.CreatedBy, "blank creator must not overwrite")

	edited.CreatedBy = "manager@example.com"
	require.NoError(t, repo.UpdateFull(ctx, edited))
	after, err = repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, "manager@example.com", after.CreatedBy)
}

func TestUpdateMissingOrderIsNotFound(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)
	ctx := context.Background()

	err := repo.UpdateStatus(ctx, Order{ID: uuid.NewString(), Status: "x"})
	assert.True(t, pkgerrors.IsNotFound(err))

	err = repo.UpdateFull(ctx, Order{ID: uuid.NewString(), CustomerName: "x"})
	assert.True(t, pkgerrors.IsNotFound(err))

	err = repo.UpdateFull(ctx, Order{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestFetchByReferenceMissing(t *testing.T) {
	client := setupOrdersTestDB(t)
	repo := NewRepository(client)

	_, err := repo.FetchByReference(context.Background(), Reference{ID: uuid.NewString()})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCreateKeepsFullDecimalPrecision(t *testing.T) {
	client := setupOrdersTestDB(t)
	assertDecimalRoundTrip(t, NewRepository(client))
}

func TestConcurrentCreatesAcrossClientsGetDistinctSLNs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.db")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate", path)

	var repos []Repository
	for i := 0; i < 2; i++ {
		client, err := db.New(context.Background(), config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })
		if i == 0 {
			require.NoError(t, client.DB().AutoMigrate(&models.Order{}, &models.OrderSequence{}))
		}
		repos = append(repos, NewRepository(client))
	}

	assertConcurrentCreatesUnique(t, repos, 24)
}

func assertDecimalRoundTrip(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	draft := sampleDraft("Precise Pharma")
	draft.TotalBillAmt = decimal.RequireFromString("240.575")
	draft.TotalMrpBillAmt = decimal.RequireFromString("1234.5678")
	res, err := repo.Create(ctx, draft, decimal.RequireFromString("0.125"), "sales@example.com")
	require.NoError(t, err)

	got, err := repo.FetchByReference(ctx, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, "0.125", got.Discount.String())
	assert.Equal(t, "240.575", got.TotalBillAmt.String())
	assert.Equal(t, "1234.5678", got.TotalMrpBillAmt.String())
}

// assertConcurrentCreatesUnique spreads n creates over repos and expects 1..n with no gaps.
func assertConcurrentCreatesUnique(t *testing.T, repos []Repository, n int) {
	t.Helper()
	ctx := context.Background()

	var (
		mu   sync.Mutex
		slns []int64
		errs []error
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repos[i%len(repos)].Create(ctx, sampleDraft(fmt.Sprintf("concurrent-%d", i)), decimal.Zero, "sales@example.com")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			slns = append(slns, res.SLN)
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	sort.Slice(slns, func(i, j int) bool { return slns[i] < slns[j] })
	want := make([]int64, n)
	for i := range want {
		want[i] = int64(i + 1)
	}
	assert.Equal(t, want, slns)
}
