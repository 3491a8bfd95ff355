package services

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kendall-kelly/restaurant-floor-api/config"
	"github.com/kendall-kelly/restaurant-floor-api/events"
	"github.com/kendall-kelly/restaurant-floor-api/models"
	"github.com/kendall-kelly/restaurant-floor-api/printing"
)

// setupPostgres connects to TEST_DATABASE_URL and recreates the schema.
// It refuses to run outside GO_ENV=test so a real database is never wiped.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Skipf("Skipping test: GO_ENV must be 'test' (current: %q)", env)
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Skipping test: TEST_DATABASE_URL not set")
	}

	require.NoError(t, config.ConnectDatabase(url))
	db := config.GetDB()

	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		require.NoError(t, db.Migrator().DropTable(all[i]))
	}
	require.NoError(t, db.AutoMigrate(all...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestCreateOrder_PostgresStockUnderContention(t *testing.T) {
	db := setupPostgres(t)

	waiter := models.Worker{Subject: "auth0|pg-waiter", Fullname: "Aziz Karimov", Role: models.RoleWaiter}
	require.NoError(t, db.Create(&waiter).Error)
	table := models.Table{Number: 1}
	require.NoError(t, db.Create(&table).Error)
	lagman := models.Dish{Name: "Lagman", Price: 22000, Category: models.CategoryFood, Quantity: 5}
	require.NoError(t, db.Create(&lagman).Error)

	svc := NewFloorService(FloorOptions{DB: db, Printer: printing.NewMockPrinter(), Publisher: events.NewMockPublisher()})

	const attempts = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), &waiter, CreateOrderInput{
				TableID: table.ID,
				Items:   []OrderLine{{DishID: lagman.ID, Quantity: 1}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case IsCode(err, CodeInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, placed)
	assert.Equal(t, attempts-5, rejected)

	var dish models.Dish
	require.NoError(t, db.First(&dish, lagman.ID).Error)
	assert.Equal(t, 0, dish.Quantity)
}

func TestCreateOrder_PostgresTableRace(t *testing.T) {
	db := setupPostgres(t)

	first := models.Worker{Subject: "auth0|pg-a", Fullname: "Aziz Karimov", Role: models.RoleWaiter}
	second := models.Worker{Subject: "auth0|pg-b", Fullname: "Bekzod Aliev", Role: models.RoleWaiter}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	table := models.Table{Number: 2}
	require.NoError(t, db.Create(&table).Error)
	tea := models.Dish{Name: "Green Tea", Price: 5000, Category: models.CategoryDrink, Quantity: 100}
	require.NoError(t, db.Create(&tea).Error)

	svc := NewFloorService(FloorOptions{DB: db, Printer: printing.NewMockPrinter(), Publisher: events.NewMockPublisher()})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, w := range []models.Worker{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), &w, CreateOrderInput{
				TableID: table.ID,
				Items:   []OrderLine{{DishID: tea.ID, Quantity: 1}},
			})
		}()
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if err != nil {
			assert.True(t, IsCode(err, CodeTableOwnershipConflict), "unexpected error: %v", err)
			conflicts++
		}
	}
	assert.Equal(t, 1, conflicts, "exactly one waiter should win the table")

	var reloaded models.Table
	require.NoError(t, db.First(&reloaded, table.ID).Error)
	require.NotNil(t, reloaded.WorkerID)
	assert.True(t, reloaded.IsActive)
}

func TestCreateOrder_PostgresCrossedDishOrder(t *testing.T) {
	db := setupPostgres(t)

	first := models.Worker{Subject: "auth0|pg-a", Fullname: "Aziz Karimov", Role: models.RoleWaiter}
	second := models.Worker{Subject: "auth0|pg-b", Fullname: "Bekzod Aliev", Role: models.RoleWaiter}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)
	tableA := models.Table{Number: 3}
	tableB := models.Table{Number: 4}
	require.NoError(t, db.Create(&tableA).Error)
	require.NoError(t, db.Create(&tableB).Error)
	somsa := models.Dish{Name: "Somsa", Price: 7000, Category: models.CategoryFood, Quantity: 100}
	tea := models.Dish{Name: "Green Tea", Price: 5000, Category: models.CategoryDrink, Quantity: 100}
	require.NoError(t, db.Create(&somsa).Error)
	require.NoError(t, db.Create(&tea).Error)

	svc := NewFloorService(FloorOptions{DB: db, Printer: printing.NewMockPrinter(), Publisher: events.NewMockPublisher()})

	// one waiter always names somsa first, the other tea first
	const rounds = 25
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), &first, CreateOrderInput{
				TableID: tableA.ID,
				Items:   []OrderLine{{DishID: somsa.ID, Quantity: 1}, {DishID: tea.ID, Quantity: 1}},
			})
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), &second, CreateOrderInput{
				TableID: tableB.ID,
				Items:   []OrderLine{{DishID: tea.ID, Quantity: 1}, {DishID: somsa.ID, Quantity: 1}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var reloaded models.Dish
	require.NoError(t, db.First(&reloaded, somsa.ID).Error)
	assert.Equal(t, 100-2*rounds, reloaded.Quantity)
	require.NoError(t, db.First(&reloaded, tea.ID).Error)
	assert.Equal(t, 100-2*rounds, reloaded.Quantity)

	var order models.Order
	require.NoError(t, db.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Where("table_id = ?", tableB.ID).First(&order).Error)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Green Tea", order.Items[0].Name, "items keep the order they were requested in")
}

func TestCloseOrder_PostgresSiblingsReleaseOnce(t *testing.T) {
	db := setupPostgres(t)

	waiter := models.Worker{Subject: "auth0|pg-waiter", Fullname: "Aziz Karimov", Role: models.RoleWaiter}
	require.NoError(t, db.Create(&waiter).Error)
	table := models.Table{Number: 7}
	require.NoError(t, db.Create(&table).Error)
	tea := models.Dish{Name: "Green Tea", Price: 5000, Category: models.CategoryDrink, Quantity: 100}
	require.NoError(t, db.Create(&tea).Error)

	publisher := events.NewMockPublisher()
	svc := NewFloorService(FloorOptions{DB: db, Printer: printing.NewMockPrinter(), Publisher: publisher})

	ids := make([]uint, 2)
	for i := range ids {
		result, err := svc.CreateOrder(context.Background(), &waiter, CreateOrderInput{
			TableID: table.ID,
			Items:   []OrderLine{{DishID: tea.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		ids[i] = result.Order.ID
	}

	results := make([]*CloseResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.CloseOrder(context.Background(), &waiter, id)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.NotEqual(t, results[0].TableReleased, results[1].TableReleased, "exactly one close releases the table")

	var reloaded models.Table
	require.NoError(t, db.First(&reloaded, table.ID).Error)
	assert.False(t, reloaded.IsActive)
	assert.Nil(t, reloaded.WorkerID)
}
