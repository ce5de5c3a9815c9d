package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "STORE_SVC_SKIP_INTEGRATION_TESTS"

// StoreSuite is a test suite for the PostgreSQL store implementations.
type StoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	products    ProductStore                //
	sales       SaleStore                   //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container,
func (s *StoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "store_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	// Build path to migrations directory
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../migrations")
	sourceURL := "file://" + migrationsPath
	// Create a new migrate instance with the source URL and connection string
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	// Apply all available migrations
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.products = NewPgProductStore(s.dbPool)
	s.sales = NewPgSaleStore(s.dbPool)
	s.logger.Info("Initialization complete for StoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *StoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating every table.
func (s *StoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products, sales RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate tables")
}

// TestStoreIntegration runs the store integration tests.
func TestStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(StoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *StoreSuite) createTestProduct(name string, quantity int32) *Product {
	s.T().Helper()
	product, err := s.products.Create(s.ctx, name, quantity)
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

// createTestSale is a helper function to create a sale for testing purposes.
func (s *StoreSuite) createTestSale(items []SaleItem) *Sale {
	s.T().Helper()
	sale, err := s.sales.Create(s.ctx, items)
	require.NoError(s.T(), err, "createTestSale helper failed to create sale")
	return sale
}

func (s *StoreSuite) TestProductCreate() {
	s.SetupTest()
	// given

	// when
	created := s.createTestProduct("Heineken 600ml", 10)

	// then
	require.NotZero(s.T(), created.ID, "Created product ID should not be zero")
	require.Equal(s.T(), "Heineken 600ml", created.Name)
	require.Equal(s.T(), int32(10), created.Quantity)
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
}

func (s *StoreSuite) TestProductFindByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Heineken 600ml", 10)

	// when
	fetched, err := s.products.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.Equal(s.T(), created.Name, fetched.Name)
	require.Equal(s.T(), created.Quantity, fetched.Quantity)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
}

func (s *StoreSuite) TestProductFindByID_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	_, err := s.products.FindByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, serrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *StoreSuite) TestProductFindByName() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Heineken 600ml", 10)

	// when
	fetched, err := s.products.FindByName(s.ctx, "Heineken 600ml")

	// then
	require.NoError(s.T(), err, "FindByName should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)

	_, err = s.products.FindByName(s.ctx, "Skol Lata 250ml")
	require.ErrorIs(s.T(), err, serrors.ErrProductNotFound, "Expected ErrProductNotFound for unknown name")
}

func (s *StoreSuite) TestProductFindAll() {
	s.SetupTest()
	// given
	s.createTestProduct("Heineken 600ml", 10)
	s.createTestProduct("Skol Lata 250ml", 20)

	// when
	products, err := s.products.FindAll(s.ctx)

	// then
	require.NoError(s.T(), err, "FindAll should not return an error")
	require.Len(s.T(), products, 2, "Should retrieve 2 products")
}

func (s *StoreSuite) TestProductUpdate() {
	testCases := []struct {
		name             string
		nonExistentID    bool
		expectedModified int64
	}{
		{
			name:             "Successful Update",
			expectedModified: 1,
		},
		{
			name:             "Update Non-Existent Product",
			nonExistentID:    true,
			expectedModified: 0,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			// given
			created := s.createTestProduct("Heineken 600ml", 10)
			id := created.ID
			if tc.nonExistentID {
				id = uuid.New()
			}

			// when
			modified, err := s.products.Update(s.ctx, id, "Skol Lata 250ml", 7)

			// then
			require.NoError(s.T(), err, "Update should not return an error")
			require.Equal(s.T(), tc.expectedModified, modified)
			if tc.expectedModified > 0 {
				updated, err := s.products.FindByID(s.ctx, created.ID)
				require.NoError(s.T(), err)
				assert.Equal(s.T(), "Skol Lata 250ml", updated.Name)
				assert.Equal(s.T(), int32(7), updated.Quantity)
			}
		})
	}
}

func (s *StoreSuite) TestProductDeleteByID() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Heineken 600ml", 10)

	// when
	deleted, err := s.products.DeleteByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "DeleteByID should not return an error")
	require.Equal(s.T(), created.ID, deleted.ID)
	require.Equal(s.T(), created.Name, deleted.Name)

	_, err = s.products.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, serrors.ErrProductNotFound, "Deleted product should be gone")

	_, err = s.products.DeleteByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, serrors.ErrProductNotFound, "Second delete should report not found")
}

func (s *StoreSuite) TestProductAdjustQuantity() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Heineken 600ml", 10)

	// when
	err := s.products.AdjustQuantity(s.ctx, created.ID, -3)

	// then
	require.NoError(s.T(), err, "AdjustQuantity should not return an error")
	adjusted, err := s.products.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(7), adjusted.Quantity)

	err = s.products.AdjustQuantity(s.ctx, created.ID, 5)
	require.NoError(s.T(), err)
	adjusted, err = s.products.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), err)
	require.Equal(s.T(), int32(12), adjusted.Quantity)
}

func (s *StoreSuite) TestProductAdjustQuantity_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	err := s.products.AdjustQuantity(s.ctx, uuid.New(), -1)

	// then
	require.ErrorIs(s.T(), err, serrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *StoreSuite) TestProductAdjustQuantity_NegativeStockRejected() {
	s.SetupTest()
	// given
	created := s.createTestProduct("Heineken 600ml", 2)

	// when
	err := s.products.AdjustQuantity(s.ctx, created.ID, -3)

	// then
	require.Error(s.T(), err, "Driving stock below zero should violate the check constraint")
	unchanged, findErr := s.products.FindByID(s.ctx, created.ID)
	require.NoError(s.T(), findErr)
	require.Equal(s.T(), int32(2), unchanged.Quantity, "Quantity should be unchanged after rejected adjustment")
}

func (s *StoreSuite) TestSaleCreate() {
	s.SetupTest()
	// given
	product := s.createTestProduct("Heineken 600ml", 10)
	items := []SaleItem{{ProductID: product.ID, Quantity: 2}}

	// when
	created := s.createTestSale(items)

	// then
	require.NotZero(s.T(), created.ID, "Created sale ID should not be zero")
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
	require.Len(s.T(), created.Items, 1, "Should create one sale item")
	require.Equal(s.T(), product.ID, created.Items[0].ProductID)
	require.Equal(s.T(), int32(2), created.Items[0].Quantity)
}

func (s *StoreSuite) TestSaleFindByID() {
	s.SetupTest()
	// given
	p1 := s.createTestProduct("Heineken 600ml", 10)
	p2 := s.createTestProduct("Skol Lata 250ml", 20)
	created := s.createTestSale([]SaleItem{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p2.ID, Quantity: 5},
	})

	// when
	fetched, err := s.sales.FindByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "FindByID should not return an error")
	require.Equal(s.T(), created.ID, fetched.ID)
	require.WithinDuration(s.T(), created.CreatedAt, fetched.CreatedAt, time.Second)
	require.Len(s.T(), fetched.Items, 2, "Should fetch both sale items")
	require.Equal(s.T(), p1.ID, fetched.Items[0].ProductID)
	require.Equal(s.T(), int32(2), fetched.Items[0].Quantity)
	require.Equal(s.T(), p2.ID, fetched.Items[1].ProductID)
	require.Equal(s.T(), int32(5), fetched.Items[1].Quantity)
}

func (s *StoreSuite) TestSaleFindByID_NotFound() {
	s.SetupTest()
	// given (no sales created)

	// when
	_, err := s.sales.FindByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, serrors.ErrSaleNotFound, "Expected ErrSaleNotFound for non-existent sale")
}

func (s *StoreSuite) TestSaleFindAll() {
	s.SetupTest()
	// given
	p1 := s.createTestProduct("Heineken 600ml", 10)
	s.createTestSale([]SaleItem{{ProductID: p1.ID, Quantity: 2}})
	s.createTestSale([]SaleItem{{ProductID: p1.ID, Quantity: 3}})

	// when
	sales, err := s.sales.FindAll(s.ctx)

	// then
	require.NoError(s.T(), err, "FindAll should not return an error")
	require.Len(s.T(), sales, 2, "Should retrieve 2 sales")
	for _, sale := range sales {
		assert.Len(s.T(), sale.Items, 1, "Each sale should carry its items")
	}
}

func (s *StoreSuite) TestSaleReplaceItems() {
	testCases := []struct {
		name             string
		nonExistentID    bool
		expectedModified int64
	}{
		{
			name:             "Successful Replace",
			expectedModified: 1,
		},
		{
			name:             "Replace On Non-Existent Sale",
			nonExistentID:    true,
			expectedModified: 0,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			// given
			p1 := s.createTestProduct("Heineken 600ml", 10)
			p2 := s.createTestProduct("Skol Lata 250ml", 20)
			created := s.createTestSale([]SaleItem{{ProductID: p1.ID, Quantity: 2}})
			id := created.ID
			if tc.nonExistentID {
				id = uuid.New()
			}

			// when
			modified, err := s.sales.ReplaceItems(s.ctx, id, []SaleItem{{ProductID: p2.ID, Quantity: 5}})

			// then
			require.NoError(s.T(), err, "ReplaceItems should not return an error")
			require.Equal(s.T(), tc.expectedModified, modified)
			if tc.expectedModified > 0 {
				updated, err := s.sales.FindByID(s.ctx, created.ID)
				require.NoError(s.T(), err)
				require.Len(s.T(), updated.Items, 1, "Old items should be replaced, not appended")
				assert.Equal(s.T(), p2.ID, updated.Items[0].ProductID)
				assert.Equal(s.T(), int32(5), updated.Items[0].Quantity)
			}
		})
	}
}

func (s *StoreSuite) TestSaleDeleteByID() {
	s.SetupTest()
	// given
	p1 := s.createTestProduct("Heineken 600ml", 10)
	created := s.createTestSale([]SaleItem{{ProductID: p1.ID, Quantity: 2}})

	// when
	deleted, err := s.sales.DeleteByID(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "DeleteByID should not return an error")
	require.Equal(s.T(), created.ID, deleted.ID)
	require.Len(s.T(), deleted.Items, 1, "Previous value should carry the items")

	_, err = s.sales.FindByID(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, serrors.ErrSaleNotFound, "Deleted sale should be gone")

	// Item rows are removed by the cascade
	var itemCount int
	err = s.dbPool.QueryRow(s.ctx, "SELECT count(*) FROM sale_items WHERE sale_id = $1", created.ID).Scan(&itemCount)
	require.NoError(s.T(), err)
	require.Zero(s.T(), itemCount, "Sale items should be deleted with the sale")
}

func (s *StoreSuite) TestSaleDeleteByID_NotFound() {
	s.SetupTest()
	// given (no sales created)

	// when
	_, err := s.sales.DeleteByID(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, serrors.ErrSaleNotFound, "Expected ErrSaleNotFound for non-existent sale")
}
