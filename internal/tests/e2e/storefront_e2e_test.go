// Package e2e provides end-to-end tests for the storefront service.
// The suite starts a PostgreSQL container with testcontainers-go, applies the catalog migrations and
// loads the seed into it. Carts are persisted in an in-process Redis (miniredis). The real handler
// built by app.SetupDependencies runs in an httptest.Server.
//
// Covered flows:
//   - Catalog browsing: price range, sort keys, related products and lookup misses.
//   - Cart mutations with stock clamping and removal, persisted to Redis.
//   - Cart rehydration from stored data, including corrupt and legacy documents.
//   - Checkout of an authenticated session and cart clearing.
//   - Live pricing after an admin catalog reload.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abgdnv/gostorefront/internal/app"
	"github.com/abgdnv/gostorefront/internal/cart"
	"github.com/abgdnv/gostorefront/internal/catalog"
	"github.com/abgdnv/gostorefront/internal/catalog/store"
	"github.com/abgdnv/gostorefront/internal/checkout"
	"github.com/abgdnv/gostorefront/internal/config"
	"github.com/abgdnv/gostorefront/internal/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "STOREFRONT_SKIP_E2E_TESTS"

const apiURL = "/api/v1"

// StorefrontE2ESuite is a test suite for end-to-end tests of the storefront.
type StorefrontE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	redis       *miniredis.Miniredis
	deps        *app.Dependencies
	server      *httptest.Server
	httpClient  *http.Client
	logger      *slog.Logger
	ctx         context.Context
}

// testConfig reads the catalog from PostgreSQL and keeps carts in Redis.
func testConfig(dbURL, redisAddr string) *config.Config {
	var cfg config.Config

	cfg.HTTPServer.Port = 0
	cfg.HTTPServer.MaxHeaderBytes = 1 << 20
	cfg.HTTPServer.Timeout.Read = 10 * time.Minute
	cfg.HTTPServer.Timeout.Write = 10 * time.Minute
	cfg.HTTPServer.Timeout.Idle = 60 * time.Minute
	cfg.HTTPServer.Timeout.ReadHeader = 5 * time.Minute

	cfg.Catalog.Source = config.CatalogSourcePostgres
	cfg.Catalog.Database = config.DatabaseConfig{URL: dbURL, Timeout: 10 * time.Second}

	cfg.Cart.Storage = config.CartStorageRedis
	cfg.Cart.KeyPrefix = "cart"
	cfg.Cart.TTL = time.Hour
	cfg.Cart.Redis = config.RedisConfig{URL: "redis://" + redisAddr + "/0", Timeout: 2 * time.Second}
	cfg.Cart.CircuitBreaker = config.CircuitBreakerConfig{ConsecutiveFailures: 5, OpenTimeout: time.Second}

	cfg.Session.IdleTimeout = time.Hour
	cfg.Session.SweepInterval = time.Minute
	cfg.Auth = config.AuthConfig{Secret: "e2e-storefront-secret", Issuer: "storefront", TTL: time.Hour}
	cfg.Checkout.TaxPercent = checkout.DefaultTaxPercent
	return &cfg
}

func (s *StorefrontE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// 1. Start a PostgreSQL container and wait until it accepts connections.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")
	for i := range 10 {
		s.logger.Info("Pinging E2E PostgreSQL database", "attempt", i+1)
		if err = s.dbPool.Ping(s.ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 2. Apply the catalog migrations and load the seed.
	wd, _ := os.Getwd()
	sourceURL := "file://" + filepath.Join(wd, "..", "..", "..", "migrations", "catalog")
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.insertSeed()
	s.logger.Info("Migrations and seed applied for E2E tests")

	// 3. In-process Redis for carts.
	s.redis, err = miniredis.Run()
	require.NoError(s.T(), err, "Failed to start miniredis")

	// 4. Build the application.
	s.deps, err = app.SetupDependencies(s.ctx, testConfig(connStr, s.redis.Addr()), s.logger)
	require.NoError(s.T(), err, "Failed to setup application for E2E")

	s.server = httptest.NewServer(app.SetupHttpHandler(s.deps))
	s.httpClient = s.server.Client()
	s.logger.Info("E2E test server started", "url", s.server.URL)
}

func (s *StorefrontE2ESuite) TearDownSuite() {
	s.logger.Info("Tearing down E2E suite...")
	if s.server != nil {
		s.server.Close()
	}
	if s.deps != nil {
		if err := s.deps.Close(s.ctx); err != nil {
			s.logger.Warn("Failed to close dependencies", "error", err)
		}
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("Failed to terminate E2E PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties Redis. Each test starts its own session.
func (s *StorefrontE2ESuite) SetupTest() {
	s.redis.FlushAll()
}

func TestStorefrontE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(StorefrontE2ESuite))
}

// --------------------------------------------------------------------------
// ---------------------------- Helper methods ------------------------------
// --------------------------------------------------------------------------

func (s *StorefrontE2ESuite) insertSeed() {
	s.T().Helper()
	products, categories, err := store.NewSeedLoader("").Load(s.ctx)
	require.NoError(s.T(), err)
	for i, c := range categories {
		_, err := s.dbPool.Exec(s.ctx,
			"INSERT INTO categories (id, name, slug, position) VALUES ($1, $2, $3, $4)",
			c.ID, c.Name, c.Slug, i)
		require.NoError(s.T(), err)
	}
	for i, p := range products {
		_, err := s.dbPool.Exec(s.ctx,
			`INSERT INTO products (id, name, description, price, category, image, seller, rating, reviews,
                      featured, discount, tags, stock, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Seller, p.Rating, p.Reviews,
			p.Featured, p.Discount, p.Tags, p.Stock, i)
		require.NoError(s.T(), err)
	}
}

// client carries a session ID and an optional bearer token between requests.
type client struct {
	s         *StorefrontE2ESuite
	sessionID string
	token     string
}

func (s *StorefrontE2ESuite) newClient() *client {
	return &client{s: s}
}

// do sends the request and returns the body and status code. The session ID returned by the
// server is kept for the following requests.
func (c *client) do(method, path string, payload any) ([]byte, int) {
	c.s.T().Helper()
	var body io.Reader
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		require.NoError(c.s.T(), err)
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(c.s.ctx, method, c.s.server.URL+apiURL+path, body)
	require.NoError(c.s.T(), err, "Failed to create HTTP request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionID != "" {
		req.Header.Set(session.HeaderName, c.sessionID)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.s.httpClient.Do(req)
	require.NoError(c.s.T(), err, "HTTP request failed")
	defer func() {
		require.NoError(c.s.T(), resp.Body.Close(), "Failed to close response body")
	}()
	if id := resp.Header.Get(session.HeaderName); id != "" {
		c.sessionID = id
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(c.s.T(), err, "Failed to read response body")
	return bodyBytes, resp.StatusCode
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func productIDs(products []catalog.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// signUp registers a user with the given role and stores its token in the client.
func (c *client) signUp(role string) {
	c.s.T().Helper()
	body, status := c.do(http.MethodPost, "/auth/signup", map[string]string{
		"email": "e2e@example.com", "password": "secret", "name": "E2E", "role": role,
	})
	require.Equal(c.s.T(), http.StatusCreated, status, string(body))
	resp := decode[struct {
		Token string `json:"token"`
	}](c.s.T(), body)
	require.NotEmpty(c.s.T(), resp.Token)
	c.token = resp.Token
}

func (s *StorefrontE2ESuite) storedCart(sessionID string) (string, bool) {
	s.T().Helper()
	v, err := s.redis.Get("cart:" + sessionID)
	if err != nil {
		return "", false
	}
	return v, true
}

// --------------------------------------------------------------
// ---------------------- E2E test methods ----------------------
// --------------------------------------------------------------

func (s *StorefrontE2ESuite) TestBrowse_E2E() {
	testCases := []struct {
		name         string
		query        string
		expectedCode int
		expectedIDs  []string
	}{
		{
			name:         "Price range with default sort",
			query:        "?min=0&max=1500",
			expectedCode: http.StatusOK,
			expectedIDs:  []string{"prod_8", "prod_6", "prod_5", "prod_1"},
		},
		{
			name:         "Price range sorted by price",
			query:        "?min=0&max=1500&sort=price-asc",
			expectedCode: http.StatusOK,
			expectedIDs:  []string{"prod_8", "prod_5", "prod_1", "prod_6"},
		},
		{
			name:         "No match",
			query:        "?q=no-such-product",
			expectedCode: http.StatusOK,
			expectedIDs:  []string{},
		},
		{
			name:         "Invalid sort key",
			query:        "?sort=oldest",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Inverted price range",
			query:        "?min=2000&max=1000",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			// given
			c := s.newClient()

			// when
			body, status := c.do(http.MethodGet, "/products"+tc.query, nil)

			// then
			require.Equal(t, tc.expectedCode, status, string(body))
			if tc.expectedCode == http.StatusOK {
				require.Equal(t, tc.expectedIDs, productIDs(decode[[]catalog.Product](t, body)))
			}
		})
	}
}

func (s *StorefrontE2ESuite) TestProductLookup_E2E() {
	c := s.newClient()

	s.T().Run("Related products", func(t *testing.T) {
		body, status := c.do(http.MethodGet, "/products/prod_4/related", nil)
		require.Equal(t, http.StatusOK, status, string(body))
		related := decode[[]catalog.Product](t, body)
		require.LessOrEqual(t, len(related), catalog.DefaultRelatedLimit)
		require.NotContains(t, productIDs(related), "prod_4")
	})

	s.T().Run("Unknown product", func(t *testing.T) {
		_, status := c.do(http.MethodGet, "/products/prod_999", nil)
		require.Equal(t, http.StatusNotFound, status)
	})

	s.T().Run("Price range bounds", func(t *testing.T) {
		body, status := c.do(http.MethodGet, "/products/price-range", nil)
		require.Equal(t, http.StatusOK, status)
		require.Equal(t, catalog.PriceRange{Min: 0, Max: 3200}, decode[catalog.PriceRange](t, body))
	})
}

func (s *StorefrontE2ESuite) TestCartFlow_E2E() {
	// given
	c := s.newClient()

	// when
	_, status := c.do(http.MethodPost, "/cart/items", map[string]any{"productId": "prod_2", "quantity": 2})
	require.Equal(s.T(), http.StatusOK, status)
	body, status := c.do(http.MethodPost, "/cart/items", map[string]any{"productId": "prod_2", "quantity": 5})

	// then
	require.Equal(s.T(), http.StatusOK, status, string(body))
	snap := decode[cart.Snapshot](s.T(), body)
	require.Len(s.T(), snap.Lines, 1)
	require.Equal(s.T(), 3, snap.Lines[0].Quantity, "quantity is clamped to stock")
	require.Equal(s.T(), 3, snap.ItemCount)
	require.Equal(s.T(), int64(7500), snap.Subtotal)

	stored, ok := s.storedCart(c.sessionID)
	require.True(s.T(), ok)
	require.JSONEq(s.T(), `{"version":1,"items":[{"productId":"prod_2","quantity":3}]}`, stored)

	// when
	body, status = c.do(http.MethodPut, "/cart/items/prod_2", map[string]any{"quantity": 0})

	// then
	require.Equal(s.T(), http.StatusOK, status, string(body))
	require.Empty(s.T(), decode[cart.Snapshot](s.T(), body).Lines)

	// when
	_, status = c.do(http.MethodDelete, "/cart/items/prod_2", nil)

	// then
	require.Equal(s.T(), http.StatusOK, status, "removing an absent product is not an error")
}

func (s *StorefrontE2ESuite) TestRehydrate_E2E() {
	testCases := []struct {
		name          string
		stored        string
		expectedCount int
	}{
		{
			name:          "Current format",
			stored:        `{"version":1,"items":[{"productId":"prod_1","quantity":2}]}`,
			expectedCount: 2,
		},
		{
			name:          "Legacy embedded products",
			stored:        `[{"product":{"id":"prod_5","price":1},"quantity":4}]`,
			expectedCount: 4,
		},
		{
			name:          "Corrupt document",
			stored:        `{not json`,
			expectedCount: 0,
		},
	}

	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			// given
			c := s.newClient()
			c.sessionID = uuid.NewString()
			require.NoError(t, s.redis.Set("cart:"+c.sessionID, tc.stored))

			// when
			body, status := c.do(http.MethodGet, "/cart", nil)

			// then
			require.Equal(t, http.StatusOK, status, string(body))
			require.Equal(t, tc.expectedCount, decode[cart.Snapshot](t, body).ItemCount)
		})
	}
}

func (s *StorefrontE2ESuite) TestCheckout_E2E() {
	// given
	c := s.newClient()
	c.signUp("user")
	_, status := c.do(http.MethodPost, "/cart/items", map[string]any{"productId": "prod_1", "quantity": 2})
	require.Equal(s.T(), http.StatusOK, status)

	// when
	body, status := c.do(http.MethodGet, "/checkout/summary", nil)

	// then
	require.Equal(s.T(), http.StatusOK, status, string(body))
	summary := decode[checkout.Summary](s.T(), body)
	require.Equal(s.T(), int64(2400), summary.Subtotal)
	require.Equal(s.T(), int64(120), summary.Tax)
	require.Equal(s.T(), int64(2520), summary.Total)

	// when
	body, status = c.do(http.MethodPost, "/checkout/orders", map[string]any{
		"paymentMethod": "credit-card",
		"delivery":      map[string]string{"firstName": "Ada", "email": "ada@example.com", "robloxUsername": "ada"},
	})

	// then
	require.Equal(s.T(), http.StatusCreated, status, string(body))
	order := decode[struct {
		Order checkout.Order `json:"order"`
	}](s.T(), body).Order
	require.Equal(s.T(), int64(2520), order.Summary.Total)
	require.Equal(s.T(), "1", order.UserID)

	body, status = c.do(http.MethodGet, "/cart", nil)
	require.Equal(s.T(), http.StatusOK, status)
	require.Zero(s.T(), decode[cart.Snapshot](s.T(), body).ItemCount)

	// when
	_, status = c.do(http.MethodPost, "/checkout/orders", map[string]any{"paymentMethod": "credit-card"})

	// then
	require.Equal(s.T(), http.StatusConflict, status, "an empty cart cannot be ordered")
}

func (s *StorefrontE2ESuite) TestLivePricing_E2E() {
	// given
	shopper := s.newClient()
	_, status := shopper.do(http.MethodPost, "/cart/items", map[string]any{"productId": "prod_3", "quantity": 1})
	require.Equal(s.T(), http.StatusOK, status)

	admin := s.newClient()
	admin.signUp("admin")
	_, err := s.dbPool.Exec(s.ctx, "UPDATE products SET price = 2000 WHERE id = 'prod_3'")
	require.NoError(s.T(), err)
	s.T().Cleanup(func() {
		_, _ = s.dbPool.Exec(s.ctx, "UPDATE products SET price = 1800 WHERE id = 'prod_3'")
		_, _ = s.deps.Services.Catalog.Reload(s.ctx, s.deps.Services.Loader)
	})

	// when
	body, status := admin.do(http.MethodPost, "/admin/catalog/reload", nil)
	require.Equal(s.T(), http.StatusOK, status, string(body))
	body, status = shopper.do(http.MethodGet, "/cart", nil)

	// then
	require.Equal(s.T(), http.StatusOK, status)
	require.Equal(s.T(), int64(2000), decode[cart.Snapshot](s.T(), body).Subtotal)
}

func (s *StorefrontE2ESuite) TestAdminRoutes_E2E() {
	testCases := []struct {
		name         string
		role         string
		expectedCode int
	}{
		{name: "Anonymous", expectedCode: http.StatusUnauthorized},
		{name: "User", role: "user", expectedCode: http.StatusForbidden},
		{name: "Admin", role: "admin", expectedCode: http.StatusOK},
	}

	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			// given
			c := s.newClient()
			if tc.role != "" {
				c.signUp(tc.role)
			}

			// when
			_, status := c.do(http.MethodGet, "/admin/dashboard", nil)

			// then
			require.Equal(t, tc.expectedCode, status)
		})
	}
}
