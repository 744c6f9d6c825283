package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/storefront-backend/internal/cart"
	"github.com/wichananm65/storefront-backend/internal/catalog"
	"github.com/wichananm65/storefront-backend/internal/checkout"
	"github.com/wichananm65/storefront-backend/internal/config"
	"github.com/wichananm65/storefront-backend/internal/events"
	"github.com/wichananm65/storefront-backend/internal/order"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	ensureSchema(db)

	catalogRepo := catalog.NewPostgresRepository(db)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartService)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo)
	orderHandler := order.NewHandler(orderService)

	var locker checkout.Locker = checkout.NewMutexLocker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		locker = checkout.NewRedisLocker(rdb, 30*time.Second)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrderTopic)
		defer kp.Close()
		publisher = kp
	}

	validator := checkout.NewValidator(catalogRepo)
	orchestrator := checkout.NewOrchestrator(cartService, validator, orderService, locker, publisher, cfg.Currency)
	checkoutHandler := checkout.NewHandler(orchestrator)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)

	log.Printf("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

// ensureSchema creates the four checkout relations plus the catalog lookup
// tables. The catalog tables are owned by the admin tooling; they are only
// created here so a fresh database can serve reads.
func ensureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            category_id SERIAL PRIMARY KEY,
            category_name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS brands (
            brand_id SERIAL PRIMARY KEY,
            brand_name TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS products (
            product_id SERIAL PRIMARY KEY,
            product_name TEXT NOT NULL,
            category_id INT REFERENCES categories (category_id),
            brand_id INT REFERENCES brands (brand_id),
            product_price NUMERIC NOT NULL DEFAULT 0,
            available BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMP,
            updated_at TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            customer_id INT NOT NULL,
            product_id INT NOT NULL,
            quantity INT NOT NULL CHECK (quantity > 0),
            PRIMARY KEY (customer_id, product_id)
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            order_id SERIAL PRIMARY KEY,
            customer_id INT NOT NULL,
            invoice_no TEXT NOT NULL UNIQUE,
            order_date TEXT NOT NULL,
            status TEXT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_items (
            order_id INT NOT NULL REFERENCES orders (order_id),
            product_id INT NOT NULL,
            quantity INT NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            payment_id SERIAL PRIMARY KEY,
            order_id INT NOT NULL REFERENCES orders (order_id),
            customer_id INT NOT NULL,
            amount NUMERIC NOT NULL,
            currency TEXT NOT NULL,
            payment_date TEXT NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
