package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Errors returned by every repository implementation.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicate           = errors.New("duplicate record")
	ErrForeignKeyViolation = errors.New("referenced record does not exist")
	ErrQuantityLimit       = errors.New("cart line quantity out of range")
)

// Store owns the database handle and hands out repositories bound to it.
// Open it once at startup and Close it at shutdown.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
// driver is "sqlite" or "postgres".
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		// One connection keeps pragmas and in-memory databases stable and
		// lets SQLite serialize writers instead of failing with SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	log.Printf("Connected to %s database", driver)
	return store, nil
}

// sqliteDSN makes sure foreign key enforcement is on for every connection,
// otherwise ON DELETE CASCADE is silently ignored.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// Migrate creates or updates the products, users and carts tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.User{}, &models.Product{}, &models.CartLine{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Products returns the product repository.
func (s *Store) Products() ProductRepository {
	return NewGORMProductRepository(s.db)
}

// Users returns the user repository.
func (s *Store) Users() UserRepository {
	return NewGORMUserRepository(s.db)
}

// Carts returns the cart repository.
func (s *Store) Carts() CartRepository {
	return NewGORMCartRepository(s.db)
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// translate maps GORM errors onto the repository error set.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrForeignKeyViolation, err)
	}
	return err
}
