package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cafe/internal/models"
	"cafe/internal/repositories"
	"cafe/pkg/config"
)

// Store bundles the repositories of the configured backend.
type Store struct {
	Categorias repositories.CategoryRepository
	Productos  repositories.ProductRepository
	Usuarios   repositories.UserRepository

	close func(context.Context) error
}

// Close releases the underlying connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.Driver and prepares its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := OpenGORM(cfg)
		if err != nil {
			return nil, err
		}
		return NewGORMStore(db), nil
	case config.DriverMongo:
		return OpenMongo(ctx, cfg)
	default:
		return nil, errors.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// OpenGORM opens a SQLite or PostgreSQL database and migrates the models.
func OpenGORM(cfg config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		dialector = sqlite.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		// References are checked by the services, as with the document store.
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Driver)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Usuario{}, &models.Categoria{}, &models.Producto{}); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}
	return nil
}

// NewGORMStore wires the GORM repositories around db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Categorias: repositories.NewGORMCategoryRepository(db),
		Productos:  repositories.NewGORMProductRepository(db),
		Usuarios:   repositories.NewGORMUserRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// OpenMongo connects to MongoDB, verifies the connection and ensures indexes.
func OpenMongo(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	db := client.Database(cfg.MongoDatabase)
	if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{
		Categorias: repositories.NewMongoCategoryRepository(db),
		Productos:  repositories.NewMongoProductRepository(db),
		Usuarios:   repositories.NewMongoUserRepository(db),
		close:      client.Disconnect,
	}, nil
}
