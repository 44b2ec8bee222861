// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"os"
	"testing"

	"github.com/Luismorlan/rambagiza/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8

	DriverPostgres = "postgres"
	DriverSqlite   = "sqlite"
)

// GormTransaction is the callback function used during db.Transaction in Gorm.
type GormTransaction func(tx *gorm.DB) error

func randomTestDBName() string {
	return TestDBPrefix + RandomAlphabetString(TestDBNameCharLength)
}

// GetDBConnection get a connection to the database specified by env. Postgres
// is the default, DB_DRIVER=sqlite switches to a local file for development.
func GetDBConnection() (*gorm.DB, error) {
	if os.Getenv("DB_DRIVER") == DriverSqlite {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "rambagiza.db"
		}
		return getDB(sqlite.Open(path))
	}
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetCustomizedConnection connect to any postgres db
func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"), dbName, os.Getenv("DB_PORT"))
	return getDB(postgres.Open(dsn))
}

// CreateTempDB creates an isolated, migrated, in-memory DB for testing. Note
// that this function should only be called in a testing environment with
// test state manager testing.T. The DB is dropped once the last connection is
// closed, which happens in the test cleanup.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	dbName := randomTestDBName()
	// A named shared-cache memory DB is visible to every connection in the
	// pool, a plain ":memory:" DB is per connection.
	db, err := getDB(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)))
	if err != nil {
		t.Fatalf("fail to create temp DB with name: %s, %s", dbName, err)
	}
	// sqlite allows a single writer, queue callers on one connection instead of
	// surfacing "database table is locked" under concurrent tests.
	conn, err := db.DB()
	if err != nil {
		t.Fatalf("fail to get sql.DB of temp DB: %s, %s", dbName, err)
	}
	conn.SetMaxOpenConns(1)
	DatabaseSetupAndMigration(db)
	t.Cleanup(func() {
		// Proactively clean up the DB connections instead of deferring to GC,
		// this is also what drops the memory DB.
		conn.Close()
	})

	return db, dbName
}

func getDB(dialector gorm.Dialector) (db *gorm.DB, err error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Aggregates reference each other loosely, deletes are explicit and a
		// removed user leaves their threads and posts behind.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
}

func DatabaseSetupAndMigration(db *gorm.DB) {
	err := db.AutoMigrate(
		&model.User{},
		&model.Picture{},
		&model.Friend{},
		&model.Conversation{},
		&model.Message{},
		&model.Post{},
		&model.Like{},
		&model.Comment{},
		&model.Smile{},
		&model.ContactMessage{},
		&model.TopUp{},
	)
	if err != nil {
		panic("failed to migrate database: " + err.Error())
	}
}
