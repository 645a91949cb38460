package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/vigilhq/vigil/config"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = createModerationRecordTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createModerationRecordTable creates the PostgreSQL table backing the
// append-only moderation audit trail.
func createModerationRecordTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS moderation_records (
			id SERIAL PRIMARY KEY,
			record_id TEXT NOT NULL UNIQUE,
			message_id TEXT NOT NULL,
			message_text TEXT NOT NULL,
			author_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			classification TEXT NOT NULL,
			risk_score INTEGER NOT NULL,
			issues JSONB DEFAULT '[]'::jsonb,
			ai_classification TEXT,
			ai_reason TEXT,
			action TEXT NOT NULL DEFAULT 'none',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_moderation_records_message_id ON moderation_records (message_id);
		CREATE INDEX IF NOT EXISTS idx_moderation_records_author_id ON moderation_records (author_id);
		CREATE INDEX IF NOT EXISTS idx_moderation_records_classification ON moderation_records (classification);
		CREATE INDEX IF NOT EXISTS idx_moderation_records_created_at ON moderation_records (created_at);
	`)
	return err
}
