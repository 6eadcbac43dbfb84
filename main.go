package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"polypath/api"
	"polypath/internal/config"
	"polypath/internal/container"
	"polypath/internal/errors"
	"polypath/internal/migration"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig := config.Load()

	var db *sqlx.DB
	if appConfig.Database.URL == "" {
		log.Println("[Startup] DATABASE_URL not set; running without persistence")
	} else {
		var err error
		db, err = initDatabase(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database: ", err)
		}
		defer db.Close()
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	if err := appContainer.Server.Start(api.Config{Port: appConfig.Server.Port}); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
