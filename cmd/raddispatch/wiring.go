package main

import (
	"fmt"

	"github.com/raddispatch/distengine/internal/config"
	"github.com/raddispatch/distengine/internal/repository"
	"github.com/raddispatch/distengine/internal/repository/postgres"
	"github.com/raddispatch/distengine/internal/repository/sqlite"
	"github.com/raddispatch/distengine/internal/service"
)

var storeFlag string

// openDatabase opens the backing store named by --store ("postgres" or
// "sqlite") using the resolved Config's connection settings.
func openDatabase(cfg config.Config) (repository.Database, error) {
	switch storeFlag {
	case "", "postgres":
		db, err := postgres.New(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return db, nil
	case "sqlite":
		db, err := sqlite.New(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown --store %q: want \"postgres\" or \"sqlite\"", storeFlag)
	}
}

func buildService(cfg config.Config, db repository.Database) *service.DistributionService {
	return service.NewDistributionService(
		service.SystemClock{},
		service.RepositoryStudyPort{Repo: db.StudyRepository()},
		service.RepositoryDoctorPort{Repo: db.DoctorRepository()},
		service.RepositoryAssignmentWriter{Repo: db.AssignmentRepository()},
		service.RepositoryRunWriter{Repo: db.RunRepository()},
		cfg.Scheduling,
	)
}
