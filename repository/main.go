package repository

import (
	"github.com/tnqbao/gau-drive-service/infra"
)

type Repository struct {
	EntryRepo *EntryRepository
}

func InitRepository(infra *infra.Infra) *Repository {
	if infra.Postgres == nil || infra.Postgres.DB == nil {
		panic("database connection is nil")
	}
	return &Repository{
		EntryRepo: NewEntryRepository(infra.Postgres.DB),
	}
}
