package marketplace

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Profiles() Profiles
	Agents() Agents
	Categories() repository.Repository[*Category]
}

// NewCategoriesRepository builds the categories repository
func NewCategoriesRepository(db *bun.DB) repository.Repository[*Category] {
	handlers := repository.ModelHandlers[*Category]{
		NewRecord: func() *Category {
			return &Category{}
		},
		GetID: func(record *Category) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Category, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db         *bun.DB
	profiles   Profiles
	agents     Agents
	categories repository.Repository[*Category]
}

// NewRepositoryManager wires the marketplace repositories on one DB
func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:         db,
		profiles:   NewProfilesRepository(db),
		agents:     NewAgentsRepository(db),
		categories: NewCategoriesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.profiles == nil {
		return errors.New("repository profiles should be initialized")
	}

	if m.agents == nil {
		return errors.New("repository agents should be initialized")
	}

	if m.categories == nil {
		return errors.New("repository categories should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Profiles() Profiles {
	return m.profiles
}

func (m mngr) Agents() Agents {
	return m.agents
}

func (m mngr) Categories() repository.Repository[*Category] {
	return m.categories
}
