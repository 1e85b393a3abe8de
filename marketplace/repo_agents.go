package marketplace

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Agents is the agent listing repository
type Agents interface {
	repository.Repository[*Agent]

	Create(ctx context.Context, record *Agent, criteria ...repository.InsertCriteria) (*Agent, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Agent, criteria ...repository.InsertCriteria) (*Agent, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Agent, error)
	ListApproved(ctx context.Context) ([]*Agent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status AgentStatus) (*Agent, error)
}

type agents struct {
	repository.Repository[*Agent]
	db *bun.DB
}

var _ Agents = (*agents)(nil)

// NewAgentsRepository builds the agents repository
func NewAgentsRepository(db *bun.DB) Agents {
	repo := repository.NewRepository[*Agent](db, repository.ModelHandlers[*Agent]{
		NewRecord: func() *Agent { return &Agent{} },
		GetID: func(a *Agent) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Agent, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	return &agents{
		Repository: repo,
		db:         db,
	}
}

func (r *agents) Create(ctx context.Context, record *Agent, criteria ...repository.InsertCriteria) (*Agent, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *agents) CreateTx(ctx context.Context, tx bun.IDB, record *Agent, criteria ...repository.InsertCriteria) (*Agent, error) {
	prepareAgentDefaults(record)
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *agents) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*Agent, error) {
	records := []*Agent{}
	err := r.db.NewSelect().
		Model(&records).
		Where("?TableAlias.creator_id = ?", creatorID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *agents) ListApproved(ctx context.Context) ([]*Agent, error) {
	records := []*Agent{}
	err := r.db.NewSelect().
		Model(&records).
		Relation("Category").
		Where("?TableAlias.status = ?", AgentStatusApproved).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *agents) UpdateStatus(ctx context.Context, id uuid.UUID, status AgentStatus) (*Agent, error) {
	record := &Agent{
		ID:     id,
		Status: status,
	}
	return r.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func prepareAgentDefaults(record *Agent) {
	if record == nil {
		return
	}

	if record.Status == "" {
		record.Status = AgentStatusDraft
	}

	if record.Currency == "" {
		record.Currency = "NGN"
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
