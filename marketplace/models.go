package marketplace

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AgentStatus tracks an agent listing through review
type AgentStatus = string

const (
	// AgentStatusDraft is an unsubmitted listing
	AgentStatusDraft AgentStatus = "draft"
	// AgentStatusPending awaits admin review
	AgentStatusPending AgentStatus = "pending"
	// AgentStatusApproved is live in the marketplace
	AgentStatusApproved AgentStatus = "approved"
	// AgentStatusRejected failed review
	AgentStatusRejected AgentStatus = "rejected"
)

// Profile is the local marketplace record mirroring a provider
// principal. The authoritative role lives on the provider; the copy
// here exists for joins and listings.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:prf"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	FirstName     string     `bun:"first_name" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Role          string     `bun:"role,notnull" json:"role,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	AvatarURL     string     `bun:"avatar_url" json:"avatar_url,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Category groups agents in the marketplace
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	Slug          string     `bun:"slug,notnull,unique" json:"slug,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Icon          string     `bun:"icon" json:"icon,omitempty"`
	Color         string     `bun:"color" json:"color,omitempty"`
	SortOrder     int        `bun:"sort_order" json:"sort_order,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Agent is a listed automation agent
type Agent struct {
	bun.BaseModel `bun:"table:agents,alias:agt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Tagline       string     `bun:"tagline" json:"tagline,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CategoryID    uuid.UUID  `bun:"category_id,notnull,type:uuid" json:"category_id,omitempty"`
	Category      *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatorID     uuid.UUID  `bun:"creator_id,notnull,type:uuid" json:"creator_id,omitempty"`
	Creator       *Profile   `bun:"rel:belongs-to,join:creator_id=id" json:"creator,omitempty"`
	PricingModel  string     `bun:"pricing_model,notnull" json:"pricing_model,omitempty"`
	Price         float64    `bun:"price" json:"price,omitempty"`
	Currency      string     `bun:"currency,notnull,default:'NGN'" json:"currency,omitempty"`
	Features      []string   `bun:"features,type:jsonb" json:"features,omitempty"`
	Tags          []string   `bun:"tags,type:jsonb" json:"tags,omitempty"`
	APIAccess     bool       `bun:"api_access" json:"api_access,omitempty"`
	Status        AgentStatus `bun:"status,notnull,default:'draft'" json:"status,omitempty"`
	Rating        float64    `bun:"rating" json:"rating,omitempty"`
	TotalSales    int        `bun:"total_sales" json:"total_sales,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Submitted reports whether the listing has left draft state.
func (a *Agent) Submitted() bool {
	return a != nil && a.Status != AgentStatusDraft
}
