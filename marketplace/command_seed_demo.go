package marketplace

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is one pre-provisioned demonstration login. These exist
// for environment bootstrapping only and are not part of the runtime
// contract.
type DemoAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Username  string
	Role      string
}

// DemoAccounts returns the three fixed demo logins, one per tier.
func DemoAccounts() []DemoAccount {
	return []DemoAccount{
		{
			Email:     "admin@9jaagents.com",
			Password:  "Admin123!",
			FirstName: "Admin",
			LastName:  "User",
			Username:  "admin",
			Role:      "admin",
		},
		{
			Email:     "creator@9jaagents.com",
			Password:  "Creator123!",
			FirstName: "Creator",
			LastName:  "User",
			Username:  "creator",
			Role:      "creator",
		},
		{
			Email:     "user@9jaagents.com",
			Password:  "User123!",
			FirstName: "Test",
			LastName:  "User",
			Username:  "testuser",
			Role:      "user",
		},
	}
}

// SeedDemoAccountsMessage requests demo account provisioning.
type SeedDemoAccountsMessage struct {
	Accounts []DemoAccount `json:"accounts"`
}

func (m SeedDemoAccountsMessage) Type() string { return "marketplace.seed_demo_accounts" }

// SeedDemoAccountsHandler provisions the demo profiles. IDs derive
// deterministically from the email so reseeding an environment is
// idempotent; existing profiles are left untouched.
type SeedDemoAccountsHandler struct {
	repo RepositoryManager
}

// NewSeedDemoAccountsHandler builds the handler
func NewSeedDemoAccountsHandler(repo RepositoryManager) *SeedDemoAccountsHandler {
	return &SeedDemoAccountsHandler{repo: repo}
}

func (h *SeedDemoAccountsHandler) Execute(ctx context.Context, event SeedDemoAccountsMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during demo account seeding",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SeedDemoAccountsHandler) execute(ctx context.Context, event SeedDemoAccountsMessage) error {
	accounts := event.Accounts
	if len(accounts) == 0 {
		accounts = DemoAccounts()
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, account := range accounts {
			hash, err := hashPassword(account.Password)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash demo password")
			}

			profile := &Profile{
				Email:        account.Email,
				FirstName:    account.FirstName,
				LastName:     account.LastName,
				Username:     account.Username,
				Role:         account.Role,
				PasswordHash: hash,
			}

			if id, err := hashid.NewUUID(account.Email); err == nil {
				profile.ID = id
			}

			if _, err := h.repo.Profiles().GetOrCreateTx(ctx, tx, profile); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create demo profile")
			}
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "demo account seeding transaction failed")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", goerrors.New("password must not be empty", goerrors.CategoryValidation)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}
