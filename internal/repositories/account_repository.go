package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
)

type AccountRepository interface {
	Insert(ctx context.Context, account *db_models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*db_models.Account, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Account, error)
	// ClaimStripeCustomerID stores the billing customer id if none is set yet and
	// returns the id that ended up on the row. Concurrent first-time provisioning
	// resolves to a single winner through the conditional update.
	ClaimStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) (string, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{
		db: db,
	}
}

func (a *accountRepository) Insert(ctx context.Context, account *db_models.Account) error {
	return a.db.WithContext(ctx).Create(account).Error
}

func (a *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "id = ?", id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) FindByEmail(ctx context.Context, email string) (*db_models.Account, error) {
	var account db_models.Account
	err := a.db.WithContext(ctx).First(&account, "email = ?", email).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

func (a *accountRepository) ClaimStripeCustomerID(ctx context.Context, id uuid.UUID, customerID string) (string, error) {
	res := a.db.WithContext(ctx).Model(&db_models.Account{}).
		Where("id = ? AND stripe_customer_id IS NULL", id).
		Update("stripe_customer_id", customerID)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 1 {
		return customerID, nil
	}

	// Another request won the race; report the id already on the row.
	account, err := a.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if account == nil || account.StripeCustomerID == nil {
		return "", gorm.ErrRecordNotFound
	}
	return *account.StripeCustomerID, nil
}
