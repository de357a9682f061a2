package services

import (
	"context"

	"github.com/HaitPets/Petconnect/internal/models/db_models"
	"github.com/HaitPets/Petconnect/internal/models/request_models"
	"github.com/HaitPets/Petconnect/internal/models/response_models"
	"github.com/HaitPets/Petconnect/internal/repositories"
	"github.com/HaitPets/Petconnect/pkg/utils"
)

type AccountService interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error)
}

type accountService struct {
	accounts repositories.AccountRepository
}

func NewAccountService(accounts repositories.AccountRepository) AccountService {
	return &accountService{
		accounts: accounts,
	}
}

func (a *accountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	account, err := a.accounts.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}

	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := utils.CreateToken(account.ID, string(account.Role))
	if err != nil {
		return nil, err
	}

	return &response_models.AccountLoginResponse{
		Token: token,
		Tier:  string(account.SubscriptionTier),
	}, nil
}

func (a *accountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error) {
	existing, err := a.accounts.FindByEmail(ctx, request.Email)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if existing != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashed, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	account := &db_models.Account{
		Name:             request.DisplayName,
		Email:            request.Email,
		PasswordHash:     hashed,
		Role:             db_models.AccountRole(request.Role),
		SubscriptionTier: db_models.TierFree,
	}

	if err := a.accounts.Insert(ctx, account); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &response_models.AccountResponse{
		ID:    account.ID.String(),
		Name:  account.Name,
		Email: account.Email,
		Role:  string(account.Role),
		Tier:  string(account.SubscriptionTier),
	}, nil
}
