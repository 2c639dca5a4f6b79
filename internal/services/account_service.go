package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stepwise/internal/models/db_models"
	"stepwise/internal/models/request_models"
	"stepwise/internal/models/response_models"
	"stepwise/internal/repositories"
	"stepwise/pkg/utils"
)

type AccountServiceInterface interface {
	Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error)
	CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error)
	Me(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error)
}

type AccountService struct {
	accountRepo repositories.AccountRepository
	tokens      *utils.TokenIssuer
	log         *zap.Logger
}

func NewAccountService(accountRepo repositories.AccountRepository, tokens *utils.TokenIssuer, log *zap.Logger) AccountServiceInterface {
	return &AccountService{
		accountRepo: accountRepo,
		tokens:      tokens,
		log:         log.Named("account"),
	}
}

func (a *AccountService) Login(ctx context.Context, request request_models.LoginRequest) (*response_models.AccountLoginResponse, error) {
	account, err := a.accountRepo.FindByEmail(ctx, strings.TrimSpace(request.Email))
	if err != nil {
		return nil, dbErr("find account", err)
	}
	// unknown email and wrong password are indistinguishable to the caller
	if account == nil {
		return nil, utils.ErrInvalidCredentials
	}
	if err := utils.ComparePasswords(account.PasswordHash, request.Password); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := a.tokens.CreateToken(account.ID)
	if err != nil {
		return nil, err
	}
	a.log.Info("login", zap.String("account_id", account.ID.String()))

	return &response_models.AccountLoginResponse{
		Token:     token,
		ExpiresIn: int64(a.tokens.SessionTTL().Seconds()),
	}, nil
}

func (a *AccountService) CreateAccount(ctx context.Context, request request_models.SignUpRequest) (*response_models.AccountResponse, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))
	existingAccount, err := a.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, dbErr("find account", err)
	}
	if existingAccount != nil {
		return nil, utils.ErrEmailAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return nil, err
	}

	newAccount := &db_models.Account{
		Name:         strings.TrimSpace(request.DisplayName),
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := a.accountRepo.Insert(ctx, newAccount); err != nil {
		if isDuplicate(err) {
			return nil, utils.ErrEmailAlreadyExists
		}
		return nil, dbErr("insert account", err)
	}

	resp := response_models.NewAccountResponse(newAccount)
	return &resp, nil
}

func (a *AccountService) Me(ctx context.Context, accountID uuid.UUID) (*response_models.AccountResponse, error) {
	account, err := a.accountRepo.FindById(ctx, accountID.String())
	if err != nil {
		return nil, dbErr("find account", err)
	}
	if account == nil {
		return nil, utils.ErrAccountNotFound
	}
	resp := response_models.NewAccountResponse(account)
	return &resp, nil
}
