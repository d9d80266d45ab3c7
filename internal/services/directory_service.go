package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "ledger/internal/errors"
	"ledger/internal/models"
)

// directoryService handles people and wallets.
type directoryService struct {
	db *gorm.DB
}

// NewDirectoryService creates a new DirectoryServicer.
func NewDirectoryService(db *gorm.DB) DirectoryServicer {
	return &directoryService{db: db}
}

// CreatePerson adds a person with a unique name
func (s *directoryService) CreatePerson(ctx context.Context, name string) (*models.Person, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	db := s.db.WithContext(ctx)
	if err := ensureUniqueName(db, &models.Person{}, name); err != nil {
		return nil, err
	}

	person := &models.Person{Name: name}
	if err := db.Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return person, nil
}

// ListPeople returns every person ordered by name
func (s *directoryService) ListPeople(ctx context.Context) ([]models.Person, error) {
	people := []models.Person{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&people).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return people, nil
}

// GetPersonByID retrieves a person by ID
func (s *directoryService) GetPersonByID(ctx context.Context, id uint) (*models.Person, error) {
	return findPerson(s.db.WithContext(ctx), id)
}

// GetPersonByName retrieves a person by exact name
func (s *directoryService) GetPersonByName(ctx context.Context, name string) (*models.Person, error) {
	var person models.Person
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&person).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrPersonNotFound, "Person '"+name+"' not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

// CreateWallet adds a wallet with a unique name
func (s *directoryService) CreateWallet(ctx context.Context, name string) (*models.Wallet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	db := s.db.WithContext(ctx)
	if err := ensureUniqueName(db, &models.Wallet{}, name); err != nil {
		return nil, err
	}

	wallet := &models.Wallet{Name: name}
	if err := db.Create(wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallet, nil
}

// ListWallets returns every wallet ordered by name
func (s *directoryService) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	wallets := []models.Wallet{}
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallets, nil
}

// GetWalletByID retrieves a wallet by ID
func (s *directoryService) GetWalletByID(ctx context.Context, id uint) (*models.Wallet, error) {
	return findWallet(s.db.WithContext(ctx), id)
}

// GetWalletByName retrieves a wallet by exact name
func (s *directoryService) GetWalletByName(ctx context.Context, name string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrWalletNotFound, "Wallet '"+name+"' not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

func ensureUniqueName(db *gorm.DB, model interface{}, name string) error {
	var count int64
	if err := db.Model(model).Where("name = ?", name).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateName
	}
	return nil
}

// findPerson and findWallet take an explicit handle so they can run inside
// an open transaction.
func findPerson(db *gorm.DB, id uint) (*models.Person, error) {
	var person models.Person
	if err := db.First(&person, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPersonNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &person, nil
}

func findWallet(db *gorm.DB, id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}
