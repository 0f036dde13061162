package services

import (
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Installed clients are registered on the loopback domain and may redirect to any port on it
const (
	InstalledClientDomain     = "http://localhost"
	InstalledClientGrantTypes = "authorization_code refresh_token"
	InstalledClientScopes     = "openid profile email https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/userinfo.profile"
)

var ErrClientNotFound = errors.New("client_not_found")

type ClientService interface {
	CreateClient(client *models.OAuthClient) error
	// RegisterInstalledClient creates a loopback client owned by userID and returns the plain secret once
	RegisterInstalledClient(name string, userID uint) (*models.OAuthClient, string, error)
	GetClientsByUserID(userID uint) ([]models.OAuthClient, error)
	GetClientByID(id string) (*models.OAuthClient, error)
	DeleteClient(clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(client *models.OAuthClient) error {
	return s.db.Create(client).Error
}

func (s *clientService) RegisterInstalledClient(name string, userID uint) (*models.OAuthClient, string, error) {
	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:         uuid.New().String() + ".apps.localhost",
		Secret:     string(hashedSecret),
		Name:       name,
		Domain:     InstalledClientDomain,
		UserID:     userID,
		Scopes:     InstalledClientScopes,
		GrantTypes: InstalledClientGrantTypes,
	}
	if err := s.CreateClient(client); err != nil {
		return nil, "", fmt.Errorf("create client: %w", err)
	}
	return client, secret, nil
}

func (s *clientService) GetClientsByUserID(userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.Where("user_id = ?", userID).Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes the client together with every code and token issued to it
func (s *clientService) DeleteClient(clientID string, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrClientNotFound
		}
		if err := tx.Where("client_id = ?", clientID).Delete(&models.OAuthCode{}).Error; err != nil {
			return err
		}
		return tx.Where("client_id = ?", clientID).Delete(&models.OAuthToken{}).Error
	})
}
