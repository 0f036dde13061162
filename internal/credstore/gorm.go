package credstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/franciscosanchezn/gin-oauth-samples/internal/database"
	"github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps credentials in the stored_credentials table
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the table on an existing connection
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.StoredCredential{}); err != nil {
		return nil, fmt.Errorf("gorm store: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// OpenGormStore connects to sqlite (a credentials.sqlite file under opts.Path) or postgres (opts.DatabaseURL)
func OpenGormStore(driver string, opts Options) (*GormStore, error) {
	cfg := database.DatabaseConfig{Driver: driver, URL: opts.DatabaseURL, MaxRetries: 1}
	if driver == KindSQLite {
		cfg.Path = filepath.Join(opts.Path, "credentials.sqlite")
	}
	db, err := database.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

func (s *GormStore) Load(ctx context.Context, userID string) (*oauth2.Token, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	var row models.StoredCredential
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gorm store: load: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  row.AccessToken,
		RefreshToken: row.RefreshToken,
		TokenType:    row.TokenType,
	}
	if row.Expiry != nil {
		token.Expiry = *row.Expiry
	}
	return token, nil
}

func (s *GormStore) Save(ctx context.Context, userID string, token *oauth2.Token) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	if token == nil {
		return errors.New("gorm store: nil token")
	}

	row := &models.StoredCredential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		row.Expiry = &expiry
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_type", "expiry", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("gorm store: save: %w", err)
	}
	log.WithField("user_id", userID).Debug("Credential saved to database")
	return nil
}

func (s *GormStore) Delete(ctx context.Context, userID string) error {
	if err := validateUserID(userID); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.StoredCredential{})
	if result.Error != nil {
		return fmt.Errorf("gorm store: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
