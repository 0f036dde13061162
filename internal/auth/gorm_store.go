package auth

import (
	"context"
	"errors"

	internalmodels "github.com/franciscosanchezn/gin-oauth-samples/internal/models"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/models"
	"gorm.io/gorm"
)

type GormClientStore struct {
	db *gorm.DB
}

func NewGormClientStore(db *gorm.DB) *GormClientStore {
	return &GormClientStore{db: db}
}

func (s *GormClientStore) GetByID(ctx context.Context, id string) (oauth2.ClientInfo, error) {
	var client internalmodels.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, oauth2errors.ErrInvalidClient
		}
		return nil, err
	}

	// OAuthClient implements ClientPasswordVerifier, the stored secret is a bcrypt hash
	return &client, nil
}

// GormTokenStore keeps authorization codes in oauth_codes and access/refresh tokens in oauth_tokens.
// Lookups of unknown values return (nil, nil) so the manager reports them as invalid grants.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

// Create is called for both issued codes and issued tokens
func (s *GormTokenStore) Create(ctx context.Context, info oauth2.TokenInfo) error {
	if code := info.GetCode(); code != "" {
		return s.db.WithContext(ctx).Create(&internalmodels.OAuthCode{
			Code:                code,
			ClientID:            info.GetClientID(),
			UserID:              info.GetUserID(),
			Scopes:              info.GetScope(),
			RedirectURI:         info.GetRedirectURI(),
			CodeChallenge:       info.GetCodeChallenge(),
			CodeChallengeMethod: info.GetCodeChallengeMethod().String(),
			IssuedAt:            info.GetCodeCreateAt(),
			ExpiresAt:           info.GetCodeCreateAt().Add(info.GetCodeExpiresIn()),
		}).Error
	}

	token := &internalmodels.OAuthToken{
		ClientID:        info.GetClientID(),
		UserID:          info.GetUserID(),
		AccessToken:     info.GetAccess(),
		RefreshToken:    info.GetRefresh(),
		Scopes:          info.GetScope(),
		RedirectURI:     info.GetRedirectURI(),
		AccessIssuedAt:  info.GetAccessCreateAt(),
		AccessExpiresAt: info.GetAccessCreateAt().Add(info.GetAccessExpiresIn()),
	}
	if token.RefreshToken != "" {
		token.RefreshIssuedAt = info.GetRefreshCreateAt()
		if exp := info.GetRefreshExpiresIn(); exp > 0 {
			token.RefreshExpiresAt = info.GetRefreshCreateAt().Add(exp)
		}
	}
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) RemoveByCode(ctx context.Context, code string) error {
	return s.db.WithContext(ctx).Where("code = ?", code).Delete(&internalmodels.OAuthCode{}).Error
}

func (s *GormTokenStore) RemoveByAccess(ctx context.Context, access string) error {
	return s.db.WithContext(ctx).Where("access_token = ?", access).Delete(&internalmodels.OAuthToken{}).Error
}

func (s *GormTokenStore) RemoveByRefresh(ctx context.Context, refresh string) error {
	if refresh == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Delete(&internalmodels.OAuthToken{}).Error
}

// RemoveGrant deletes every token row matching token as access or refresh token
func (s *GormTokenStore) RemoveGrant(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	result := s.db.WithContext(ctx).
		Where("access_token = ? OR refresh_token = ?", token, token).
		Delete(&internalmodels.OAuthToken{})
	return result.RowsAffected > 0, result.Error
}

func (s *GormTokenStore) GetByCode(ctx context.Context, code string) (oauth2.TokenInfo, error) {
	var oauthCode internalmodels.OAuthCode
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&oauthCode).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	// the manager rejects expired codes from CodeCreateAt and CodeExpiresIn
	return &models.Token{
		ClientID:            oauthCode.ClientID,
		UserID:              oauthCode.UserID,
		RedirectURI:         oauthCode.RedirectURI,
		Scope:               oauthCode.Scopes,
		Code:                oauthCode.Code,
		CodeCreateAt:        oauthCode.IssuedAt,
		CodeExpiresIn:       oauthCode.ExpiresAt.Sub(oauthCode.IssuedAt),
		CodeChallenge:       oauthCode.CodeChallenge,
		CodeChallengeMethod: oauthCode.CodeChallengeMethod,
	}, nil
}

func (s *GormTokenStore) GetByAccess(ctx context.Context, access string) (oauth2.TokenInfo, error) {
	var token internalmodels.OAuthToken
	if err := s.db.WithContext(ctx).Where("access_token = ?", access).First(&token).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return tokenInfo(&token), nil
}

func (s *GormTokenStore) GetByRefresh(ctx context.Context, refresh string) (oauth2.TokenInfo, error) {
	if refresh == "" {
		return nil, nil
	}
	var token internalmodels.OAuthToken
	if err := s.db.WithContext(ctx).Where("refresh_token = ?", refresh).Order("id desc").First(&token).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return tokenInfo(&token), nil
}

func tokenInfo(token *internalmodels.OAuthToken) oauth2.TokenInfo {
	info := &models.Token{
		ClientID:        token.ClientID,
		UserID:          token.UserID,
		RedirectURI:     token.RedirectURI,
		Scope:           token.Scopes,
		Access:          token.AccessToken,
		AccessCreateAt:  token.AccessIssuedAt,
		AccessExpiresIn: token.AccessExpiresAt.Sub(token.AccessIssuedAt),
		Refresh:         token.RefreshToken,
	}
	if token.RefreshToken != "" {
		info.RefreshCreateAt = token.RefreshIssuedAt
		if !token.RefreshExpiresAt.IsZero() {
			info.RefreshExpiresIn = token.RefreshExpiresAt.Sub(token.RefreshIssuedAt)
		}
	}
	return info
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

var (
	_ oauth2.TokenStore  = (*GormTokenStore)(nil)
	_ oauth2.ClientStore = (*GormClientStore)(nil)
)
