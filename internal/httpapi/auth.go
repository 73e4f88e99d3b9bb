package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
	"catatkas/backend/internal/logger"
	"catatkas/backend/internal/store"
	"catatkas/backend/internal/xid"
)

// AuthManager registers accounts, checks passwords and issues bearer tokens.
// A token's subject is the user id, which is also the tenant key for data.
type AuthManager struct {
	secret   []byte
	tokenTTL time.Duration
	users    store.UserStore
	now      func() time.Time
}

type catatkasClaims struct {
	jwtlib.RegisteredClaims
	Username string `json:"username"`
}

var errInvalidCredentials = apperr.Unauthorized("invalid credentials")

func NewAuthManager(secret string, tokenTTL time.Duration, users store.UserStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		users:    users,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if len(username) < 4 {
		return domain.LoginResponse{}, apperr.Validation("username must be at least 4 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return domain.LoginResponse{}, apperr.Validation("username must not contain spaces")
	}
	if err := validatePasswordStrength(req.Password); err != nil {
		return domain.LoginResponse{}, err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return domain.LoginResponse{}, errors.New("failed to hash password")
	}

	account := domain.UserAccount{
		ID:        xid.New("usr"),
		Username:  username,
		Password:  passwordHash,
		Active:    true,
		CreatedAt: a.now(),
	}
	if err := a.users.CreateUser(ctx, account); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.LoginResponse{}, apperr.Conflict("username %q is already taken", username)
		}
		return domain.LoginResponse{}, apperr.Persistence("create account", err)
	}

	logger.Info(ctx, "account registered", "user_id", account.ID, "username", username)
	return a.issue(account)
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return domain.LoginResponse{}, errInvalidCredentials
	}

	account, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.LoginResponse{}, errInvalidCredentials
		}
		return domain.LoginResponse{}, apperr.Persistence("load account", err)
	}
	if !verifyPassword(account.Password, req.Password) {
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !account.Active {
		return domain.LoginResponse{}, apperr.Unauthorized("account is inactive")
	}
	return a.issue(account)
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &catatkasClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithIssuer(tokenIssuer))
	if err != nil || !token.Valid {
		return domain.Actor{}, apperr.Unauthorized("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, apperr.Unauthorized("invalid token subject")
	}
	return domain.Actor{UserID: sub, Username: claims.Username}, nil
}

const tokenIssuer = "catatkas"

func (a *AuthManager) issue(account domain.UserAccount) (domain.LoginResponse, error) {
	issuedAt := a.now()
	expiresAt := issuedAt.Add(a.tokenTTL)
	claims := catatkasClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    tokenIssuer,
		},
		Username: account.Username,
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{
		AccessToken: token,
		UserID:      account.ID,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

// validatePasswordStrength rejects short passwords and ones made of a single
// repeated character or a plain ascending/descending run.
func validatePasswordStrength(password string) error {
	if len(strings.TrimSpace(password)) < 8 {
		return apperr.Validation("password must be at least 8 characters")
	}
	known := map[string]bool{
		"password": true, "12345678": true, "87654321": true, "qwertyui": true,
		"password1": true, "abcdefgh": true, "11111111": true,
	}
	if known[strings.ToLower(password)] {
		return apperr.Validation("password is too common")
	}

	allSame := true
	ascending, descending := true, true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
		}
		diff := int(password[i]) - int(password[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if allSame || ascending || descending {
		return apperr.Validation("password is too simple")
	}
	return nil
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
