package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/binhminh-backend/internal/logger"
	"github.com/ignatzorin/binhminh-backend/internal/pkg/apperror"
	"github.com/ignatzorin/binhminh-backend/internal/repository/common"
	"github.com/ignatzorin/binhminh-backend/internal/resource"
	"github.com/ignatzorin/binhminh-backend/internal/validation"
)

// AdminProfile — данные администратора, которые видит клиент.
type AdminProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// LoginResult возвращает итог авторизации.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      AdminProfile `json:"user"`
}

// AdminService — учётные записи администраторов и вход в админку.
type AdminService struct {
	*ResourceService
	tokens *TokenManager
	cost   int
}

func NewAdminService(schema *resource.Schema, store Store, tokens *TokenManager) *AdminService {
	return &AdminService{
		ResourceService: NewResourceService(schema, store),
		tokens:          tokens,
		cost:            bcrypt.DefaultCost,
	}
}

// Login проверяет пароль активного администратора и выпускает токен.
func (s *AdminService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	var fields []apperror.FieldError
	if username == "" {
		fields = append(fields, apperror.FieldError{Field: "username", Message: validation.RequiredMessage("username")})
	}
	if password == "" {
		fields = append(fields, apperror.FieldError{Field: "password", Message: validation.RequiredMessage("password")})
	}
	if len(fields) > 0 {
		return nil, apperror.Validation(fields)
	}

	row, err := s.store.Get(ctx, resource.Statement{
		Text: "SELECT * FROM " + s.schema.Table + " WHERE username = ? AND is_active = ? LIMIT 1",
		Args: []any{username, true},
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("admin: login: %w", err)
	}

	hash := cast.ToString(row["password"])
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		logger.Log.WithField("username", username).Info("неудачная попытка входа")
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := resource.DecodeRow(s.schema, row)
	if err != nil {
		return nil, err
	}
	profile := profileFromRow(user)

	if _, err := s.store.Exec(ctx, resource.Statement{
		Text: "UPDATE " + s.schema.Table + " SET last_login = CURRENT_TIMESTAMP WHERE id = ?",
		Args: []any{profile.ID},
	}); err != nil {
		return nil, fmt.Errorf("admin: update last login: %w", err)
	}

	token, exp, err := s.tokens.Issue(profile.ID, profile.Username, profile.Role)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"admin_id": profile.ID, "role": profile.Role}).Info("вход в админку")
	return &LoginResult{Token: token, ExpiresAt: exp, User: profile}, nil
}

func profileFromRow(row map[string]any) AdminProfile {
	return AdminProfile{
		ID:       cast.ToInt64(row["id"]),
		Username: cast.ToString(row["username"]),
		Email:    cast.ToString(row["email"]),
		FullName: cast.ToString(row["full_name"]),
		Role:     cast.ToString(row["role"]),
	}
}

// CreateUser создаёт администратора. Пароль проверяется и хешируется.
func (s *AdminService) CreateUser(ctx context.Context, payload map[string]any) (int64, error) {
	values, err := s.withHashedPassword(payload)
	if err != nil {
		return 0, err
	}
	return s.Create(ctx, values)
}

// UpdateUser меняет данные администратора. Пустой пароль не меняет текущий.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, payload map[string]any) error {
	values, err := s.withHashedPassword(payload)
	if err != nil {
		return err
	}
	return s.Update(ctx, id, values)
}

// DeleteUser удаляет администратора. Удалить собственную учётную запись нельзя.
func (s *AdminService) DeleteUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return apperror.New(apperror.ErrCodeValidation, "Không thể xóa tài khoản đang đăng nhập")
	}
	return s.Delete(ctx, id)
}

func (s *AdminService) withHashedPassword(payload map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(payload))
	for k, v := range payload {
		values[k] = v
	}

	raw, ok := values["password"]
	if !ok {
		return values, nil
	}
	password := cast.ToString(raw)
	if password == "" {
		delete(values, "password")
		return values, nil
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, apperror.Validation([]apperror.FieldError{{Field: "password", Message: err.Error()}})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("admin: hash password: %w", err)
	}
	values["password"] = string(hash)
	return values, nil
}
