// service содержит бизнес-логику аутентификации портала:
// вход, проверку access-токенов, ротацию refresh-токенов, выход
// и управление учётными записями.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для
//     конкурентного использования, если потокобезопасны переданные
//     storage.Storage и revocation.Store.
//   - Единственный разделяемый изменяемый ресурс — хранилище отзыва.
//     Одноразовость refresh-токена обеспечивается его атомарной записью
//     "если отсутствует", а не блокировками в процессе.
//   - Любая ошибка хранилища отзыва отклоняет запрос (ErrStoreUnavailable).
//   - Ошибки возвращаются сентинелами и маппятся транспортом на HTTP-коды.
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/datasource-portal/internal/config"
	"github.com/pribylovaa/datasource-portal/internal/hasher"
	"github.com/pribylovaa/datasource-portal/internal/revocation"
	"github.com/pribylovaa/datasource-portal/internal/storage"
	"github.com/pribylovaa/datasource-portal/internal/token"
)

var (
	// ErrInvalidCredentials — неизвестное имя или неверный пароль. Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Ошибки декодирования токена. Транспорт: 401.
	ErrInvalidSignature = token.ErrInvalidSignature
	ErrExpired          = token.ErrExpired
	ErrMalformed        = token.ErrMalformed
	ErrWrongTokenType   = token.ErrWrongTokenType

	// ErrBlacklisted — access-токен отозван (logout). Транспорт: 401.
	ErrBlacklisted = errors.New("token revoked")

	// ErrTokenAlreadyUsed — refresh-токен уже был использован или отозван. Транспорт: 401.
	ErrTokenAlreadyUsed = errors.New("refresh token already used")

	// ErrPrincipalDisabled — учётная запись отключена. Транспорт: 401.
	ErrPrincipalDisabled = errors.New("principal disabled")

	// ErrPrincipalNotFound — субъект токена не существует. Транспорт: 401.
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrStoreUnavailable — хранилище отзыва недоступно; запрос отклоняется. Транспорт: 401.
	ErrStoreUnavailable = revocation.ErrUnavailable

	// ErrTokenMismatch — access и refresh токены выданы разным субъектам. Транспорт: 401.
	ErrTokenMismatch = errors.New("tokens belong to different principals")

	// ErrAccountNotFound — учётная запись, над которой выполняется
	// административная операция, не найдена. Транспорт: 404.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUsernameTaken — имя уже занято. Транспорт: 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidUsername — имя не проходит правила формата. Транспорт: 400.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. Транспорт: 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidRole — неизвестная роль. Транспорт: 400.
	ErrInvalidRole = errors.New("invalid role")
)

// authErrors — ошибки, которые транспорт сводит к одному непрозрачному 401.
var authErrors = []error{
	ErrInvalidCredentials,
	ErrInvalidSignature,
	ErrExpired,
	ErrMalformed,
	ErrWrongTokenType,
	ErrBlacklisted,
	ErrTokenAlreadyUsed,
	ErrPrincipalDisabled,
	ErrPrincipalNotFound,
	ErrStoreUnavailable,
	ErrTokenMismatch,
}

// IsAuthError сообщает, что err — ошибка аутентификации.
func IsAuthError(err error) bool {
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

// dummyPassword хэшируется один раз при старте; с этим хэшем сравнивается
// пароль при входе под несуществующим именем.
const dummyPassword = "timing-equalisation-only"

// Service описывает бизнес-логику аутентификации.
type Service struct {
	storage storage.Storage
	revoked revocation.Store
	codec   *token.Codec
	hasher  hasher.Hasher
	cfg     config.AuthConfig
	now     func() time.Time

	dummyHash string
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник времени (и для кодека токенов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHasher подменяет хэшер паролей.
func WithHasher(h hasher.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, rs revocation.Store, cfg config.AuthConfig, opts ...Option) (*Service, error) {
	const op = "service.New"

	if st == nil || rs == nil {
		return nil, fmt.Errorf("%s: storage and revocation store are required", op)
	}

	s := &Service{
		storage: st,
		revoked: rs,
		hasher:  hasher.NewBcrypt(cfg.BcryptCost),
		cfg:     cfg,
		now:     time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	codec, err := token.New(cfg, token.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.codec = codec

	dummy, err := s.hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.dummyHash = dummy

	return s, nil
}
