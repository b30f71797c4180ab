// token кодирует и декодирует подписанные токены с ограниченным сроком жизни.
//
// Формат — JWT (HS256, base64url, помещается в HTTP-заголовок). Ключ подписи
// не равен секрету: он выводится как HMAC-SHA256(secret, signature_salt),
// поэтому один и тот же секрет, использованный для другой цели с другой солью,
// не позволяет подделать токен портала.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/config"
	"github.com/pribylovaa/datasource-portal/internal/models"
)

var (
	// ErrInvalidSignature — подпись не совпадает (чужой ключ, подмена
	// содержимого или недопустимый алгоритм).
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired — exp в прошлом с учётом допуска на расхождение часов.
	ErrExpired = errors.New("token expired")
	// ErrMalformed — строку не удалось разобрать, либо обязательные
	// поля полезной нагрузки отсутствуют или некорректны.
	ErrMalformed = errors.New("malformed token")
	// ErrWrongTokenType — токен другого назначения (refresh вместо access и наоборот).
	ErrWrongTokenType = errors.New("wrong token type")
	// ErrInvalidPayload — попытка закодировать неполную полезную нагрузку.
	ErrInvalidPayload = errors.New("invalid token payload")
)

type claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec подписывает и проверяет токены. Безопасен для конкурентного использования.
type Codec struct {
	key      []byte
	issuer   string
	audience []string
	leeway   time.Duration
	now      func() time.Time
}

// Option настраивает Codec.
type Option func(*Codec)

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New создаёт Codec из параметров auth-конфигурации.
func New(cfg config.AuthConfig, opts ...Option) (*Codec, error) {
	const op = "token.New"

	if cfg.Secret == "" || cfg.SignatureSalt == "" {
		return nil, fmt.Errorf("%s: secret and signature salt are required", op)
	}

	c := &Codec{
		key:      deriveKey(cfg.Secret, cfg.SignatureSalt),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		leeway:   cfg.Leeway,
		now:      time.Now,
	}

	for _, o := range opts {
		o(c)
	}

	return c, nil
}

func deriveKey(secret, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return mac.Sum(nil)
}

// Leeway возвращает допуск на расхождение часов, с которым проверяется exp.
func (c *Codec) Leeway() time.Duration { return c.leeway }

// Issue выпускает новый токен: генерирует уникальный TokenID,
// фиксирует issued_at = now и expires_at = now + ttl.
func (c *Codec) Issue(subject uuid.UUID, role models.Role, typ models.TokenType, ttl time.Duration) (string, *models.TokenPayload, error) {
	const op = "token.Issue"

	now := c.now().UTC().Truncate(time.Second)
	p := &models.TokenPayload{
		SubjectID: subject,
		Role:      role,
		TokenType: typ,
		TokenID:   uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	s, err := c.Encode(p)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, p, nil
}

// Encode подписывает полезную нагрузку. Время в токене хранится с точностью
// до секунды, поэтому IssuedAt и ExpiresAt с дробной частью отклоняются.
func (c *Codec) Encode(p *models.TokenPayload) (string, error) {
	const op = "token.Encode"

	if err := checkPayload(p); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	cl := claims{
		Role:      string(p.Role),
		TokenType: string(p.TokenType),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.SubjectID.String(),
			ID:        p.TokenID,
			IssuedAt:  jwt.NewNumericDate(p.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings(c.audience),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Decode проверяет подпись и срок действия и возвращает полезную нагрузку.
// Любая ошибка приводится к одному из ErrInvalidSignature, ErrExpired, ErrMalformed.
func (c *Codec) Decode(s string) (*models.TokenPayload, error) {
	const op = "token.Decode"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if len(c.audience) > 0 {
		opts = append(opts, jwt.WithAudience(c.audience...))
	}

	var cl claims
	tok, err := jwt.ParseWithClaims(s, &cl, func(*jwt.Token) (any, error) {
		return c.key, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%s: %w", op, ErrExpired)
		default:
			return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
		}
	}

	if !tok.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrMalformed)
	}

	p, err := payloadFromClaims(&cl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// DecodeAs декодирует токен и требует, чтобы он был указанного типа.
func (c *Codec) DecodeAs(s string, typ models.TokenType) (*models.TokenPayload, error) {
	const op = "token.DecodeAs"

	p, err := c.Decode(s)
	if err != nil {
		return nil, err
	}

	if p.TokenType != typ {
		return nil, fmt.Errorf("%s: %w", op, ErrWrongTokenType)
	}

	return p, nil
}

func payloadFromClaims(cl *claims) (*models.TokenPayload, error) {
	sub, err := uuid.Parse(cl.Subject)
	if err != nil || sub == uuid.Nil {
		return nil, ErrMalformed
	}

	if cl.ID == "" || cl.IssuedAt == nil || cl.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	typ := models.TokenType(cl.TokenType)
	role := models.Role(cl.Role)
	if !typ.Valid() || !role.Valid() {
		return nil, ErrMalformed
	}

	return &models.TokenPayload{
		SubjectID: sub,
		Role:      role,
		TokenType: typ,
		TokenID:   cl.ID,
		IssuedAt:  cl.IssuedAt.Time.UTC(),
		ExpiresAt: cl.ExpiresAt.Time.UTC(),
	}, nil
}

func checkPayload(p *models.TokenPayload) error {
	switch {
	case p == nil:
		return ErrInvalidPayload
	case p.SubjectID == uuid.Nil, p.TokenID == "":
		return ErrInvalidPayload
	case !p.TokenType.Valid(), !p.Role.Valid():
		return ErrInvalidPayload
	case !p.ExpiresAt.After(p.IssuedAt):
		return ErrInvalidPayload
	case !wholeSecond(p.IssuedAt), !wholeSecond(p.ExpiresAt):
		return ErrInvalidPayload
	}

	return nil
}

func wholeSecond(t time.Time) bool { return t.Nanosecond() == 0 }
