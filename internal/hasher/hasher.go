// hasher реализует одностороннее хэширование паролей на bcrypt.
//
// Хэш содержит соль и стоимость, поэтому Hash недетерминирован,
// а Verify не требует ничего, кроме самого хэша.
package hasher

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes — bcrypt учитывает не более 72 байт пароля.
const MaxPasswordBytes = 72

// ErrPasswordTooLong — пароль длиннее MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher — контракт хэширования паролей.
type Hasher interface {
	// Hash возвращает хэш пароля со встроенной солью.
	Hash(plain string) (string, error)
	// Verify сравнивает пароль с хэшем за постоянное время.
	// Повреждённый хэш даёт false, а не ошибку.
	Verify(plain, hash string) bool
}

// Bcrypt — Hasher на golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt создаёт Hasher с заданной стоимостью.
// Значения вне [bcrypt.MinCost, bcrypt.MaxCost] заменяются на bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Bcrypt{cost: cost}
}

// Hash хэширует пароль.
func (b *Bcrypt) Hash(plain string) (string, error) {
	const op = "hasher.Hash"

	if len(plain) > MaxPasswordBytes {
		return "", fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}

	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(out), nil
}

// Verify сравнивает пароль с хэшем.
// bcrypt.CompareHashAndPassword сравнивает дайджесты через subtle.ConstantTimeCompare.
func (b *Bcrypt) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Cost возвращает стоимость, с которой хэшируются новые пароли.
func (b *Bcrypt) Cost() int { return b.cost }

var _ Hasher = (*Bcrypt)(nil)
