// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов (имена учётных записей, токены, пароли).
package redact

// Username маскирует имя учётной записи для логирования.
//
// Правила:
//   - первые два символа (по рунам) сохраняются, остаток заменяется на "***";
//   - если имя короче трёх символов — возвращается "***".
//
// Примеры:
//
//	"alice"  -> "al***"
//	"bo"     -> "***"
//	""       -> "***"
func Username(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "***"
	}

	return string(r[:2]) + "***"
}

// TokenID сокращает идентификатор токена до префикса: этого достаточно для
// корреляции записей, но не для поиска ключа в хранилище отзыва.
func TokenID(id string) string {
	if len(id) <= 8 {
		return "***"
	}

	return id[:8] + "…"
}

// Token возвращает литерал-заглушку для токена в логах.
func Token() string { return "[REDACTED_TOKEN]" }

// Password возвращает литерал-заглушку для пароля в логах.
func Password() string { return "[REDACTED_PASSWORD]" }
