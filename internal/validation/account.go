// Package validation содержит функции валидации входных данных.
package validation

const (
	minAccountNumberLen = 6
	maxAccountNumberLen = 34
)

// IsValidAccountNumber проверяет формат номера счёта: от 6 до 34 символов,
// только цифры и заглавные латинские буквы. Содержимое номера для ядра
// авторизации непрозрачно, проверяется только форма.
func IsValidAccountNumber(number string) bool {
	if len(number) < minAccountNumberLen || len(number) > maxAccountNumberLen {
		return false
	}

	for i := 0; i < len(number); i++ {
		ch := number[i]
		if ch >= '0' && ch <= '9' {
			continue
		}
		if ch >= 'A' && ch <= 'Z' {
			continue
		}
		return false
	}

	return true
}
