package movider

import (
	"fmt"
	"strings"
)

// FormatPhilippineNumber 归一化菲律宾手机号为 E.164 格式。
// 09xxxxxxxxx -> +639xxxxxxxxx，9xxxxxxxxx -> +639xxxxxxxxx，
// 63 开头补 +，已带 + 的保持不变。
func FormatPhilippineNumber(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '+' {
			return r
		}
		return -1
	}, strings.TrimSpace(phone))

	if cleaned == "" {
		return "", fmt.Errorf("%w: empty number", ErrInvalidPhone)
	}

	switch {
	case strings.HasPrefix(cleaned, "+"):
		if len(cleaned) < 11 {
			return "", fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
		}
		return cleaned, nil
	case strings.HasPrefix(cleaned, "09") && len(cleaned) == 11:
		return "+63" + cleaned[1:], nil
	case strings.HasPrefix(cleaned, "9") && len(cleaned) == 10:
		return "+63" + cleaned, nil
	case strings.HasPrefix(cleaned, "63") && len(cleaned) == 12:
		return "+" + cleaned, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPhone, phone)
	}
}
