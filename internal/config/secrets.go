package config

import (
	"fmt"
	"os"
	"strings"
)

// readSecret читает секрет из файла в стандартном пути Docker Secrets.
// Если файла нет, используется переменная окружения с именем секрета
// в верхнем регистре (локальная разработка без Docker).
func readSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	if env := strings.TrimSpace(os.Getenv(strings.ToUpper(secretName))); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("failed to read secret %s: %w", secretName, err)
}
