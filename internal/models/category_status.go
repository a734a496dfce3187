package models

// CategoryStatus определяет состояние генерации изображений одной категории.
// Заменяет UI-флаги "категория в работе": карта статусов принадлежит
// оркестратору и доступна через операцию запроса прогресса.
type CategoryStatus string

const (
	CategoryStatusPending    CategoryStatus = "pending"    // Генерация не запускалась
	CategoryStatusGenerating CategoryStatus = "generating" // Задача категории в работе
	CategoryStatusCompleted  CategoryStatus = "completed"  // Все страницы категории получили изображение
	CategoryStatusFailed     CategoryStatus = "failed"     // Последний запуск завершился ошибкой (можно повторить)
)
