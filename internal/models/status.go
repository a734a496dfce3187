package models

// StoryStatus определяет статус готовности истории.
// Совпадает с типом ENUM 'story_status' в БД.
// Статусы образуют упорядоченную решетку и двигаются только вперед:
// INCOMPLETE -> GENERATING -> PROGRESS10..PROGRESS90 -> COMPLETE.
type StoryStatus string

const (
	StatusIncomplete StoryStatus = "INCOMPLETE" // Создана, генерация изображений не начиналась
	StatusGenerating StoryStatus = "GENERATING" // Есть прогресс, но меньше 10%
	StatusProgress10 StoryStatus = "PROGRESS10"
	StatusProgress20 StoryStatus = "PROGRESS20"
	StatusProgress30 StoryStatus = "PROGRESS30"
	StatusProgress40 StoryStatus = "PROGRESS40"
	StatusProgress50 StoryStatus = "PROGRESS50"
	StatusProgress60 StoryStatus = "PROGRESS60"
	StatusProgress70 StoryStatus = "PROGRESS70"
	StatusProgress80 StoryStatus = "PROGRESS80"
	StatusProgress90 StoryStatus = "PROGRESS90"
	StatusComplete   StoryStatus = "COMPLETE" // Все страницы имеют выбранное изображение
)

// statusLadder задает порядок статусов в решетке.
var statusLadder = []StoryStatus{
	StatusIncomplete,
	StatusGenerating,
	StatusProgress10,
	StatusProgress20,
	StatusProgress30,
	StatusProgress40,
	StatusProgress50,
	StatusProgress60,
	StatusProgress70,
	StatusProgress80,
	StatusProgress90,
	StatusComplete,
}

var statusRank = func() map[StoryStatus]int {
	m := make(map[StoryStatus]int, len(statusLadder))
	for i, s := range statusLadder {
		m[s] = i
	}
	return m
}()

// ProjectStatus проецирует процент готовности на статус:
// наибольший порог решетки, не превышающий percent.
// 0 -> INCOMPLETE, 0<p<10 -> GENERATING, 45 -> PROGRESS40, 100 -> COMPLETE.
func ProjectStatus(percent int) StoryStatus {
	switch {
	case percent <= 0:
		return StatusIncomplete
	case percent >= 100:
		return StatusComplete
	case percent < 10:
		return StatusGenerating
	default:
		return statusLadder[1+percent/10]
	}
}

// Rank возвращает позицию статуса в решетке. Неизвестный статус
// считается самым ранним, чтобы запись всегда могла его поднять.
func (s StoryStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return 0
}

// Before reports whether s is strictly earlier than other in the lattice.
func (s StoryStatus) Before(other StoryStatus) bool {
	return s.Rank() < other.Rank()
}

// ForwardStatus возвращает более поздний из двух статусов.
// Используется как защита от отката при конкурентном завершении категорий.
func ForwardStatus(current, next StoryStatus) StoryStatus {
	if current.Before(next) {
		return next
	}
	return current
}
