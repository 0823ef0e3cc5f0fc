package utils

import "strconv"

// ParsePage разбирает номер страницы из параметра запроса.
// Нечисловое значение или значение меньше единицы трактуется как первая страница.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ClampPage приводит номер страницы к допустимому диапазону и возвращает
// итоговую страницу вместе с общим числом страниц. Запрос страницы за
// пределами последней возвращает последнюю; пустая выборка — одну страницу.
func ClampPage(page, total, pageSize int) (int, int) {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}
