package models

// UploadedFile хранит содержимое поля формы `file` и живёт только в рамках запроса.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ConvertedImage хранит результат перекодирования в WebP.
type ConvertedImage struct {
	Data   []byte
	Width  int
	Height int
}

// Len возвращает точную длину WebP-данных, она же уходит в Content-Length.
func (c ConvertedImage) Len() int {
	return len(c.Data)
}
