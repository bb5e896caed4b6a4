package backend

// Status — признак успеха и сообщение из конверта ответа backend.
// Логический отказ backend (success:false) приходит с HTTP 2xx.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Envelope — конверт ответа backend {success, data, message}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ListResult — результат запроса списка.
type ListResult[T any] struct {
	Status
	// Items — записи, прошедшие проверку
	Items []T
	// Rejected — количество отброшенных некорректных записей
	Rejected int
}
