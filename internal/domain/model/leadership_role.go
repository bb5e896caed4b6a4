package model

// LeadershipRole — роль руководства (President, Chair, ...) из каталога платформы.
type LeadershipRole struct {
	ID             ID     `json:"id"`
	Abbr           string `json:"abbr"`
	LeadershipRole string `json:"leadershipRole"`
}

// Validate проверяет обязательные поля роли.
func (r LeadershipRole) Validate() error {
	return requireFields("leadership role", "id", r.ID.String(), "abbr", r.Abbr, "leadershipRole", r.LeadershipRole)
}

// EventLeadershipRole — роль руководства, назначенная на мероприятие.
// Ranking задаёт порядок отображения (1 — первая).
type EventLeadershipRole struct {
	ID               ID     `json:"id"`
	EventID          ID     `json:"eventId"`
	LeadershipRoleID ID     `json:"leadershipRoleId"`
	Abbr             string `json:"abbr"`
	LeadershipRole   string `json:"leadershipRole"`
	Ranking          int    `json:"ranking"`
}

// Validate проверяет обязательные поля роли мероприятия.
func (r EventLeadershipRole) Validate() error {
	return requireFields("event leadership role", "id", r.ID.String(), "leadershipRoleId", r.LeadershipRoleID.String())
}

// OrganiserLeadershipRole — собственная роль руководства организатора.
type OrganiserLeadershipRole struct {
	ID             ID     `json:"id"`
	OrganiserID    ID     `json:"organiserId"`
	Abbr           string `json:"abbr"`
	LeadershipRole string `json:"leadershipRole"`
}

// Validate проверяет обязательные поля роли организатора.
func (r OrganiserLeadershipRole) Validate() error {
	return requireFields("organiser leadership role", "id", r.ID.String(), "abbr", r.Abbr, "leadershipRole", r.LeadershipRole)
}
