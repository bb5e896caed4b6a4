package model

import "fmt"

// Категории комитетов.
const (
	CommitteeCategoryCountry = "country"
	CommitteeCategoryRole    = "role"
)

// CommitteeCategories — допустимые категории комитета в порядке отображения.
var CommitteeCategories = []string{CommitteeCategoryCountry, CommitteeCategoryRole}

// Committee — комитет из глобального каталога платформы.
type Committee struct {
	ID        ID     `json:"id"`
	Abbr      string `json:"abbr"`
	Committee string `json:"committee"`
	Category  string `json:"category"`
}

// Validate проверяет обязательные поля комитета.
func (c Committee) Validate() error {
	if err := requireFields("committee", "id", c.ID.String(), "abbr", c.Abbr, "committee", c.Committee); err != nil {
		return err
	}
	if c.Category != "" && !IsCommitteeCategory(c.Category) {
		return fmt.Errorf("%w: неизвестная категория комитета %q", ErrInvalidRecord, c.Category)
	}
	return nil
}

// IsCommitteeCategory проверяет, является ли строка категорией комитета.
func IsCommitteeCategory(s string) bool {
	for _, c := range CommitteeCategories {
		if c == s {
			return true
		}
	}
	return false
}

// OrganiserCommittee — комитет, подключённый организатором к своему мероприятию.
type OrganiserCommittee struct {
	ID          ID     `json:"id"`
	EventID     ID     `json:"eventId"`
	CommitteeID ID     `json:"committeeId"`
	Abbr        string `json:"abbr"`
	Committee   string `json:"committee"`
	Category    string `json:"category"`
	Seats       int    `json:"seats"`
}

// Validate проверяет обязательные поля комитета мероприятия.
func (c OrganiserCommittee) Validate() error {
	if err := requireFields("organiser committee", "id", c.ID.String(), "committeeId", c.CommitteeID.String()); err != nil {
		return err
	}
	if c.Seats < 0 {
		return fmt.Errorf("%w: отрицательное количество мест %d", ErrInvalidRecord, c.Seats)
	}
	return nil
}
