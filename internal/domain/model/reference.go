package model

// Locality — населённый пункт (справочник).
type Locality struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Validate проверяет обязательные поля.
func (l Locality) Validate() error {
	return requireFields("locality", "id", l.ID.String(), "name", l.Name)
}

// School — учебное заведение (справочник).
type School struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	LocalityID ID     `json:"localityId"`
}

// Validate проверяет обязательные поля.
func (s School) Validate() error {
	return requireFields("school", "id", s.ID.String(), "name", s.Name)
}
