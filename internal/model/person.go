package model

import "time"

// Person is someone tasks are assigned to. Replies are matched to a person by
// the exact sender address.
type Person struct {
	ID        uint      `json:"person_id" gorm:"column:person_id;primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Person
func (Person) TableName() string {
	return "people"
}
