package models

import "time"

// AccessToken is the server-side record behind an issued API bearer
// token. The JWT carries the record ID as its jti claim; deleting the
// record revokes the token even before the JWT expires.
type AccessToken struct {
	ID         string `gorm:"primaryKey;size:64"`
	UserID     uint   `gorm:"not null;index"`
	User       User   `gorm:"foreignKey:UserID"`
	CreatedAt  time.Time
	LastUsedAt *time.Time
}

func (t *AccessToken) TableName() string {
	return "access_tokens"
}
