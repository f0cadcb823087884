package model

import "golang.org/x/crypto/bcrypt"

type User struct {
	BaseModel
	Email        string  `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required"`
	Username     string  `gorm:"type:varchar(150);unique;not null" json:"username" form:"username" binding:"required"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	IsSuperuser  bool    `gorm:"type:boolean;default:false" json:"isSuperuser" form:"isSuperuser"`
	Groups       []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`
}

func (u User) TableName() string {
	return "users"
}

// SetPassword hashes the plain password and stores the hash on the user.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether the plain password matches the stored hash.
func (u User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// GroupIDs returns the ids of the groups preloaded on the user.
func (u User) GroupIDs() []string {
	ids := make([]string, 0, len(u.Groups))
	for _, g := range u.Groups {
		ids = append(ids, g.ID)
	}
	return ids
}

type Group struct {
	BaseModel
	Name string `gorm:"type:varchar(150);unique;not null" json:"name" form:"name" binding:"required"`
}

func (g Group) TableName() string {
	return "groups"
}
