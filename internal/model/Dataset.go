package model

type Dataset struct {
	BaseModel
	Name                 string `gorm:"type:varchar(255);not null" json:"name" form:"name" binding:"required"`
	Description          string `gorm:"type:text" json:"description" form:"description"`
	IsPublic             bool   `gorm:"type:boolean;default:false" json:"isPublic" form:"isPublic"`
	AllowMultipleEntries bool   `gorm:"type:boolean;default:false" json:"allowMultipleEntries" form:"allowMultipleEntries"`
	EnableMappingAreas   bool   `gorm:"type:boolean;default:false" json:"enableMappingAreas" form:"enableMappingAreas"`

	OwnerID string `gorm:"type:text;not null;index" json:"ownerId" form:"ownerId"`
	Owner   User   `json:"owner"`

	SharedWith       []User  `gorm:"many2many:dataset_shared_users;" json:"sharedWith,omitempty"`
	SharedWithGroups []Group `gorm:"many2many:dataset_shared_groups;" json:"sharedWithGroups,omitempty"`
}

func (d Dataset) TableName() string {
	return "datasets"
}

// CanAccess reports whether the user may read the dataset. Public datasets
// are readable by anyone; otherwise the user must be the owner, a superuser,
// listed in SharedWith, or a member of a group in SharedWithGroups.
// SharedWith and SharedWithGroups must be preloaded.
func (d Dataset) CanAccess(user User, userGroupIDs []string) bool {
	if d.IsPublic {
		return true
	}

	if user.IsSuperuser || d.OwnerID == user.ID {
		return true
	}

	for _, u := range d.SharedWith {
		if u.ID == user.ID {
			return true
		}
	}

	for _, g := range d.SharedWithGroups {
		for _, id := range userGroupIDs {
			if g.ID == id {
				return true
			}
		}
	}

	return false
}

// CanModify reports whether the user may mutate the dataset and its
// structure. Shared users can read but never modify.
func (d Dataset) CanModify(user User) bool {
	return user.IsSuperuser || d.OwnerID == user.ID
}
