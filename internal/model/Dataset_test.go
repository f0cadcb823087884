package model

import "testing"

func TestDatasetCanAccess(t *testing.T) {
	owner := User{BaseModel: BaseModel{ID: "owner"}}
	admin := User{BaseModel: BaseModel{ID: "admin"}, IsSuperuser: true}
	shared := User{BaseModel: BaseModel{ID: "shared"}}
	stranger := User{BaseModel: BaseModel{ID: "stranger"}}
	member := User{BaseModel: BaseModel{ID: "member"}}

	dataset := Dataset{
		OwnerID:          owner.ID,
		SharedWith:       []User{shared},
		SharedWithGroups: []Group{{BaseModel: BaseModel{ID: "group-a"}}},
	}

	tests := []struct {
		name     string
		dataset  Dataset
		user     User
		groupIDs []string
		want     bool
	}{
		{name: "owner", dataset: dataset, user: owner, want: true},
		{name: "superuser", dataset: dataset, user: admin, want: true},
		{name: "shared user", dataset: dataset, user: shared, want: true},
		{name: "group member", dataset: dataset, user: member, groupIDs: []string{"group-a"}, want: true},
		{name: "member of an unrelated group", dataset: dataset, user: member, groupIDs: []string{"group-b"}, want: false},
		{name: "stranger", dataset: dataset, user: stranger, want: false},
		{name: "public dataset lets anyone read", dataset: Dataset{IsPublic: true, OwnerID: owner.ID}, user: stranger, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dataset.CanAccess(tt.user, tt.groupIDs); got != tt.want {
				t.Errorf("CanAccess() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDatasetCanModify(t *testing.T) {
	dataset := Dataset{OwnerID: "owner", SharedWith: []User{{BaseModel: BaseModel{ID: "shared"}}}}

	if !dataset.CanModify(User{BaseModel: BaseModel{ID: "owner"}}) {
		t.Error("owner should be able to modify")
	}
	if !dataset.CanModify(User{BaseModel: BaseModel{ID: "x"}, IsSuperuser: true}) {
		t.Error("superuser should be able to modify")
	}
	if dataset.CanModify(User{BaseModel: BaseModel{ID: "shared"}}) {
		t.Error("shared user must not be able to modify")
	}
}
