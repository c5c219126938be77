package authz

import (
	"testing"

	"lyramor/internal/models"
)

func TestCanMutate(t *testing.T) {
	tests := []struct {
		name    string
		actor   *models.SessionUser
		ownerID int64
		want    bool
	}{
		{name: "owner", actor: &models.SessionUser{ID: 7}, ownerID: 7, want: true},
		{name: "admin non-owner", actor: &models.SessionUser{ID: 2, IsAdmin: true}, ownerID: 7, want: true},
		{name: "non-owner", actor: &models.SessionUser{ID: 2}, ownerID: 7, want: false},
		{name: "anonymous", actor: nil, ownerID: 7, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanMutate(tc.actor, tc.ownerID); got != tc.want {
				t.Fatalf("CanMutate() = %v, want %v", got, tc.want)
			}
		})
	}
}
