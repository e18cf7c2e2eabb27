package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role domain.Role
		want bool
	}{
		{domain.RoleLibraryOwner, true},
		{domain.RoleStaff, true},
		{domain.RoleFrontDesk, true},
		{domain.RoleStudent, true},
		{domain.RoleAdmin, true},
		{domain.Role(""), false},
		{domain.Role("ADMIN"), false},
		{domain.Role("agent"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.IsValid())
		})
	}
}

func TestRole_IsStaff(t *testing.T) {
	assert.True(t, domain.RoleFrontDesk.IsStaff())
	assert.True(t, domain.RoleAdmin.IsStaff())
	assert.False(t, domain.RoleStudent.IsStaff())
}

func TestTarget_RoomKey(t *testing.T) {
	tests := []struct {
		name   string
		target domain.Target
		want   string
	}{
		{"role", domain.RoleTarget(domain.RoleStudent), "role:student"},
		{"library", domain.LibraryTarget("lib-42"), "library:lib-42"},
		{"user", domain.UserTarget("u42"), "user:u42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.target.Valid())
			assert.Equal(t, tt.want, tt.target.RoomKey())
		})
	}
}

func TestTarget_Valid(t *testing.T) {
	assert.False(t, domain.LibraryTarget("").Valid())
	assert.False(t, domain.UserTarget("a:b").Valid())
	assert.False(t, domain.Target{Kind: "team", ID: "x"}.Valid())
}

func TestCollectTargets(t *testing.T) {
	got := domain.CollectTargets(
		domain.RoleTarget(domain.RoleStudent),
		domain.LibraryTarget(""),
		domain.UserTarget("u1"),
	)

	assert.Equal(t, []string{"role:student", "user:u1"}, domain.RoomKeys(got))
	assert.Empty(t, domain.CollectTargets())
}

func TestTargetsFor(t *testing.T) {
	bookingRooms := []string{"role:library_owner", "role:staff", "role:front_desk", "library:lib-1"}

	tests := []struct {
		name  string
		event domain.EventType
		ref   domain.RoutingRef
		want  []string
	}{
		{"booking created", domain.EventBookingCreated, domain.RoutingRef{LibraryID: "lib-1"}, bookingRooms},
		{"booking checkout", domain.EventBookingCheckOut, domain.RoutingRef{LibraryID: "lib-1"}, bookingRooms},
		{
			name:  "booking without library",
			event: domain.EventBookingUpdated,
			want:  []string{"role:library_owner", "role:staff", "role:front_desk"},
		},
		{"library deleted", domain.EventLibraryDeleted, domain.RoutingRef{LibraryID: "lib-1"}, []string{"role:student"}},
		{"pricing", domain.EventPricingUpdated, domain.RoutingRef{LibraryID: "lib-1"}, []string{"role:student", "library:lib-1"}},
		{"pricing without library", domain.EventPricingUpdated, domain.RoutingRef{}, []string{"role:student"}},
		{"seat", domain.EventSeatAvailability, domain.RoutingRef{LibraryID: "lib-1"}, []string{"library:lib-1"}},
		{"seat without library", domain.EventSeatAvailability, domain.RoutingRef{}, []string{}},
		{"notification", domain.EventNotification, domain.RoutingRef{UserID: "u42"}, []string{"user:u42"}},
		{"unknown event", domain.EventType("custom"), domain.RoutingRef{LibraryID: "lib-1"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.RoomKeys(domain.TargetsFor(tt.event, tt.ref))
			assert.Equal(t, tt.want, got)
		})
	}
}
