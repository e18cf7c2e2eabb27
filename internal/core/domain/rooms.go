package domain

import (
	"strings"

	"github.com/samber/lo"
)

// RoomDelimiter separates the room kind from its identifier.
const RoomDelimiter = ":"

// Role is a user role. Every connection of a given role joins the matching role room.
type Role string

const (
	RoleLibraryOwner Role = "library_owner"
	RoleStaff        Role = "staff"
	RoleFrontDesk    Role = "front_desk"
	RoleStudent      Role = "student"
	RoleAdmin        Role = "admin"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleLibraryOwner, RoleStaff, RoleFrontDesk, RoleStudent, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the role operates a library (as opposed to browsing one).
func (r Role) IsStaff() bool {
	switch r {
	case RoleLibraryOwner, RoleStaff, RoleFrontDesk, RoleAdmin:
		return true
	default:
		return false
	}
}

// TargetKind identifies which family of rooms a Target addresses.
type TargetKind string

const (
	TargetRole    TargetKind = "role"
	TargetLibrary TargetKind = "library"
	TargetUser    TargetKind = "user"
)

// Target is a fan-out destination: a kind plus the identifier it is scoped to.
type Target struct {
	Kind TargetKind
	ID   string
}

// RoleTarget addresses every connection subscribed under role.
func RoleTarget(role Role) Target {
	return Target{Kind: TargetRole, ID: string(role)}
}

// LibraryTarget addresses every connection following one library.
func LibraryTarget(libraryID string) Target {
	return Target{Kind: TargetLibrary, ID: libraryID}
}

// UserTarget addresses the private channel of one user.
func UserTarget(userID string) Target {
	return Target{Kind: TargetUser, ID: userID}
}

// Valid reports whether the target can be turned into a room key.
// The identifier must be present and must not contain the delimiter.
func (t Target) Valid() bool {
	switch t.Kind {
	case TargetRole, TargetLibrary, TargetUser:
	default:
		return false
	}
	return ValidIdentifier(t.ID)
}

// RoomKey returns the canonical room name, e.g. "library:abc".
func (t Target) RoomKey() string {
	return string(t.Kind) + RoomDelimiter + t.ID
}

// ValidIdentifier reports whether id can be used as the identifier segment of a room key.
func ValidIdentifier(id string) bool {
	return id != "" && !strings.Contains(id, RoomDelimiter)
}

// CollectTargets keeps the targets whose identifier is derivable, in order,
// dropping the rest.
func CollectTargets(targets ...Target) []Target {
	return lo.Filter(targets, func(t Target, _ int) bool {
		return t.Valid()
	})
}

// RoomKeys maps targets to their room keys.
func RoomKeys(targets []Target) []string {
	return lo.Map(targets, func(t Target, _ int) string {
		return t.RoomKey()
	})
}

// RoutingRef carries the identifiers a payload exposes for routing.
type RoutingRef struct {
	LibraryID string
	UserID    string
}

// bookingAudience is the fixed set of roles that follow every booking change.
var bookingAudience = []Role{RoleLibraryOwner, RoleStaff, RoleFrontDesk}

// TargetsFor returns the fan-out destinations of event, derived from ref.
// Destinations whose identifier is missing from ref are omitted.
func TargetsFor(event EventType, ref RoutingRef) []Target {
	switch event {
	case EventBookingCreated, EventBookingUpdated, EventBookingCancelled,
		EventBookingCheckIn, EventBookingCheckOut:
		targets := lo.Map(bookingAudience, func(role Role, _ int) Target {
			return RoleTarget(role)
		})
		return CollectTargets(append(targets, LibraryTarget(ref.LibraryID))...)

	case EventLibraryCreated, EventLibraryUpdated, EventLibraryDeleted:
		return CollectTargets(RoleTarget(RoleStudent))

	case EventPricingUpdated:
		return CollectTargets(RoleTarget(RoleStudent), LibraryTarget(ref.LibraryID))

	case EventSeatAvailability:
		return CollectTargets(LibraryTarget(ref.LibraryID))

	case EventNotification:
		return CollectTargets(UserTarget(ref.UserID))

	default:
		return nil
	}
}
