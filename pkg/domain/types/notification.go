package types

import "fmt"

// NotificationKind is the severity shown with a notification
type NotificationKind string

const (
	NotificationKindInfo    NotificationKind = "info"
	NotificationKindSuccess NotificationKind = "success"
	NotificationKindWarning NotificationKind = "warning"
)

// IsValid checks if the notification kind is valid
func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationKindInfo, NotificationKindSuccess, NotificationKindWarning:
		return true
	default:
		return false
	}
}

func (k NotificationKind) String() string {
	return string(k)
}

// ParseNotificationKind parses a string into a NotificationKind
func ParseNotificationKind(s string) (NotificationKind, error) {
	kind := NotificationKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid notification kind: %s", s)
	}
	return kind, nil
}

// Category is a free-form tag attached to a notification, used to pick the
// label shown on outbound messages. Unknown categories are allowed.
type Category string

const (
	CategoryDemonstration      Category = "demonstration"
	CategoryServiceMaintenance Category = "service_maintenance"
	CategoryServiceRevision    Category = "service_revision"
	CategoryServiceSpraying    Category = "service_spraying"
	CategorySale               Category = "sale"
	CategoryCommission         Category = "commission"
	CategoryTask               Category = "task"
	CategoryFollowup           Category = "followup"
)

// ServiceCategory builds the category of a service order from its service type
func ServiceCategory(serviceType string) Category {
	if serviceType == "" {
		return ""
	}
	return Category("service_" + serviceType)
}

func (c Category) String() string {
	return string(c)
}
