package notification

import (
	"strings"
	"time"
)

// SeverityLevel buckets notifications for display ordering and badge color.
type SeverityLevel string

const (
	SeverityCritical SeverityLevel = "critical"
	SeverityWarning  SeverityLevel = "warning"
	SeverityInfo     SeverityLevel = "info"
)

// Recipient carries the per-recipient read flag.
type Recipient struct {
	UserID string `json:"userId"`
	Read   bool   `json:"read"`
}

// Notification is one broadcast or targeted alert from the backend.
type Notification struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Message    string      `json:"message"`
	Type       string      `json:"type"`
	Priority   string      `json:"priority"`
	Category   string      `json:"category"`
	CreatedAt  time.Time   `json:"createdAt"`
	Recipients []Recipient `json:"recipients"`
}

// Severity buckets a notification by its type and priority. The backend emits
// both upper and lower case values, so matching is case-insensitive rather
// than assuming a canonical casing.
func Severity(typ, priority string) SeverityLevel {
	t := strings.ToLower(typ)
	p := strings.ToLower(priority)
	switch {
	case t == "critical" || p == "high":
		return SeverityCritical
	case t == "warning" || p == "medium":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Severity reports the bucket for this notification.
func (n Notification) Severity() SeverityLevel {
	return Severity(n.Type, n.Priority)
}

// ReadBy reports whether the given recipient has read the notification.
func (n Notification) ReadBy(userID string) bool {
	for _, r := range n.Recipients {
		if r.UserID == userID && r.Read {
			return true
		}
	}
	return false
}

// MarkRead flips the read flag for one recipient in place. The flag is local
// view state only; no server round-trip is made for it.
func (n *Notification) MarkRead(userID string) {
	for i := range n.Recipients {
		if n.Recipients[i].UserID == userID {
			n.Recipients[i].Read = true
			return
		}
	}
	n.Recipients = append(n.Recipients, Recipient{UserID: userID, Read: true})
}

// UnreadCount counts notifications the recipient has not read yet.
func UnreadCount(list []Notification, userID string) int {
	count := 0
	for _, n := range list {
		if !n.ReadBy(userID) {
			count++
		}
	}
	return count
}
