package catalog

import (
	"fmt"
	"strings"
)

// Capabilities selects which affordances a role gets.
type Capabilities struct {
	CanEdit    bool
	CanDelete  bool
	CanReorder bool
	// CanRequestOnly lets a visitor submit a card that waits for moderation (view=0).
	CanRequestOnly bool
}

var (
	AdminCapabilities  = Capabilities{CanEdit: true, CanDelete: true, CanReorder: true}
	ViewerCapabilities = Capabilities{}
	PublicCapabilities = Capabilities{CanRequestOnly: true}
)

// SeesHidden reports whether cards pending moderation are shown.
func (c Capabilities) SeesHidden() bool {
	return c.CanEdit || c.CanDelete || c.CanReorder
}

func (c Capabilities) CanCreate() bool {
	return c.CanEdit || c.CanRequestOnly
}

func CapabilitiesFor(role string) (Capabilities, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return AdminCapabilities, nil
	case "", "viewer", "view":
		return ViewerCapabilities, nil
	case "public":
		return PublicCapabilities, nil
	}
	return Capabilities{}, fmt.Errorf("unknown role %q (want admin, viewer or public)", role)
}
