package reconcile

import (
	"strconv"

	"github.com/agentstation/assetsync/pkg/constants"
)

// Links builds the URL-valued attributes.
type Links struct {
	// DiscoveryURL is prefixed to the primary MAC.
	DiscoveryURL string
	// LabelURL is prefixed to the registry ID.
	LabelURL string
}

// DefaultLinks returns the deployment defaults.
func DefaultLinks() Links {
	return Links{
		DiscoveryURL: constants.DefaultDiscoveryLinkURL,
		LabelURL:     constants.DefaultLabelURL,
	}
}

// Discovery returns the network discovery link for mac.
func (l Links) Discovery(mac string) string {
	return l.DiscoveryURL + mac
}

// Label returns the printable label link for a registry ID.
func (l Links) Label(id int) string {
	return l.LabelURL + strconv.Itoa(id)
}
