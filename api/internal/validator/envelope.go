// Package validator checks the shape of submitted message envelopes.
package validator

import (
	"strings"

	"github.com/mailrelay-systems/mailrelay-stack/common/models"
)

// Validate checks an envelope's required field set. Rules apply in order and
// the first failure wins. Field values are opaque; no type checking happens
// here.
func Validate(env *models.Envelope) (bool, string) {
	if env.Data == nil {
		return false, "missing data field"
	}
	if env.Token == nil {
		return false, "missing token field"
	}

	var missing []string
	for _, field := range models.RequiredFields {
		if _, ok := env.Data[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return false, "missing required fields in data: " + strings.Join(missing, ", ")
	}

	return true, ""
}
