//go:build linux

package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The kernel's bt_security levels: BT_SECURITY_LOW 1, MEDIUM 2, HIGH 3.
func TestSecurityLevelOption(t *testing.T) {
	assert.EqualValues(t, 1, securityLevel(SecurityLow))
	assert.EqualValues(t, 2, securityLevel(SecurityMedium))
	assert.EqualValues(t, 3, securityLevel(SecurityHigh))
}
