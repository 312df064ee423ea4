//go:build !darwin || !cgo

package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireWithoutPermissionModel(t *testing.T) {
	assert.NoError(t, Require(true, true))
	assert.NoError(t, Require(false, false))
}
