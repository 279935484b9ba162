package services

import (
	"testing"

	"propertyms/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestCanManage(t *testing.T) {
	assert.True(t, canManage(admin, 99))
	assert.True(t, canManage(owner, 20))
	assert.False(t, canManage(owner, 21))
	assert.False(t, canManage(tenant, 30))
}

func TestCanView(t *testing.T) {
	assert.True(t, canView(tenant, 20, 30))
	assert.False(t, canView(tenant, 20, 31))
	assert.True(t, canView(owner, 20, 31))
	assert.True(t, canView(admin, 0, 0))
}

func TestCallerFields(t *testing.T) {
	assert.Equal(t, logrus.Fields{"caller_id": int64(20), "caller_role": models.RoleOwner}, callerFields(owner))
}
