package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"umi-faculty-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireRoleAllowsListedRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("roleID", models.RoleIDCoordinator)

	RequireRole(models.RoleIDAdmin, models.RoleIDCoordinator)(c)
	assert.False(t, c.IsAborted())
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("roleID", models.RoleIDOfficer)

	RequireRole(models.RoleIDAdmin, models.RoleIDCoordinator)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RequireRole(models.RoleIDAdmin)(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}
