package repository

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestUserModel_EmailUniqueAmongLiveUsers(t *testing.T) {
	s, err := schema.Parse(&UserModel{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	email := s.LookUpField("Email")
	require.NotNil(t, email)
	assert.Equal(t, "email", email.DBName)

	index, ok := email.TagSettings["UNIQUEINDEX"]
	require.True(t, ok)
	assert.Equal(t, "idx_users_email_live,where:deleted_at IS NULL", index)
}
