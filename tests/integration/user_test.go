//go:build integration

package integration

import (
	"testing"

	"github.com/MidnightMr/parking-service/internal/models"
	"github.com/MidnightMr/parking-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(env *testEnv) service.UserService {
	return service.NewUserService(env.users)
}

func TestUpdateProfile_ChangesOwnFields(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	svc := newUserService(env)
	user := createTestUser(t, "selfedit", 0)

	name := "New Name"
	phone := "555-0101"
	password := "s3cret"
	updated, err := svc.UpdateProfile(t.Context(), actorFor(user), service.UpdateProfileCommand{
		Name:     &name,
		Phone:    &phone,
		Password: &password,
	})
	require.NoError(t, err)

	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "selfedit", updated.Username)

	var stored models.User
	require.NoError(t, testDB.First(&stored, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret")))
}

func TestUpdateProfile_PhoneConflict(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	svc := newUserService(env)
	first := createTestUser(t, "first", 0)
	second := createTestUser(t, "second", 0)

	phone := first.Phone
	_, err := svc.UpdateProfile(t.Context(), actorFor(second), service.UpdateProfileCommand{Phone: &phone})
	assert.ErrorIs(t, err, service.ErrUserExists)
}

func TestAdminUserDirectory(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	svc := newUserService(env)
	admin := createTestUser(t, "boss", 0)
	require.NoError(t, testDB.Model(admin).Update("role", models.RoleAdmin).Error)
	admin.Role = models.RoleAdmin
	member := createTestUser(t, "member", 0)

	_, err := svc.ListUsers(t.Context(), actorFor(member))
	assert.ErrorIs(t, err, service.ErrForbidden)

	users, err := svc.ListUsers(t.Context(), actorFor(admin))
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := svc.GetUser(t.Context(), actorFor(admin), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "member", got.Username)

	role := models.RoleAdmin
	promoted, err := svc.UpdateUser(t.Context(), actorFor(admin), member.ID, service.UpdateUserCommand{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	badRole := models.Role("owner")
	_, err = svc.UpdateUser(t.Context(), actorFor(admin), member.ID, service.UpdateUserCommand{Role: &badRole})
	assert.ErrorIs(t, err, service.ErrInvalidState)

	_, err = svc.GetUser(t.Context(), actorFor(admin), member.ID+99)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestDeleteUser_AdminOnlyAndNeverSelf(t *testing.T) {
	cleanTables()
	env := newTestEnv()
	svc := newUserService(env)
	admin := createTestUser(t, "boss", 0)
	require.NoError(t, testDB.Model(admin).Update("role", models.RoleAdmin).Error)
	admin.Role = models.RoleAdmin
	member := createTestUser(t, "member", 0)
	require.NoError(t, testDB.Create(&models.LicensePlate{
		UserID: member.ID, PlateNumber: "DEL-123", VehicleType: models.VehicleCompact,
	}).Error)

	err := svc.DeleteUser(t.Context(), actorFor(member), admin.ID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	err = svc.DeleteUser(t.Context(), actorFor(admin), admin.ID)
	assert.ErrorIs(t, err, service.ErrInvalidState)

	require.NoError(t, svc.DeleteUser(t.Context(), actorFor(admin), member.ID))

	var plates int64
	testDB.Model(&models.LicensePlate{}).Where("user_id = ?", member.ID).Count(&plates)
	assert.Equal(t, int64(0), plates)

	err = svc.DeleteUser(t.Context(), actorFor(admin), member.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
