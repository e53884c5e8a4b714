package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mbnr/matrimonial/internal/handlers"
	"github.com/mbnr/matrimonial/internal/models"
	"github.com/mbnr/matrimonial/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser_Self(t *testing.T) {
	user := handlers.NewTestUser("u1", models.RoleUser)
	mockService := &handlers.MockUserService{
		GetUserByIDFunc: func(ctx context.Context, requester *models.User, id string) (*models.User, error) {
			return requester, nil
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := httptest.NewRequest(http.MethodGet, "/users/u1", nil)
	req = handlers.WithCurrentUser(req, user)
	req = handlers.WithURLParams(req, map[string]string{"id": "u1"})

	w := httptest.NewRecorder()
	handler.GetUser(w, req)

	var resp services.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "u1", resp.ID)
	assert.Equal(t, models.RoleUser, resp.Role)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetUser_Forbidden(t *testing.T) {
	mockService := &handlers.MockUserService{
		GetUserByIDFunc: func(ctx context.Context, requester *models.User, id string) (*models.User, error) {
			return nil, models.ErrNotSelfOrAdmin
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := httptest.NewRequest(http.MethodGet, "/users/u2", nil)
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("u1", models.RoleUser))
	req = handlers.WithURLParams(req, map[string]string{"id": "u2"})

	w := httptest.NewRecorder()
	handler.GetUser(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
}

func TestGetUser_NotFound(t *testing.T) {
	handler := handlers.NewUserHandler(&handlers.MockUserService{})
	req := httptest.NewRequest(http.MethodGet, "/users/missing", nil)
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("a1", models.RoleAdmin))
	req = handlers.WithURLParams(req, map[string]string{"id": "missing"})

	w := httptest.NewRecorder()
	handler.GetUser(w, req)

	resp := handlers.AssertErrorResponse(t, w, http.StatusNotFound, "not_found")
	assert.Equal(t, "user not found", resp.Message)
}

func TestListUsers_Pagination(t *testing.T) {
	var gotPage, gotLimit int
	mockService := &handlers.MockUserService{
		ListUsersFunc: func(ctx context.Context, page, limit int) (*services.UserPage, error) {
			gotPage, gotLimit = page, limit
			return &services.UserPage{
				Users: []*models.User{handlers.NewTestUser("u1", models.RoleUser), handlers.NewTestUser("u2", models.RoleAgent)},
				Page:  models.NewPage(page, limit, 12),
			}, nil
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := httptest.NewRequest(http.MethodGet, "/users?page=2&limit=5", nil)
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("a1", models.RoleAdmin))

	w := httptest.NewRecorder()
	handler.ListUsers(w, req)

	var resp handlers.ListUsersResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, 2, gotPage)
	assert.Equal(t, 5, gotLimit)
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, 3, resp.Pages)
	assert.Equal(t, 12, resp.Total)
}

func TestUpdateUser_Success(t *testing.T) {
	var got services.UserUpdate
	mockService := &handlers.MockUserService{
		UpdateUserFunc: func(ctx context.Context, requester *models.User, id string, upd services.UserUpdate) (*models.User, error) {
			got = upd
			u := handlers.NewTestUser(id, models.RoleUser)
			u.Name = *upd.Name
			return u, nil
		},
	}

	handler := handlers.NewUserHandler(mockService)
	name := "Asha Rao"
	dob := "1994-01-31"
	req := handlers.NewTestRequest(t, http.MethodPut, "/users/u1", handlers.UpdateUserRequest{Name: &name, DOB: &dob})
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("u1", models.RoleUser))
	req = handlers.WithURLParams(req, map[string]string{"id": "u1"})

	w := httptest.NewRecorder()
	handler.UpdateUser(w, req)

	var resp services.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.Equal(t, "Asha Rao", resp.Name)
	assert.Nil(t, got.Gender)
	require.NotNil(t, got.DOB)
	assert.Equal(t, 31, got.DOB.Day())
}

func TestUpdateUser_RoleIsNotUpdatable(t *testing.T) {
	var called bool
	mockService := &handlers.MockUserService{
		UpdateUserFunc: func(ctx context.Context, requester *models.User, id string, upd services.UserUpdate) (*models.User, error) {
			called = true
			return handlers.NewTestUser(id, models.RoleUser), nil
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := handlers.NewTestRequest(t, http.MethodPut, "/users/u1", map[string]string{"userType": "admin"})
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("u1", models.RoleUser))
	req = handlers.WithURLParams(req, map[string]string{"id": "u1"})

	w := httptest.NewRecorder()
	handler.UpdateUser(w, req)

	var resp services.UserResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, called)
	assert.Equal(t, models.RoleUser, resp.Role)
}

func TestDeleteUser_Success(t *testing.T) {
	var gotID string
	mockService := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, requester *models.User, id string) error {
			gotID = id
			return nil
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := httptest.NewRequest(http.MethodDelete, "/users/u1", nil)
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("u1", models.RoleUser))
	req = handlers.WithURLParams(req, map[string]string{"id": "u1"})

	w := httptest.NewRecorder()
	handler.DeleteUser(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "u1", gotID)
}

func TestDeleteUser_AdminAccount(t *testing.T) {
	mockService := &handlers.MockUserService{
		DeleteUserFunc: func(ctx context.Context, requester *models.User, id string) error {
			return models.ErrAdminUndeletable
		},
	}

	handler := handlers.NewUserHandler(mockService)
	req := httptest.NewRequest(http.MethodDelete, "/users/a2", nil)
	req = handlers.WithCurrentUser(req, handlers.NewTestUser("a1", models.RoleAdmin))
	req = handlers.WithURLParams(req, map[string]string{"id": "a2"})

	w := httptest.NewRecorder()
	handler.DeleteUser(w, req)

	resp := handlers.AssertErrorResponse(t, w, http.StatusForbidden, "forbidden")
	assert.Equal(t, models.ErrAdminUndeletable.Msg, resp.Message)
}
