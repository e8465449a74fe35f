package gateway

import (
	"net/http"

	"github.com/example/shopfront/pkg/service"
	"github.com/gin-gonic/gin"
)

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Address  *string `json:"address"`
}

// signUp godoc
// @Summary  Register a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body signUpRequest true "New user"
// @Success  201 {object} Response{body=models.User}
// @Failure  400 {object} Response
// @Failure  409 {object} Response
// @Router   /users/auth/signup [post]
func (g *Gateway) signUp(c *gin.Context) {
	var req signUpRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	user, err := g.services.Accounts.SignUp(c.Request.Context(), service.SignUpInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "User created successfully", user)
}

// signIn godoc
// @Summary  Sign in and receive a bearer token
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    body body signInRequest true "Credentials"
// @Success  200 {object} Response{body=service.Session}
// @Failure  401 {object} Response
// @Router   /users/auth/login [post]
func (g *Gateway) signIn(c *gin.Context) {
	var req signInRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	session, err := g.services.Accounts.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User signed in successfully", session)
}

// @Summary  List users
// @Tags     users
// @Produce  json
// @Param    page      query int false "Page number"
// @Param    page_size query int false "Page size"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /users [get]
func (g *Gateway) listUsers(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		g.fail(c, err)
		return
	}

	users, total, err := g.services.Accounts.List(c.Request.Context(), page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved successfully", newListBody(users, total, page))
}

// @Summary  Get a user
// @Tags     users
// @Produce  json
// @Param    id path int true "User ID"
// @Success  200 {object} Response{body=models.User}
// @Failure  404 {object} Response
// @Security BearerAuth
// @Router   /users/{id} [get]
func (g *Gateway) getUser(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}

	user, err := g.services.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User retrieved successfully", user)
}

// @Summary  Update a user
// @Tags     users
// @Accept   json
// @Produce  json
// @Param    id   path int               true "User ID"
// @Param    body body updateUserRequest true "Fields to change"
// @Success  200 {object} Response{body=models.User}
// @Security BearerAuth
// @Router   /users/{id} [put]
func (g *Gateway) updateUser(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	user, err := g.services.Accounts.Update(c.Request.Context(), id, service.UpdateUserInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User updated successfully", user)
}

// @Summary  Delete a user
// @Tags     users
// @Param    id path int true "User ID"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /users/{id} [delete]
func (g *Gateway) deleteUser(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}

	if err := g.services.Accounts.Delete(c.Request.Context(), id); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "User deleted successfully", nil)
}

// @Summary  Order history of a user
// @Tags     users
// @Produce  json
// @Param    id path int true "User ID"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /users/{id}/orders [get]
func (g *Gateway) userOrders(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		g.fail(c, err)
		return
	}
	page, err := bindPage(c)
	if err != nil {
		g.fail(c, err)
		return
	}

	orders, total, err := g.services.Accounts.Orders(c.Request.Context(), id, page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order history retrieved successfully", newListBody(orders, total, page))
}
