package gateway

import (
	"net/http"

	"github.com/example/shopfront/pkg/service"
	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	CartID    uint `json:"cart_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type removeItemRequest struct {
	CartID    uint `json:"cart_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
}

// @Summary  Create the cart of a user
// @Tags     cart
// @Produce  json
// @Param    userId path int true "User ID"
// @Success  201 {object} Response{body=models.Cart}
// @Failure  409 {object} Response
// @Security BearerAuth
// @Router   /cart/{userId} [post]
func (g *Gateway) createCart(c *gin.Context) {
	userID, err := idParam(c, "userId")
	if err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.Create(c.Request.Context(), userID)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Cart created successfully", cart)
}

// addToCart godoc
// @Summary  Add a product to a cart
// @Description Debits the requested quantity from the product's stock.
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cartItemRequest true "Line"
// @Success  200 {object} Response{body=models.Cart}
// @Failure  400 {object} Response
// @Security BearerAuth
// @Router   /cart/add [post]
func (g *Gateway) addToCart(c *gin.Context) {
	var req cartItemRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.AddItem(c.Request.Context(), service.CartItemInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product added to cart", cart)
}

// @Summary  Set the quantity of a cart line
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body cartItemRequest true "Line"
// @Success  200 {object} Response{body=models.Cart}
// @Security BearerAuth
// @Router   /cart/update [put]
func (g *Gateway) updateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.UpdateItem(c.Request.Context(), service.CartItemInput(req))
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product quantity updated successfully", cart)
}

// @Summary  Remove a product from a cart
// @Tags     cart
// @Accept   json
// @Produce  json
// @Param    body body removeItemRequest true "Line"
// @Success  200 {object} Response{body=models.Cart}
// @Security BearerAuth
// @Router   /cart/remove [delete]
func (g *Gateway) removeFromCart(c *gin.Context) {
	var req removeItemRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.RemoveItem(c.Request.Context(), req.CartID, req.ProductID)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Product removed from cart", cart)
}

// @Summary  Get the cart of a user
// @Tags     cart
// @Produce  json
// @Param    userId path int true "User ID"
// @Success  200 {object} Response{body=models.Cart}
// @Security BearerAuth
// @Router   /cart/{userId} [get]
func (g *Gateway) getUserCart(c *gin.Context) {
	userID, err := idParam(c, "userId")
	if err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.GetByUser(c.Request.Context(), userID)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// @Summary  Get a cart by id
// @Tags     cart
// @Produce  json
// @Param    cartId path int true "Cart ID"
// @Success  200 {object} Response{body=models.Cart}
// @Security BearerAuth
// @Router   /cart/cartId/{cartId} [get]
func (g *Gateway) getCart(c *gin.Context) {
	cartID, err := idParam(c, "cartId")
	if err != nil {
		g.fail(c, err)
		return
	}

	cart, err := g.services.Carts.Get(c.Request.Context(), cartID)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// @Summary  List carts
// @Tags     cart
// @Produce  json
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /cart [get]
func (g *Gateway) listCarts(c *gin.Context) {
	page, err := bindPage(c)
	if err != nil {
		g.fail(c, err)
		return
	}

	carts, total, err := g.services.Carts.List(c.Request.Context(), page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Carts retrieved successfully", newListBody(carts, total, page))
}

// @Summary  Delete a cart
// @Description Credits every line's quantity back to stock.
// @Tags     cart
// @Param    cartId path int true "Cart ID"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /cart/{cartId} [delete]
func (g *Gateway) deleteCart(c *gin.Context) {
	cartID, err := idParam(c, "cartId")
	if err != nil {
		g.fail(c, err)
		return
	}

	if err := g.services.Carts.Delete(c.Request.Context(), cartID); err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Cart deleted successfully", nil)
}
