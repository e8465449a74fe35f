package gateway

import (
	"net/http"

	"github.com/example/shopfront/pkg/apperror"
	"github.com/example/shopfront/pkg/repository"
	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	UserID uint `json:"user_id" binding:"required"`
	CartID uint `json:"cart_id" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type applyCouponRequest struct {
	OrderID    uint   `json:"order_id" binding:"required"`
	CouponCode string `json:"coupon_code" binding:"required"`
}

type ordersQuery struct {
	UserID   uint `form:"userId"`
	Page     int  `form:"page" binding:"omitempty,min=1"`
	PageSize int  `form:"page_size" binding:"omitempty,min=1"`
}

// createOrder godoc
// @Summary  Create an order from a cart
// @Description Snapshots every cart line at the product's current price.
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body createOrderRequest true "Order"
// @Success  201 {object} Response{body=models.Order}
// @Failure  400 {object} Response
// @Failure  404 {object} Response
// @Security BearerAuth
// @Router   /orders [post]
func (g *Gateway) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	order, err := g.services.Orders.Create(c.Request.Context(), req.UserID, req.CartID)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", order)
}

// @Summary  List orders, optionally for one user
// @Tags     orders
// @Produce  json
// @Param    userId    query int false "User ID"
// @Param    page      query int false "Page number"
// @Param    page_size query int false "Page size"
// @Success  200 {object} Response
// @Security BearerAuth
// @Router   /orders [get]
func (g *Gateway) listOrders(c *gin.Context) {
	var q ordersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		g.fail(c, apperror.Validation("invalid query: %v", err))
		return
	}
	page := repository.Page{Number: q.Page, Size: q.PageSize}

	orders, total, err := g.services.Orders.List(c.Request.Context(), q.UserID, page)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved successfully", newListBody(orders, total, page))
}

// @Summary  Get an order
// @Tags     orders
// @Produce  json
// @Param    orderId path int true "Order ID"
// @Success  200 {object} Response{body=models.Order}
// @Failure  404 {object} Response
// @Security BearerAuth
// @Router   /orders/{orderId} [get]
func (g *Gateway) getOrder(c *gin.Context) {
	id, err := idParam(c, "orderId")
	if err != nil {
		g.fail(c, err)
		return
	}

	order, err := g.services.Orders.Get(c.Request.Context(), id)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved successfully", order)
}

// @Summary  Set the status of an order
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    orderId path int                 true "Order ID"
// @Param    body    body updateStatusRequest true "Status"
// @Success  200 {object} Response{body=models.Order}
// @Security BearerAuth
// @Router   /orders/{orderId}/status [put]
func (g *Gateway) updateOrderStatus(c *gin.Context) {
	id, err := idParam(c, "orderId")
	if err != nil {
		g.fail(c, err)
		return
	}
	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	order, err := g.services.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}

// applyCoupon godoc
// @Summary  Apply a coupon to an order
// @Description Rejected once the order is DISCOUNTED or PROCESSED.
// @Tags     orders
// @Accept   json
// @Produce  json
// @Param    body body applyCouponRequest true "Coupon"
// @Success  200 {object} Response{body=models.Order}
// @Failure  400 {object} Response
// @Failure  404 {object} Response
// @Security BearerAuth
// @Router   /orders/apply-coupon [post]
func (g *Gateway) applyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := bindJSON(c, &req); err != nil {
		g.fail(c, err)
		return
	}

	order, err := g.services.Orders.ApplyCoupon(c.Request.Context(), req.OrderID, req.CouponCode)
	if err != nil {
		g.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Coupon applied", order)
}
