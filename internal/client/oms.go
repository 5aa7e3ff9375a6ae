package client

import (
	"context"
	"fmt"

	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// OMS is the order management service client.
type OMS struct {
	c *Client
}

// NewOMS builds an OMS client.
func NewOMS(opts Options) (*OMS, error) {
	opts.Service = "oms"
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &OMS{c: c}, nil
}

// ListOrders returns all orders for the tenant.
func (o *OMS) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := o.c.get(ctx, "/api/orders", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order by ID.
func (o *OMS) GetOrder(ctx context.Context, id int64) (Order, error) {
	var order Order
	err := o.c.get(ctx, fmt.Sprintf("/api/orders/%d", id), &order)
	return order, err
}

// GetOrderLines returns the lines of an order.
func (o *OMS) GetOrderLines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	var lines []OrderLine
	if err := o.c.get(ctx, fmt.Sprintf("/api/orders/%d/lines", orderID), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// CreateOrder creates a new order.
func (o *OMS) CreateOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	var order Order
	err := o.c.post(ctx, "/api/orders", req, &order)
	return order, err
}

// GetWorkflowStatus returns the fulfillment workflow status for an order.
func (o *OMS) GetWorkflowStatus(ctx context.Context, orderID int64) (workflow.WorkflowStatus, error) {
	var ws workflow.WorkflowStatus
	err := o.c.get(ctx, fmt.Sprintf("/api/orders/%d/status", orderID), &ws)
	return ws, err
}

// CancelOrder cancels an order with a reason.
func (o *OMS) CancelOrder(ctx context.Context, orderID int64, reason string) (Order, error) {
	var order Order
	err := o.c.del(ctx, fmt.Sprintf("/api/orders/%d?reason=%s", orderID, queryEscape(reason)), &order)
	return order, err
}
