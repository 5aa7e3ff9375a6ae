package client

import (
	"context"
	"fmt"
)

// SMS is the shipment management service client.
type SMS struct {
	c *Client
}

// NewSMS builds an SMS client.
func NewSMS(opts Options) (*SMS, error) {
	opts.Service = "sms"
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &SMS{c: c}, nil
}

// ListShipments returns all shipments for the tenant.
func (s *SMS) ListShipments(ctx context.Context) ([]Shipment, error) {
	var shipments []Shipment
	if err := s.c.get(ctx, "/api/shipments", &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// GetShipment returns one shipment by ID.
func (s *SMS) GetShipment(ctx context.Context, id int64) (Shipment, error) {
	var sh Shipment
	err := s.c.get(ctx, fmt.Sprintf("/api/shipments/%d", id), &sh)
	return sh, err
}

// GetShipmentsByOrder returns the shipments belonging to an order.
func (s *SMS) GetShipmentsByOrder(ctx context.Context, orderID int64) ([]Shipment, error) {
	var shipments []Shipment
	if err := s.c.get(ctx, fmt.Sprintf("/api/orders/%d/shipments", orderID), &shipments); err != nil {
		return nil, err
	}
	return shipments, nil
}

// GetParcels returns the parcels of a shipment.
func (s *SMS) GetParcels(ctx context.Context, shipmentID int64) ([]Parcel, error) {
	var parcels []Parcel
	if err := s.c.get(ctx, fmt.Sprintf("/api/shipments/%d/parcels", shipmentID), &parcels); err != nil {
		return nil, err
	}
	return parcels, nil
}
