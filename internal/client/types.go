package client

import (
	"time"

	"github.com/tempest-ops/opsdeck/internal/workflow"
)

// Item is an inventory item record from IMS.
type Item struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenantId"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UnitWeight  float64   `json:"unitWeight,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateItemRequest creates a new item in IMS.
type CreateItemRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	UnitWeight  float64 `json:"unitWeight,omitempty"`
}

// Order is an order record from OMS.
type Order struct {
	ID          int64           `json:"id"`
	TenantID    string          `json:"tenantId"`
	OrderNumber string          `json:"orderNumber"`
	Status      workflow.Status `json:"status"`
	CustomerID  string          `json:"customerId,omitempty"`
	WorkflowID  string          `json:"workflowId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderLine is a single line on an order.
type OrderLine struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"orderId"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status,omitempty"`
}

// CreateOrderRequest creates a new order in OMS.
type CreateOrderRequest struct {
	OrderNumber string                   `json:"orderNumber"`
	CustomerID  string                   `json:"customerId,omitempty"`
	Lines       []CreateOrderLineRequest `json:"lines"`
}

// CreateOrderLineRequest is one line of a CreateOrderRequest.
type CreateOrderLineRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Facility is a warehouse facility record from WMS.
type Facility struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"tenantId"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	FacilityType string    `json:"facilityType"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	Country      string    `json:"country,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Wave is a wave record from WMS. WorkflowID is empty until the wave has
// been released.
type Wave struct {
	ID         int64           `json:"id"`
	TenantID   string          `json:"tenantId"`
	FacilityID int64           `json:"facilityId"`
	WaveNumber string          `json:"waveNumber"`
	Status     workflow.Status `json:"status"`
	OrderIDs   []int64         `json:"orderIds,omitempty"`
	WorkflowID string          `json:"workflowId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// PickTask is a pick task belonging to a wave.
type PickTask struct {
	ID       int64  `json:"id"`
	WaveID   int64  `json:"waveId,omitempty"`
	OrderID  int64  `json:"orderId"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

// CreateWaveRequest creates a new wave in WMS.
type CreateWaveRequest struct {
	FacilityID int64   `json:"facilityId"`
	WaveNumber string  `json:"waveNumber"`
	OrderIDs   []int64 `json:"orderIds"`
}

// ReleaseWaveRequest carries the order details the wave workflow needs.
type ReleaseWaveRequest struct {
	Orders []WaveOrderDetail `json:"orders"`
}

// WaveOrderDetail is the OMS-sourced order data passed to the workflow on
// release.
type WaveOrderDetail struct {
	OrderID int64       `json:"orderId"`
	Lines   []OrderLine `json:"lines"`
}

// SelectRateRequest picks one carrier rate for a shipment.
type SelectRateRequest struct {
	Carrier      string `json:"carrier"`
	ServiceLevel string `json:"serviceLevel"`
}

// ShipmentState tracks one shipment's progress inside a wave workflow.
// Status is one of CREATED, RATE_SELECTED, LABEL_GENERATED, SHIPPED.
type ShipmentState struct {
	ShipmentID     int64  `json:"shipmentId"`
	OrderID        int64  `json:"orderId"`
	Status         string `json:"status"`
	Carrier        string `json:"carrier,omitempty"`
	ServiceLevel   string `json:"serviceLevel,omitempty"`
	TrackingNumber string `json:"trackingNumber,omitempty"`
	LabelURL       string `json:"labelUrl,omitempty"`
}

// ShipmentStatesResponse maps shipment ID to its workflow state.
type ShipmentStatesResponse struct {
	Shipments map[int64]ShipmentState `json:"shipments"`
}

// CarrierRate is one shipping rate option.
type CarrierRate struct {
	Carrier           string  `json:"carrier"`
	ServiceLevel      string  `json:"serviceLevel"`
	Price             float64 `json:"price"`
	EstimatedDelivery string  `json:"estimatedDelivery,omitempty"`
}

// FetchedRates is the rate-shopping state for one shipment. Status and the
// per-carrier statuses are PENDING, FETCHING, COMPLETED or FAILED.
type FetchedRates struct {
	ShipmentID   int64         `json:"shipmentId"`
	Status       string        `json:"status"`
	Rates        []CarrierRate `json:"rates,omitempty"`
	USPSStatus   string        `json:"uspsStatus,omitempty"`
	UPSStatus    string        `json:"upsStatus,omitempty"`
	FedExStatus  string        `json:"fedexStatus,omitempty"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

// Shipment is a shipment record from SMS.
type Shipment struct {
	ID             int64     `json:"id"`
	TenantID       string    `json:"tenantId"`
	OrderID        int64     `json:"orderId"`
	Status         string    `json:"status"`
	Carrier        string    `json:"carrier,omitempty"`
	ServiceLevel   string    `json:"serviceLevel,omitempty"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Parcel is a physical package within a shipment.
type Parcel struct {
	ID         int64   `json:"id"`
	ShipmentID int64   `json:"shipmentId"`
	Weight     float64 `json:"weight,omitempty"`
	Length     float64 `json:"length,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
}
