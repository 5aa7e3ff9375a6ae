package client

import (
	"context"
	"fmt"
	"net/url"
)

// IMS is the inventory management service client.
type IMS struct {
	c *Client
}

// NewIMS builds an IMS client.
func NewIMS(opts Options) (*IMS, error) {
	opts.Service = "ims"
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	return &IMS{c: c}, nil
}

// ListItems returns all items for the tenant.
func (i *IMS) ListItems(ctx context.Context) ([]Item, error) {
	var items []Item
	if err := i.c.get(ctx, "/api/items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem returns one item by ID.
func (i *IMS) GetItem(ctx context.Context, id int64) (Item, error) {
	var item Item
	err := i.c.get(ctx, fmt.Sprintf("/api/items/%d", id), &item)
	return item, err
}

// GetItemBySKU returns one item by SKU.
func (i *IMS) GetItemBySKU(ctx context.Context, sku string) (Item, error) {
	var item Item
	err := i.c.get(ctx, "/api/items/sku/"+url.PathEscape(sku), &item)
	return item, err
}

// SearchItems returns items matching the query string.
func (i *IMS) SearchItems(ctx context.Context, query string) ([]Item, error) {
	var items []Item
	path := "/api/items/search?q=" + url.QueryEscape(query)
	if err := i.c.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateItem creates a new item.
func (i *IMS) CreateItem(ctx context.Context, req CreateItemRequest) (Item, error) {
	var item Item
	err := i.c.post(ctx, "/api/items", req, &item)
	return item, err
}
