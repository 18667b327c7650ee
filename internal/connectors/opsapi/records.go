package opsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go-itad-ops-dashboard/internal/reports"
)

// Raw record collection endpoints. Each returns either a bare JSON array or
// an envelope holding the array under items, data or results; both shapes
// are accepted.

func (c *Client) Shipments(ctx context.Context) ([]reports.Shipment, error) {
	var out []reports.Shipment
	if err := c.getCollection(ctx, "/shipments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProcessedMaterials(ctx context.Context) ([]reports.ProcessedMaterial, error) {
	var out []reports.ProcessedMaterial
	if err := c.getCollection(ctx, "/processedmaterials", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Assets(ctx context.Context) ([]reports.Asset, error) {
	var out []reports.Asset
	if err := c.getCollection(ctx, "/assets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProcessingLots(ctx context.Context) ([]reports.ProcessingLot, error) {
	var out []reports.ProcessingLot
	if err := c.getCollection(ctx, "/processinglots", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getCollection(ctx context.Context, path string, out any) error {
	body, err := c.getBody(ctx, path, nil)
	if err != nil {
		return err
	}
	if err := decodeCollection(body, out); err != nil {
		return fmt.Errorf("operations api path=%s: %w", path, err)
	}
	return nil
}

var envelopeKeys = []string{"items", "data", "results"}

func decodeCollection(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	for _, key := range envelopeKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		inner := bytes.TrimSpace(raw)
		if len(inner) == 0 || string(inner) == "null" {
			continue
		}
		return json.Unmarshal(inner, out)
	}
	return fmt.Errorf("collection envelope carries none of items/data/results")
}
