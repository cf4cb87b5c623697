// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"

	"github.com/jeranaias/procur-tui/internal/model"
)

// =============================================================================
// SUPPLIER PORTAL OPERATIONS
// =============================================================================

// SupplierLogin authenticates a supplier by email and returns the bearer
// token for subsequent portal calls. The token is also installed on the
// client.
func (c *Client) SupplierLogin(ctx context.Context, email string) (string, error) {
	var out struct {
		Token        string `json:"token"`
		SupplierName string `json:"supplier_name,omitempty"`
	}
	body := map[string]string{"email": email}
	if err := c.post(ctx, "/supplier/login", body, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// SupplierRequests returns all requests addressed to the supplier.
func (c *Client) SupplierRequests(ctx context.Context) ([]model.SupplierRequest, error) {
	var out struct {
		Requests []model.SupplierRequest `json:"requests"`
	}
	if err := c.get(ctx, "/supplier/requests", &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// PendingRequests returns only requests still awaiting a response.
func (c *Client) PendingRequests(ctx context.Context) ([]model.SupplierRequest, error) {
	var out struct {
		Requests []model.SupplierRequest `json:"requests"`
	}
	if err := c.get(ctx, "/supplier/requests/pending", &out); err != nil {
		return nil, err
	}
	return out.Requests, nil
}

// RequestDetail returns a single request by ID.
func (c *Client) RequestDetail(ctx context.Context, requestID string) (*model.SupplierRequest, error) {
	var out model.SupplierRequest
	if err := c.get(ctx, "/supplier/requests/"+requestID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitResponse records the supplier's answer to a request.
func (c *Client) SubmitResponse(ctx context.Context, requestID string, resp model.SupplierResponse) error {
	return c.post(ctx, "/supplier/requests/"+requestID+"/respond", resp, nil)
}

// ResumeWorkflow asks the backend to resume the buyer's paused workflow
// for the given request. requestID is the real pending-request identifier
// from the request list, never a placeholder.
func (c *Client) ResumeWorkflow(ctx context.Context, requestID string) error {
	return c.post(ctx, "/supplier/requests/"+requestID+"/resume-workflow", nil, nil)
}

// Notifications returns the supplier's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var out struct {
		Notifications []model.Notification `json:"notifications"`
	}
	if err := c.get(ctx, "/supplier/notifications", &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return c.post(ctx, "/supplier/notifications/"+notificationID+"/mark-read", nil, nil)
}
