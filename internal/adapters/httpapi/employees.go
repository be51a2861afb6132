package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ogurasousui/codex-directory-client/internal/core/employee"
)

// EmployeeGateway は社員エンドポイントに対する employee.Gateway の実装です。
type EmployeeGateway struct {
	c *Client
}

var _ employee.Gateway = (*EmployeeGateway)(nil)

// NewEmployeeGateway は EmployeeGateway を生成します。
func NewEmployeeGateway(c *Client) *EmployeeGateway {
	return &EmployeeGateway{c: c}
}

// List は GET /employees を呼び出します。
func (g *EmployeeGateway) List(ctx context.Context) ([]employee.Employee, error) {
	var raw json.RawMessage
	if _, err := g.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/employees",
		path:   "/employees",
		out:    &raw,
		auth:   true,
	}); err != nil {
		return nil, err
	}
	return decodeEmployeeList(raw)
}

// Get は GET /employees/:id を呼び出します。
func (g *EmployeeGateway) Get(ctx context.Context, id employee.ID) (*employee.Employee, error) {
	var out employee.Employee
	if _, err := g.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/employees/:id",
		path:   employeePath(id),
		out:    &out,
		auth:   true,
	}); err != nil {
		return nil, err
	}
	return record(out), nil
}

// Create は POST /employees を呼び出します。
func (g *EmployeeGateway) Create(ctx context.Context, in employee.CreateInput) (*employee.Employee, error) {
	var out employee.Employee
	if _, err := g.c.do(ctx, call{
		method: http.MethodPost,
		route:  "/employees",
		path:   "/employees",
		body:   in,
		out:    &out,
		auth:   true,
	}); err != nil {
		return nil, err
	}
	return record(out), nil
}

// Update は PUT /employees/:id を呼び出します。指定されたフィールドのみ送信します。
func (g *EmployeeGateway) Update(ctx context.Context, id employee.ID, in employee.UpdateInput) (*employee.Employee, error) {
	var out employee.Employee
	if _, err := g.c.do(ctx, call{
		method: http.MethodPut,
		route:  "/employees/:id",
		path:   employeePath(id),
		body:   in,
		out:    &out,
		auth:   true,
	}); err != nil {
		return nil, err
	}
	return record(out), nil
}

// Delete は DELETE /employees/:id を呼び出します。本文が空の応答も成功として扱います。
func (g *EmployeeGateway) Delete(ctx context.Context, id employee.ID) (*employee.DeleteResult, error) {
	var out employee.DeleteResult
	if _, err := g.c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/employees/:id",
		path:   employeePath(id),
		out:    &out,
		auth:   true,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// record は本文が空、または id を持たない応答を nil として返します。
func record(out employee.Employee) *employee.Employee {
	if out.ID == "" {
		return nil
	}
	return &out
}

func employeePath(id employee.ID) string {
	return "/employees/" + url.PathEscape(id.String())
}

// decodeEmployeeList は配列、または data / employees フィールドに配列を持つオブジェクトを受け付けます。
func decodeEmployeeList(raw json.RawMessage) ([]employee.Employee, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []employee.Employee{}, nil
	}

	var list []employee.Employee
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("httpapi: decode employee list: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Data      []employee.Employee `json:"data"`
		Employees []employee.Employee `json:"employees"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("httpapi: decode employee list: %w", err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	if wrapped.Employees != nil {
		return wrapped.Employees, nil
	}
	return []employee.Employee{}, nil
}
