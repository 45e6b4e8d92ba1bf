package audit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRequestListVsRead(t *testing.T) {
	m := NewResourceMapper()

	resource, op, ok := m.MapRequest(http.MethodGet, "/api/v1/users")
	assert.True(t, ok)
	assert.Equal(t, "list", op)

	resource2, op2, ok2 := m.MapRequest(http.MethodGet, "/api/v1/users/42")
	assert.True(t, ok2)
	assert.Equal(t, "read", op2)
	assert.Equal(t, resource, resource2)
}

func TestMapRequestDetectsFullCRUD(t *testing.T) {
	m := NewResourceMapper()
	m.MapRequest(http.MethodGet, "/api/v1/orders")
	m.MapRequest(http.MethodGet, "/api/v1/orders/7")
	m.MapRequest(http.MethodPost, "/api/v1/orders")
	m.MapRequest(http.MethodPut, "/api/v1/orders/7")
	m.MapRequest(http.MethodDelete, "/api/v1/orders/7")

	assert.True(t, m.HasFullCRUD("/api/orders"))
}

func TestMapRequestSkipsStaticResources(t *testing.T) {
	m := NewResourceMapper()
	_, _, ok := m.MapRequest(http.MethodGet, "/static/app.css")
	assert.False(t, ok)
}

func TestMapRequestDetectsUUIDIdentifier(t *testing.T) {
	m := NewResourceMapper()
	resource, op, ok := m.MapRequest(http.MethodGet, "/accounts/550e8400-e29b-41d4-a716-446655440000")
	assert.True(t, ok)
	assert.Equal(t, "read", op)
	assert.Equal(t, "/accounts", resource)
}

func TestMapRequestNormalizesAPIVersions(t *testing.T) {
	m := NewResourceMapper()
	r1, _, _ := m.MapRequest(http.MethodGet, "/api/v1/products")
	r2, _, _ := m.MapRequest(http.MethodGet, "/api/v2/products")
	assert.Equal(t, r1, r2)
}
