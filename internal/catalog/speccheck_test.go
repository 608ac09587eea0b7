// # internal/catalog/speccheck_test.go
package catalog

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invoiceSpec = `
openapi: 3.0.0
info:
  title: Billing
  version: "1.0"
tags:
  - name: InvoiceAPI
paths:
  /invoices/{id}:
    get:
      operationId: getDetail
      tags: [InvoiceAPI]
      responses:
        "200":
          description: ok
  /users:
    get:
      operationId: listUsers
      responses:
        "200":
          description: ok
`

func loadTestSpec(t *testing.T) *openapi3.T {
	t.Helper()
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(invoiceSpec))
	require.NoError(t, err)
	return doc
}

func TestKnownAPINames(t *testing.T) {
	names := KnownAPINames(loadTestSpec(t))
	assert.Contains(t, names, "InvoiceAPI")
	assert.Contains(t, names, "getDetail")
	assert.Contains(t, names, "InvoiceAPI.getDetail")
	assert.Contains(t, names, "listUsers")
}

func TestValidateDependencies(t *testing.T) {
	known := KnownAPINames(loadTestSpec(t))
	cat := &Catalog{Screens: []Screen{
		{ID: "invoices.id", DependsOn: []string{"InvoiceAPI.getDetail"}},
		{ID: "users", DependsOn: []string{"listUsers", "PaymentAPI"}},
	}}

	issues := ValidateDependencies(cat, known)
	require.Len(t, issues, 1)
	assert.Equal(t, "users", issues[0].ScreenID)
	assert.Equal(t, "PaymentAPI", issues[0].Dependency)
	assert.Contains(t, issues[0].String(), "PaymentAPI")
}

func TestNamesMatch(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"InvoiceAPI", "InvoiceAPI", true},
		{"InvoiceAPI", "InvoiceAPI.getDetail", true},
		{"InvoiceAPI.getDetail", "InvoiceAPI", true},
		{"UserAPI", "InvoiceAPI", false},
		// A bare string prefix is not containment.
		{"InvoiceAPI", "InvoiceAPI2", false},
		{"InvoiceAPI2", "InvoiceAPI", false},
		{"InvoiceAPI.get", "InvoiceAPI.getDetail", false},
	}
	for _, tc := range cases {
		if got := NamesMatch(tc.a, tc.b); got != tc.want {
			t.Errorf("NamesMatch(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
