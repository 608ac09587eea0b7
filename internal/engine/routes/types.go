// # internal/engine/routes/types.go
package routes

// RawRouteNode is the dialect-neutral form of one route declaration
// before flattening. A node with neither a path nor children carries no
// information and is dropped by the front-ends.
type RawRouteNode struct {
	Path      string
	HasPath   bool
	Redirect  string
	Component *ComponentRef
	Children  []*RawRouteNode
	Line      int
}

// ComponentRef points at the screen implementation a route renders.
// File is the resolved source path when the import could be located,
// otherwise only the bare identifier name is kept.
type ComponentRef struct {
	Name string
	File string
}

// IsPureRedirect reports a node that only forwards elsewhere: it stays in
// the raw tree but yields no screen of its own.
func (n *RawRouteNode) IsPureRedirect() bool {
	return n.Redirect != "" && n.Component == nil
}

type DiagnosticKind string

const (
	DiagnosticSpread  DiagnosticKind = "spread"
	DiagnosticGeneral DiagnosticKind = "general"
)

// FailureReason is the fixed vocabulary for unresolved spreads.
type FailureReason string

const (
	ReasonFunctionCall          FailureReason = "function-call"
	ReasonIdentifierNotFound    FailureReason = "identifier-not-found"
	ReasonDepthLimit            FailureReason = "max-depth-exceeded"
	ReasonFileNotFound          FailureReason = "file-not-found"
	ReasonFileUnreadable        FailureReason = "file-unreadable"
	ReasonImportParseFailure    FailureReason = "imported-file-unparseable"
	ReasonExportNotFound        FailureReason = "export-not-found"
	ReasonUnsupportedExpression FailureReason = "unsupported-expression"
)

// Diagnostic records a non-fatal analysis gap or policy skip. Diagnostics
// accumulate in source order and never abort a parse.
type Diagnostic struct {
	Kind       DiagnosticKind
	Message    string
	Identifier string
	Line       int

	// Spread diagnostics only.
	Resolved bool
	Reason   FailureReason
}
