package mcptool

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAuthorization is returned when a binding is constructed without
// authorization material. This is fatal at startup: a binding must never
// exist in a state that would silently omit authentication.
var ErrMissingAuthorization = errors.New("missing authorization expression for hosted MCP tool")

// Gmail connector identity.
const (
	GmailServerLabel       = "gmail"
	GmailConnectorID       = "connector_gmail"
	GmailServerDescription = "NF AGENT"
)

// gmailAllowedTools is the fixed allow-list of remote Gmail operations.
// Anything outside this list must be rejected by the execution engine; the
// agent is never granted arbitrary connector operations.
var gmailAllowedTools = []string{
	"batch_read_email",
	"get_profile",
	"get_recent_emails",
	"read_email",
	"search_email_ids",
	"search_emails",
}

// Authorization is the structured authorization payload carried on a binding.
// It wraps an expression (e.g. a CEL expression yielding an OAuth bearer
// token), never a raw secret embedded in source.
type Authorization struct {
	Expression string `json:"expression"`
	Format     string `json:"format"`
}

// Binding describes one hosted MCP capability the agent may use.
// It is constructed once at process start and immutable thereafter; concurrent
// runs share it without synchronization.
type Binding struct {
	serverLabel       string
	serverDescription string
	connectorID       string
	allowedTools      []string
	authorization     Authorization
	requireApproval   string
}

// NewGmailBinding builds the binding for the hosted Gmail connector.
// The authorization expression must be non-empty; construction fails fast
// otherwise so misconfiguration surfaces before any run is accepted.
func NewGmailBinding(authorizationExpression string) (*Binding, error) {
	if authorizationExpression == "" {
		return nil, ErrMissingAuthorization
	}

	return &Binding{
		serverLabel:       GmailServerLabel,
		serverDescription: GmailServerDescription,
		connectorID:       GmailConnectorID,
		allowedTools:      append([]string(nil), gmailAllowedTools...),
		authorization: Authorization{
			Expression: authorizationExpression,
			Format:     "cel",
		},
		requireApproval: "never",
	}, nil
}

// ServerLabel returns the stable identifier of the bound connector.
func (b *Binding) ServerLabel() string {
	return b.serverLabel
}

// ConnectorID returns the hosted connector identifier.
func (b *Binding) ConnectorID() string {
	return b.connectorID
}

// AllowedTools returns a copy of the operation allow-list.
func (b *Binding) AllowedTools() []string {
	return append([]string(nil), b.allowedTools...)
}

// toolPayload is the wire form of a hosted MCP tool in an engine request.
type toolPayload struct {
	Type              string   `json:"type"`
	ServerLabel       string   `json:"server_label"`
	ServerDescription string   `json:"server_description,omitempty"`
	ConnectorID       string   `json:"connector_id"`
	AllowedTools      []string `json:"allowed_tools"`
	// Authorization is serialized as a JSON string per the hosted-MCP contract.
	Authorization   string `json:"authorization"`
	RequireApproval string `json:"require_approval"`
}

// MarshalJSON renders the binding as the hosted MCP tool payload consumed by
// the execution engine.
func (b *Binding) MarshalJSON() ([]byte, error) {
	auth, err := json.Marshal(b.authorization)
	if err != nil {
		return nil, fmt.Errorf("encode authorization payload: %w", err)
	}

	return json.Marshal(toolPayload{
		Type:              "mcp",
		ServerLabel:       b.serverLabel,
		ServerDescription: b.serverDescription,
		ConnectorID:       b.connectorID,
		AllowedTools:      b.allowedTools,
		Authorization:     string(auth),
		RequireApproval:   b.requireApproval,
	})
}

// String implements fmt.Stringer without exposing authorization material.
func (b *Binding) String() string {
	return fmt.Sprintf("mcptool.Binding{server_label=%s connector_id=%s tools=%d}",
		b.serverLabel, b.connectorID, len(b.allowedTools))
}
