package a2a

import (
	"encoding/json"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
)

// WrapEnvelope wraps a single A2UI envelope as an A2A DataPart (spec §4.9
// "parts: [{data: <envelope>, metadata: {mimeType: application/json+a2ui}}]").
func WrapEnvelope(role MessageRole, env map[string]interface{}) Message {
	return Message{
		Role: role,
		Parts: []Part{{
			Type: PartData,
			Data: env,
			Metadata: map[string]interface{}{
				"mimeType": a2ui.MIMEType,
			},
		}},
	}
}

// WrapClientEvent wraps an outbound client action/error envelope together
// with the negotiated client capabilities and optional data broadcast
// (spec §4.9 "Client-sent messages additionally include
// metadata.a2uiClientCapabilities ... and optional
// metadata.a2uiDataBroadcast").
func WrapClientEvent(env map[string]interface{}, caps a2ui.ClientCapabilities, broadcast map[string]interface{}) Message {
	metadata := map[string]interface{}{
		"mimeType": a2ui.MIMEType,
		"a2uiClientCapabilities": map[string]interface{}{
			"supportedCatalogIds": caps.SupportedCatalogIDs,
			"inlineCatalogs":      caps.InlineCatalogs,
		},
	}
	if broadcast != nil {
		metadata["a2uiDataBroadcast"] = broadcast
	}
	return Message{
		Role: RoleUser,
		Parts: []Part{{
			Type:     PartData,
			Data:     env,
			Metadata: metadata,
		}},
	}
}

// ExtractEnvelopes filters msg's parts for DataParts whose
// metadata.mimeType equals the A2UI MIME type and parses each into an
// envelope (spec §4.9 "the client extracts A2UI envelopes by filtering
// DataParts whose metadata.mimeType equals the A2UI MIME type").
func ExtractEnvelopes(msg Message, limits config.Limits) ([]*envelope.Envelope, []*a2ui.ProtocolError) {
	var envelopes []*envelope.Envelope
	var errs []*a2ui.ProtocolError
	for _, part := range msg.Parts {
		if part.Type != PartData {
			continue
		}
		mime, _ := part.Metadata["mimeType"].(string)
		if mime != a2ui.MIMEType {
			continue
		}
		raw, err := json.Marshal(part.Data)
		if err != nil {
			errs = append(errs, a2ui.NewProtocolError(a2ui.ErrParse, err.Error(), "", nil))
			continue
		}
		env, perr := envelope.Parse(raw, limits)
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		envelopes = append(envelopes, env)
	}
	return envelopes, errs
}

// ExtensionHeaderValue returns the X-A2A-Extensions header value for a
// protocol version (spec §4.9 "Header X-A2A-Extensions:
// https://a2ui.org/a2a-extension/a2ui/<version> accompanies every
// request").
func ExtensionHeaderValue(version a2ui.ProtocolVersion) string {
	return a2ui.ExtensionURI(version)
}

// SupportsExtension reports whether card advertises the extension URI for
// version (spec §4.9 "Client checks that the descriptor lists the matching
// a2ui extension URI for its version").
func SupportsExtension(card AgentCard, version a2ui.ProtocolVersion) bool {
	want := a2ui.ExtensionURI(version)
	for _, ext := range card.Capabilities.Extensions {
		if ext.URI == want {
			return true
		}
	}
	return false
}
