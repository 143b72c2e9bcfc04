package models

// OutboundMessageRequest is a text message pushed to a WhatsApp number.
type OutboundMessageRequest struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	PreviewURL bool   `json:"preview_url"`
}
