package transport

type WebhookRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,notblank,max=64"`
	Message     string `json:"message" validate:"required,notblank,max=4000"`
	// MessageID is the gateway delivery id used to drop redeliveries.
	MessageID string `json:"message_id" validate:"max=128"`
}

type WebhookResponse struct {
	Response string `json:"response"`
}

type DuplicateResponse struct {
	Status string `json:"status"`
}
