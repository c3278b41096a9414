package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the only error shape clients ever see.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
