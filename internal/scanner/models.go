package scanner

// SimulateRequest asks for a demo pass to be verified as if scanned.
type SimulateRequest struct {
	MemberID int `json:"member_id" binding:"required,gt=0"`
}

// ActionResponse is returned by the scanner action endpoints.
type ActionResponse struct {
	Msg    string `json:"msg"`
	Status Status `json:"status"`
}

// ErrorResponse is returned when an action fails.
type ErrorResponse struct {
	Error     string `json:"error"`
	Kind      Kind   `json:"kind,omitempty"`
	Retryable bool   `json:"retryable"`
	Status    Status `json:"status"`
}
