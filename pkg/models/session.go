package models

// Session is a local-session listing owned by exactly one principal.
type Session struct {
	ID        uint64 `json:"id"`
	Principal string `json:"principal"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Daytime   string `json:"daytime"`
	Contact   string `json:"contact"`
	Comment   string `json:"comment"`
	Recurring string `json:"recurring"`
}
