package models

// Tune is keyed by its globally unique, case-sensitive title. A tune is
// shared by reference: Principals is the set of identities owning a copy.
// Origin marks entries loaded from the seed dataset.
type Tune struct {
	Origin     bool     `json:"origin"`
	Title      string   `json:"title"`
	TuneData   string   `json:"tune_data"`
	Timestamp  int64    `json:"timestamp"`
	Principals []string `json:"principals"`
	Username   *string  `json:"username"`
}

// TuneInfo is the list-projection of a Tune (no ownership set).
type TuneInfo struct {
	Title    string  `json:"title"`
	TuneData string  `json:"tune_data"`
	Username *string `json:"username"`
}

// Info returns the list projection of t.
func (t *Tune) Info() TuneInfo {
	return TuneInfo{Title: t.Title, TuneData: t.TuneData, Username: t.Username}
}
