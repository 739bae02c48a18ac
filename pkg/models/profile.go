package models

// Profile is keyed by the caller's opaque principal string. The friends
// list holds principals; pending requests hold denormalized Friend
// snapshots mirrored across both sides while the request is open.
type Profile struct {
	Principal   string   `json:"principal"`
	Username    string   `json:"username"`
	Avatar      []byte   `json:"avatar"`
	Pob         string   `json:"pob"`
	Instruments string   `json:"instruments"`
	Bio         *string  `json:"bio"`
	Friends     []string `json:"friends"`
	IncomingFR  []Friend `json:"incoming_fr"`
	OutcomingFR []Friend `json:"outcoming_fr"`
}

// Friend is a denormalized summary of a counterpart profile, embedded by
// value in pending-request lists and returned by friend/browse reads. The
// snapshot is taken when the entry is created and can go stale until the
// request is resolved.
type Friend struct {
	Principal string `json:"principal"`
	Avatar    []byte `json:"avatar"`
	Username  string `json:"username"`
}
