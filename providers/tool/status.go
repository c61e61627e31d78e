package tool

// Status is the configuration state an adapter reports.
type Status struct {
	Configured bool   `json:"configured"`
	Detail     string `json:"detail,omitempty"`
}

func (s Status) String() string {
	state := "configurada"
	if !s.Configured {
		state = "no configurada"
	}
	if s.Detail == "" {
		return state
	}
	return state + " (" + s.Detail + ")"
}
