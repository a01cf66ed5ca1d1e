package protocol

// State is the protocol phase of a connection. The same packet id means
// different messages in different states.
type State uint8

const (
	StateHandshake State = iota
	StateStatus
	StateLogin
	StatePlay
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "handshake"
	case StateStatus:
		return "status"
	case StateLogin:
		return "login"
	case StatePlay:
		return "play"
	default:
		return "unknown"
	}
}

// ParseState returns the State named s.
func ParseState(s string) (State, bool) {
	for st := StateHandshake; st <= StatePlay; st++ {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Direction tells which peer sent a packet.
type Direction uint8

const (
	// Serverbound packets travel from the client to the server.
	Serverbound Direction = iota
	// Clientbound packets travel from the server to the client.
	Clientbound
)

func (d Direction) String() string {
	if d == Clientbound {
		return "clientbound"
	}
	return "serverbound"
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Clientbound {
		return Serverbound
	}
	return Clientbound
}

// ParseDirection returns the Direction named s.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "serverbound":
		return Serverbound, true
	case "clientbound":
		return Clientbound, true
	default:
		return 0, false
	}
}
