package gate

// Phase is the gate's position in the registration flow.
type Phase int

const (
	Disconnected Phase = iota
	CheckingStatus
	NeedsRegistration
	Submitting
	Registered
	Error
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "Disconnected"
	case CheckingStatus:
		return "CheckingStatus"
	case NeedsRegistration:
		return "NeedsRegistration"
	case Submitting:
		return "Submitting"
	case Registered:
		return "Registered"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// CanClaim reports whether the claim action is available.
func (p Phase) CanClaim() bool {
	return p == Registered
}

// ShowsForm reports whether the registration form is visible. The form
// stays visible, disabled, while a submission is in flight.
func (p Phase) ShowsForm() bool {
	return p == NeedsRegistration || p == Submitting
}
