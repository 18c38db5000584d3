package gateway

import "strings"

type PortName string

const (
	Mellat       PortName = "MELLAT"
	Sadad        PortName = "SADAD"
	Zarinpal     PortName = "ZARINPAL"
	Parsian      PortName = "PARSIAN"
	Pasargad     PortName = "PASARGAD"
	Saman        PortName = "SAMAN"
	Paypal       PortName = "PAYPAL"
	Asanpardakht PortName = "ASANPARDAKHT"
	Payir        PortName = "PAYIR"
)

var supportedPorts = []PortName{
	Mellat,
	Sadad,
	Zarinpal,
	Parsian,
	Pasargad,
	Saman,
	Paypal,
	Asanpardakht,
	Payir,
}

// SupportedPorts returns the catalog of port names in a stable order.
func SupportedPorts() []PortName {
	ports := make([]PortName, len(supportedPorts))
	copy(ports, supportedPorts)
	return ports
}

// ParsePortName matches s against the catalog ignoring case and surrounding spaces.
func ParsePortName(s string) (PortName, bool) {
	name := PortName(strings.ToUpper(strings.TrimSpace(s)))
	if !name.Valid() {
		return "", false
	}
	return name, true
}

func (p PortName) Valid() bool {
	for _, port := range supportedPorts {
		if port == p {
			return true
		}
	}
	return false
}

func (p PortName) String() string {
	return string(p)
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSucceed Status = "SUCCEED"
	StatusFailed  Status = "FAILED"
)

const (
	StatusPendingText = "transaction is pending"
	StatusSucceedText = "transaction completed successfully"
	StatusFailedText  = "transaction failed"
)

var statusTexts = map[Status]string{
	StatusPending: StatusPendingText,
	StatusSucceed: StatusSucceedText,
	StatusFailed:  StatusFailedText,
}

func (s Status) Text() string {
	return statusTexts[s]
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusSucceed || s == StatusFailed
}

func (s Status) String() string {
	return string(s)
}
